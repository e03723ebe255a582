package domain

import "time"

// TransactionType is the normalized transaction kind.
type TransactionType string

const (
	TransactionAdd    TransactionType = "add"
	TransactionDrop   TransactionType = "drop"
	TransactionTrade  TransactionType = "trade"
	TransactionWaiver TransactionType = "waiver"
)

// ParseTransactionType accepts only the normalized kinds.
func ParseTransactionType(value string) (TransactionType, bool) {
	switch TransactionType(value) {
	case TransactionAdd, TransactionDrop, TransactionTrade, TransactionWaiver:
		return TransactionType(value), true
	default:
		return "", false
	}
}

// TransactionPlayer is a player moved by a transaction. Name, position and
// team are only set when a resolver could enrich the id.
type TransactionPlayer struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Position string `json:"position,omitempty"`
	Team     string `json:"team,omitempty"`
	RosterID int    `json:"roster_id,omitempty"`
}

// DraftPick is a traded draft pick.
type DraftPick struct {
	Season          string `json:"season"`
	Round           int    `json:"round"`
	RosterID        int    `json:"roster_id"`
	PreviousOwnerID int    `json:"previous_owner_id"`
	OwnerID         int    `json:"owner_id"`
}

type NormalizedTransaction struct {
	ID             string              `json:"id"`
	Type           TransactionType     `json:"type"`
	Status         string              `json:"status"`
	Timestamp      time.Time           `json:"timestamp"`
	Week           int                 `json:"week"`
	TeamIDs        []int               `json:"team_ids"`
	PlayersAdded   []TransactionPlayer `json:"players_added"`
	PlayersDropped []TransactionPlayer `json:"players_dropped"`
	FAABBid        *int                `json:"faab_bid,omitempty"`
	DraftPicks     []DraftPick         `json:"draft_picks,omitempty"`
}
