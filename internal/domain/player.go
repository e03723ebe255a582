package domain

import (
	"sort"
	"time"
)

// PlayerRecord is the canonical catalog entry every consumer sees.
type PlayerRecord struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	Active    bool   `json:"active"`
}

// PlayerIndex maps player id to record. Indexes are built once and never
// mutated after publication.
type PlayerIndex map[string]PlayerRecord

// NewPlayerIndex builds an index; later duplicates of an id replace earlier ones.
func NewPlayerIndex(records []PlayerRecord) PlayerIndex {
	index := make(PlayerIndex, len(records))
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		index[record.ID] = record
	}
	return index
}

// Records returns the index contents ordered by id.
func (idx PlayerIndex) Records() []PlayerRecord {
	out := make([]PlayerRecord, 0, len(idx))
	for _, record := range idx {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup is a PlayerResolver backed by the index.
func (idx PlayerIndex) Lookup(id string) (PlayerRecord, bool) {
	record, ok := idx[id]
	return record, ok
}

// PlayerResolver resolves a player id to its catalog entry.
type PlayerResolver interface {
	Lookup(id string) (PlayerRecord, bool)
}

// OwnershipUnavailable marks ownership data the platform does not publish.
const OwnershipUnavailable = "unavailable"

// FreeAgent is a catalog entry not on any roster of the queried league.
type FreeAgent struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	Ownership string `json:"ownership"`
}

// SearchResult is a catalog entry matched by name.
type SearchResult struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Position   string `json:"position,omitempty"`
	Team       string `json:"team,omitempty"`
	Active     bool   `json:"active"`
	Ownership  string `json:"ownership"`
	RosteredBy string `json:"rostered_by,omitempty"`
}

// CacheEntry is one serialized value held by a cache tier.
type CacheEntry struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its expiry at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}
