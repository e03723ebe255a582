package normalize

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/upstream"
)

// WeekFetcher returns the raw transaction log for one scoring period.
type WeekFetcher func(ctx context.Context, week int) ([]upstream.Transaction, error)

// DefaultWeekWindow is the "current activity" window: the current week and the
// one before it, most recent first.
func DefaultWeekWindow(current int) []int {
	if current < 1 {
		current = 1
	}
	if current == 1 {
		return []int{1}
	}
	return []int{current, current - 1}
}

// FetchTransactionsByWeeks fetches every week concurrently, then merges them in
// the order given so a transaction logged in two weeks keeps its first-seen
// copy. Unrecognized types are skipped. resolver may be nil, in which case
// players carry bare ids. The result is ordered newest first.
func FetchTransactionsByWeeks(ctx context.Context, fetch WeekFetcher, weeks []int, resolver domain.PlayerResolver) ([]domain.NormalizedTransaction, error) {
	pages := make([][]upstream.Transaction, len(weeks))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, week := range weeks {
		group.Go(func() error {
			page, err := fetch(groupCtx, week)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]domain.NormalizedTransaction, 0)
	for i, page := range pages {
		for _, raw := range page {
			txn, ok := NormalizeTransaction(raw, weeks[i], resolver)
			if !ok {
				continue
			}
			if _, dup := seen[txn.ID]; dup {
				continue
			}
			seen[txn.ID] = struct{}{}
			out = append(out, txn)
		}
	}
	SortTransactions(out)
	return out, nil
}

// NormalizeTransaction maps one raw record through the type allow-list.
func NormalizeTransaction(raw upstream.Transaction, week int, resolver domain.PlayerResolver) (domain.NormalizedTransaction, bool) {
	txnType, ok := mapTransactionType(raw)
	if !ok {
		return domain.NormalizedTransaction{}, false
	}
	id := strings.TrimSpace(raw.TransactionID)
	if id == "" {
		id = fmt.Sprintf("%s:%d", txnType, raw.Created)
	}
	if raw.Leg > 0 {
		week = raw.Leg
	}

	txn := domain.NormalizedTransaction{
		ID:             id,
		Type:           txnType,
		Status:         raw.Status,
		Timestamp:      time.UnixMilli(raw.Created).UTC(),
		Week:           week,
		TeamIDs:        append([]int{}, raw.RosterIDs...),
		PlayersAdded:   movedPlayers(raw.Adds, resolver),
		PlayersDropped: movedPlayers(raw.Drops, resolver),
	}
	if raw.Settings != nil && raw.Settings.WaiverBid != nil {
		bid := *raw.Settings.WaiverBid
		txn.FAABBid = &bid
	}
	for _, pick := range raw.DraftPicks {
		txn.DraftPicks = append(txn.DraftPicks, domain.DraftPick{
			Season:          pick.Season,
			Round:           pick.Round,
			RosterID:        pick.RosterID,
			PreviousOwnerID: pick.PreviousOwnerID,
			OwnerID:         pick.OwnerID,
		})
	}
	return txn, true
}

func mapTransactionType(raw upstream.Transaction) (domain.TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case "free_agent":
		if len(raw.Adds) > 0 {
			return domain.TransactionAdd, true
		}
		if len(raw.Drops) > 0 {
			return domain.TransactionDrop, true
		}
		return "", false
	case "waiver":
		return domain.TransactionWaiver, true
	case "trade":
		return domain.TransactionTrade, true
	default:
		return "", false
	}
}

func movedPlayers(moves map[string]int, resolver domain.PlayerResolver) []domain.TransactionPlayer {
	out := make([]domain.TransactionPlayer, 0, len(moves))
	for id, rosterID := range moves {
		player := domain.TransactionPlayer{ID: id, RosterID: rosterID}
		if resolver != nil {
			if record, ok := resolver.Lookup(id); ok {
				player.Name = record.FullName
				player.Position = record.Position
				player.Team = record.Team
			}
		}
		out = append(out, player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortTransactions orders newest first; equal timestamps fall back to id.
func SortTransactions(txns []domain.NormalizedTransaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Timestamp.Equal(txns[j].Timestamp) {
			return txns[i].Timestamp.After(txns[j].Timestamp)
		}
		return txns[i].ID < txns[j].ID
	})
}

// FilterTransactions keeps only txnType (when set) and truncates to limit.
func FilterTransactions(txns []domain.NormalizedTransaction, txnType domain.TransactionType, limit int) []domain.NormalizedTransaction {
	out := txns
	if txnType != "" {
		out = make([]domain.NormalizedTransaction, 0, len(txns))
		for _, txn := range txns {
			if txn.Type == txnType {
				out = append(out, txn)
			}
		}
	}
	limit = ClampCount(limit, domain.MaxTransactionCount)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
