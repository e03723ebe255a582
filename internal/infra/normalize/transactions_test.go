package normalize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/upstream"
)

func pagesFetcher(pages map[int][]upstream.Transaction) WeekFetcher {
	return func(_ context.Context, week int) ([]upstream.Transaction, error) {
		return pages[week], nil
	}
}

func bid(v int) *int { return &v }

func TestDefaultWeekWindow(t *testing.T) {
	require.Equal(t, []int{9, 8}, DefaultWeekWindow(9))
	require.Equal(t, []int{2, 1}, DefaultWeekWindow(2))
	require.Equal(t, []int{1}, DefaultWeekWindow(1))
	require.Equal(t, []int{1}, DefaultWeekWindow(0))
	require.Equal(t, []int{1}, DefaultWeekWindow(-4))
}

func TestFetchTransactionsByWeeks_DedupKeepsEarlierScannedWeek(t *testing.T) {
	shared := upstream.Transaction{
		TransactionID: "tx-1",
		Type:          "waiver",
		Status:        "complete",
		Created:       1_700_000_000_000,
		RosterIDs:     []int{3},
		Adds:          map[string]int{"4046": 3},
		Settings:      &upstream.TransactionSettings{WaiverBid: bid(17)},
	}
	later := shared
	later.Status = "failed"
	later.Settings = &upstream.TransactionSettings{WaiverBid: bid(99)}

	fetch := pagesFetcher(map[int][]upstream.Transaction{
		5: {shared},
		4: {later},
	})

	got, err := FetchTransactionsByWeeks(context.Background(), fetch, []int{5, 4}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "complete", got[0].Status)
	require.Equal(t, 5, got[0].Week)
	require.NotNil(t, got[0].FAABBid)
	require.Equal(t, 17, *got[0].FAABBid)
}

func TestFetchTransactionsByWeeks_MapsTypesAndSortsNewestFirst(t *testing.T) {
	fetch := pagesFetcher(map[int][]upstream.Transaction{
		3: {
			{TransactionID: "a", Type: "free_agent", Created: 1000, RosterIDs: []int{1}, Adds: map[string]int{"10": 1}},
			{TransactionID: "b", Type: "free_agent", Created: 3000, RosterIDs: []int{2}, Drops: map[string]int{"11": 2}},
			{TransactionID: "c", Type: "commissioner", Created: 4000},
			{TransactionID: "d", Type: "trade", Created: 2000, RosterIDs: []int{1, 2},
				Adds:       map[string]int{"20": 1, "21": 2},
				Drops:      map[string]int{"20": 2, "21": 1},
				DraftPicks: []upstream.TransactionDraftPick{{Season: "2026", Round: 2, RosterID: 1, PreviousOwnerID: 1, OwnerID: 2}},
			},
			{Type: "waiver", Created: 3000, Leg: 2, RosterIDs: []int{4}, Adds: map[string]int{"30": 4}},
		},
	})

	got, err := FetchTransactionsByWeeks(context.Background(), fetch, []int{3}, nil)
	require.NoError(t, err)

	type summary struct {
		ID   string
		Type domain.TransactionType
		Week int
	}
	var summaries []summary
	for _, txn := range got {
		summaries = append(summaries, summary{ID: txn.ID, Type: txn.Type, Week: txn.Week})
	}
	want := []summary{
		{ID: "b", Type: domain.TransactionDrop, Week: 3},
		{ID: "waiver:3000", Type: domain.TransactionWaiver, Week: 2},
		{ID: "d", Type: domain.TransactionTrade, Week: 3},
		{ID: "a", Type: domain.TransactionAdd, Week: 3},
	}
	if diff := cmp.Diff(want, summaries); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}

	trade := got[2]
	require.Equal(t, time.UnixMilli(2000).UTC(), trade.Timestamp)
	require.Equal(t, []int{1, 2}, trade.TeamIDs)
	require.Equal(t, []domain.TransactionPlayer{{ID: "20", RosterID: 1}, {ID: "21", RosterID: 2}}, trade.PlayersAdded)
	require.Equal(t, []domain.DraftPick{{Season: "2026", Round: 2, RosterID: 1, PreviousOwnerID: 1, OwnerID: 2}}, trade.DraftPicks)
	require.Nil(t, trade.FAABBid)
}

func TestFetchTransactionsByWeeks_EnrichesWhenResolverPresent(t *testing.T) {
	fetch := pagesFetcher(map[int][]upstream.Transaction{
		1: {{TransactionID: "x", Type: "free_agent", Created: 10, Adds: map[string]int{"4046": 1, "9999": 1}}},
	})
	resolver := domain.NewPlayerIndex([]domain.PlayerRecord{
		{ID: "4046", FullName: "Patrick Mahomes", Position: "QB", Team: "KC", Active: true},
	})

	got, err := FetchTransactionsByWeeks(context.Background(), fetch, []int{1}, resolver)
	require.NoError(t, err)
	require.Equal(t, []domain.TransactionPlayer{
		{ID: "4046", Name: "Patrick Mahomes", Position: "QB", Team: "KC", RosterID: 1},
		{ID: "9999", RosterID: 1},
	}, got[0].PlayersAdded)

	bare, err := FetchTransactionsByWeeks(context.Background(), fetch, []int{1}, nil)
	require.NoError(t, err)
	require.Equal(t, []domain.TransactionPlayer{{ID: "4046", RosterID: 1}, {ID: "9999", RosterID: 1}}, bare[0].PlayersAdded)
}

func TestFetchTransactionsByWeeks_FailureAbortsWithoutPartialResult(t *testing.T) {
	upstreamErr := domain.E("SLEEPER_RATE_LIMIT", "upstream.fetch", "rate limited", nil)
	fetch := func(_ context.Context, week int) ([]upstream.Transaction, error) {
		if week == 7 {
			return nil, upstreamErr
		}
		return []upstream.Transaction{{TransactionID: "ok", Type: "trade", Created: 1}}, nil
	}

	got, err := FetchTransactionsByWeeks(context.Background(), fetch, []int{8, 7}, nil)
	require.Nil(t, got)
	require.True(t, errors.Is(err, upstreamErr))
}

func TestFilterTransactions(t *testing.T) {
	txns := []domain.NormalizedTransaction{
		{ID: "1", Type: domain.TransactionAdd},
		{ID: "2", Type: domain.TransactionTrade},
		{ID: "3", Type: domain.TransactionAdd},
		{ID: "4", Type: domain.TransactionWaiver},
	}

	adds := FilterTransactions(txns, domain.TransactionAdd, 50)
	require.Len(t, adds, 2)
	require.Equal(t, "3", adds[1].ID)

	require.Len(t, FilterTransactions(txns, "", 2), 2)
	require.Len(t, FilterTransactions(txns, "", 0), 1)
}
