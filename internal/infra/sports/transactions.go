package sports

import (
	"context"
	"fmt"
	"strings"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/normalize"
	"fantasygw/internal/infra/upstream"
)

func (s *SleeperSport) transactions(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	leagueID, err := requireLeague(ToolGetTransactions, params)
	if err != nil {
		return domain.FailFromError(err)
	}

	var txnType domain.TransactionType
	if raw := strings.ToLower(strings.TrimSpace(params.Type)); raw != "" {
		parsed, ok := domain.ParseTransactionType(raw)
		if !ok {
			return domain.Fail(domain.CodeMissingParam,
				fmt.Sprintf("type must be one of add, drop, trade, waiver (got %q)", params.Type))
		}
		txnType = parsed
	}
	count := normalize.ClampCount(params.CountOr(domain.DefaultTransactionCount), domain.MaxTransactionCount)

	var weeks []int
	if params.Week != nil {
		weeks = []int{max(*params.Week, 1)}
	} else {
		current, err := s.currentWeek(ctx)
		if err != nil {
			return domain.FailFromError(err)
		}
		weeks = normalize.DefaultWeekWindow(current)
	}

	var resolver domain.PlayerResolver
	warning := ""
	if index, err := s.playerIndex(ctx); err != nil {
		s.logEnrichmentFailure(ctx, ToolGetTransactions, err)
		warning = enrichmentWarning(err)
	} else {
		resolver = index
	}

	fetch := func(ctx context.Context, week int) ([]upstream.Transaction, error) {
		return s.client.Transactions(ctx, leagueID, week)
	}
	txns, err := normalize.FetchTransactionsByWeeks(ctx, fetch, weeks, resolver)
	if err != nil {
		return domain.FailFromError(err)
	}
	txns = normalize.FilterTransactions(txns, txnType, count)

	return domain.Succeed(Transactions{
		LeagueID:     leagueID,
		Weeks:        weeks,
		Type:         txnType,
		Count:        len(txns),
		Transactions: txns,
		Warning:      warning,
	})
}
