package sports

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/normalize"
	"fantasygw/internal/infra/upstream"
)

// leaguePlayers is the league's rosters joined with the player catalog.
// catalogErr is kept apart so handlers can degrade instead of failing.
type leaguePlayers struct {
	rosters    []upstream.Roster
	index      domain.PlayerIndex
	catalogErr error
}

// loadLeaguePlayers fetches rosters (when leagueID is set) and the catalog
// concurrently. Only a roster failure is returned as an error.
func (s *SleeperSport) loadLeaguePlayers(ctx context.Context, leagueID string) (leaguePlayers, error) {
	var out leaguePlayers
	group, groupCtx := errgroup.WithContext(ctx)
	if leagueID != "" {
		group.Go(func() error {
			var err error
			out.rosters, err = s.client.Rosters(groupCtx, leagueID)
			return err
		})
	}
	group.Go(func() error {
		out.index, out.catalogErr = s.playerIndex(groupCtx)
		return nil
	})
	if err := group.Wait(); err != nil {
		return leaguePlayers{}, err
	}
	return out, nil
}

func (s *SleeperSport) freeAgents(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	leagueID, err := requireLeague(ToolGetFreeAgents, params)
	if err != nil {
		return domain.FailFromError(err)
	}
	count := normalize.ClampCount(params.CountOr(domain.DefaultFreeAgentCount), domain.MaxFreeAgentCount)
	position := strings.TrimSpace(params.Position)

	loaded, err := s.loadLeaguePlayers(ctx, leagueID)
	if err != nil {
		return domain.FailFromError(err)
	}
	payload := FreeAgents{
		LeagueID: leagueID,
		Position: position,
		Count:    count,
		Players:  []domain.FreeAgent{},
	}
	if loaded.catalogErr != nil {
		s.logEnrichmentFailure(ctx, ToolGetFreeAgents, loaded.catalogErr)
		payload.Warning = enrichmentWarning(loaded.catalogErr)
		return domain.Succeed(payload)
	}

	rostered := make(map[string]struct{})
	for id := range rosteredIDs(loaded.rosters) {
		rostered[id] = struct{}{}
	}
	payload.Players = normalize.BuildFreeAgents(loaded.index, rostered, position, count)
	return domain.Succeed(payload)
}

func (s *SleeperSport) searchPlayers(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return domain.FailFromError(domain.MissingParam(ToolSearchPlayers, "query"))
	}
	leagueID := strings.TrimSpace(params.LeagueID)
	count := normalize.ClampCount(params.CountOr(domain.DefaultSearchCount), domain.MaxSearchCount)
	position := strings.TrimSpace(params.Position)

	loaded, err := s.loadLeaguePlayers(ctx, leagueID)
	if err != nil {
		return domain.FailFromError(err)
	}
	payload := PlayerSearch{
		Query:    query,
		LeagueID: leagueID,
		Position: position,
		Count:    count,
		Players:  []domain.SearchResult{},
	}
	if loaded.catalogErr != nil {
		s.logEnrichmentFailure(ctx, ToolSearchPlayers, loaded.catalogErr)
		payload.Warning = enrichmentWarning(loaded.catalogErr)
		return domain.Succeed(payload)
	}

	var rosteredBy map[string]string
	if leagueID != "" {
		rosteredBy = make(map[string]string)
		for id, rosterID := range rosteredIDs(loaded.rosters) {
			rosteredBy[id] = strconv.Itoa(rosterID)
		}
	}
	payload.Players = normalize.BuildPlayerSearch(loaded.index, query, position, count, rosteredBy)
	return domain.Succeed(payload)
}
