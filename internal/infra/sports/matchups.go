package sports

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/upstream"
)

func (s *SleeperSport) matchups(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	leagueID, err := requireLeague(ToolGetMatchups, params)
	if err != nil {
		return domain.FailFromError(err)
	}
	week, err := s.resolveWeek(ctx, params)
	if err != nil {
		return domain.FailFromError(err)
	}

	var (
		entries []upstream.Matchup
		rosters []upstream.Roster
		users   []upstream.User
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		entries, err = s.client.Matchups(groupCtx, leagueID, week)
		return err
	})
	group.Go(func() error {
		var err error
		rosters, users, err = s.fetchRostersAndUsers(groupCtx, leagueID)
		return err
	})
	if err := group.Wait(); err != nil {
		return domain.FailFromError(err)
	}

	pairs, byes := pairMatchups(entries, rosters, ownersByID(users))
	return domain.Succeed(Matchups{
		LeagueID: leagueID,
		Week:     week,
		Matchups: pairs,
		Byes:     byes,
	})
}

// pairMatchups groups entries sharing a matchup id. Within a pair the lower
// roster id is home. Entries without a matchup id are byes.
func pairMatchups(entries []upstream.Matchup, rosters []upstream.Roster, owners map[string]owner) ([]MatchupPair, []MatchupSide) {
	rosterByID := make(map[int]upstream.Roster, len(rosters))
	for _, roster := range rosters {
		rosterByID[roster.RosterID] = roster
	}
	side := func(entry upstream.Matchup) MatchupSide {
		roster, ok := rosterByID[entry.RosterID]
		if !ok {
			roster = upstream.Roster{RosterID: entry.RosterID}
		}
		points := entry.Points
		if entry.CustomPoints != nil {
			points = *entry.CustomPoints
		}
		return MatchupSide{
			RosterID: entry.RosterID,
			OwnerID:  roster.OwnerID,
			TeamName: teamLabel(roster, owners).teamName,
			Points:   points,
		}
	}

	grouped := make(map[int][]MatchupSide)
	byes := make([]MatchupSide, 0)
	for _, entry := range entries {
		if entry.MatchupID == nil {
			byes = append(byes, side(entry))
			continue
		}
		grouped[*entry.MatchupID] = append(grouped[*entry.MatchupID], side(entry))
	}

	ids := make([]int, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	pairs := make([]MatchupPair, 0, len(ids))
	for _, id := range ids {
		sides := grouped[id]
		sort.Slice(sides, func(i, j int) bool { return sides[i].RosterID < sides[j].RosterID })
		pair := MatchupPair{MatchupID: id, Home: sides[0]}
		if len(sides) > 1 {
			away := sides[1]
			pair.Away = &away
			pair.Winner = matchupWinner(pair.Home.Points, away.Points)
		}
		pairs = append(pairs, pair)
	}
	sort.Slice(byes, func(i, j int) bool { return byes[i].RosterID < byes[j].RosterID })
	return pairs, byes
}

// matchupWinner is empty until at least one side has points, so unplayed
// weeks never report a tie.
func matchupWinner(home, away float64) string {
	if home == 0 && away == 0 {
		return ""
	}
	switch {
	case home > away:
		return "home"
	case away > home:
		return "away"
	default:
		return "tie"
	}
}
