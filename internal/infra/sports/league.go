package sports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/upstream"
)

func (s *SleeperSport) leagueInfo(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	leagueID, err := requireLeague(ToolGetLeagueInfo, params)
	if err != nil {
		return domain.FailFromError(err)
	}
	league, err := s.client.League(ctx, leagueID)
	if err != nil {
		return domain.FailFromError(err)
	}
	if league.LeagueID == "" {
		league.LeagueID = leagueID
	}
	return domain.Succeed(LeagueInfo{
		LeagueID:         league.LeagueID,
		Name:             league.Name,
		Sport:            s.name,
		Season:           league.Season,
		SeasonType:       league.SeasonType,
		Status:           league.Status,
		TotalRosters:     league.TotalRosters,
		RosterPositions:  league.RosterPositions,
		ScoringSettings:  league.ScoringSettings,
		Settings:         league.Settings,
		PreviousLeagueID: league.PreviousLeagueID,
		DraftID:          league.DraftID,
	})
}

// fetchRostersAndUsers loads both resources concurrently; either failure
// aborts the join.
func (s *SleeperSport) fetchRostersAndUsers(ctx context.Context, leagueID string) ([]upstream.Roster, []upstream.User, error) {
	var (
		rosters []upstream.Roster
		users   []upstream.User
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		rosters, err = s.client.Rosters(groupCtx, leagueID)
		return err
	})
	group.Go(func() error {
		var err error
		users, err = s.client.Users(groupCtx, leagueID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return rosters, users, nil
}

func (s *SleeperSport) standings(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	leagueID, err := requireLeague(ToolGetStandings, params)
	if err != nil {
		return domain.FailFromError(err)
	}
	rosters, users, err := s.fetchRostersAndUsers(ctx, leagueID)
	if err != nil {
		return domain.FailFromError(err)
	}
	return domain.Succeed(Standings{
		LeagueID:   leagueID,
		SeasonYear: params.SeasonYear,
		Standings:  rankStandings(rosters, ownersByID(users)),
	})
}

// rankStandings orders rosters by wins then points for, both descending, with
// roster id ascending as the final tie-break, and numbers them 1..N.
func rankStandings(rosters []upstream.Roster, owners map[string]owner) []StandingEntry {
	entries := make([]StandingEntry, 0, len(rosters))
	for _, roster := range rosters {
		label := teamLabel(roster, owners)
		st := roster.Settings
		entries = append(entries, StandingEntry{
			RosterID:      roster.RosterID,
			OwnerID:       roster.OwnerID,
			TeamName:      label.teamName,
			DisplayName:   label.displayName,
			Wins:          st.Wins,
			Losses:        st.Losses,
			Ties:          st.Ties,
			WinPct:        winPct(st.Wins, st.Losses, st.Ties),
			PointsFor:     combinePoints(st.Fpts, st.FptsDecimal),
			PointsAgainst: combinePoints(st.FptsAgainst, st.FptsAgainstDecimal),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PointsFor != b.PointsFor {
			return a.PointsFor > b.PointsFor
		}
		return a.RosterID < b.RosterID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// combinePoints joins the platform's integer and hundredths fields.
func combinePoints(whole, hundredths int) float64 {
	return math.Round((float64(whole)+float64(hundredths)/100)*100) / 100
}

func winPct(wins, losses, ties int) float64 {
	games := wins + losses + ties
	if games == 0 {
		return 0
	}
	pct := (float64(wins) + float64(ties)/2) / float64(games)
	return math.Round(pct*1000) / 1000
}

func (s *SleeperSport) roster(ctx context.Context, params domain.ToolParams) domain.ExecuteResponse {
	leagueID, err := requireLeague(ToolGetRoster, params)
	if err != nil {
		return domain.FailFromError(err)
	}
	rosters, users, err := s.fetchRostersAndUsers(ctx, leagueID)
	if err != nil {
		return domain.FailFromError(err)
	}
	owners := ownersByID(users)

	teamID := strings.TrimSpace(params.TeamID)
	if teamID == "" {
		return domain.Succeed(summarizeRosters(leagueID, rosters, owners))
	}

	roster, ok := findRoster(rosters, teamID)
	if !ok {
		return domain.FailFromError(domain.E(
			domain.UpstreamCode(s.client.Platform(), domain.SuffixNotFound),
			ToolGetRoster,
			fmt.Sprintf("team %s not found in league %s", teamID, leagueID),
			nil,
		))
	}

	var resolver domain.PlayerResolver
	warning := ""
	if index, err := s.playerIndex(ctx); err != nil {
		s.logEnrichmentFailure(ctx, ToolGetRoster, err)
		warning = enrichmentWarning(err)
	} else {
		resolver = index
	}

	label := teamLabel(roster, owners)
	starters, bench, reserve := SplitLineup(roster)
	return domain.Succeed(TeamRoster{
		LeagueID:    leagueID,
		RosterID:    roster.RosterID,
		OwnerID:     roster.OwnerID,
		TeamName:    label.teamName,
		DisplayName: label.displayName,
		Starters:    rosterPlayers(starters, resolver),
		Bench:       rosterPlayers(bench, resolver),
		Reserve:     rosterPlayers(reserve, resolver),
		Taxi:        rosterPlayers(filterPlayerIDs(roster.Taxi), resolver),
		Warning:     warning,
	})
}

func summarizeRosters(leagueID string, rosters []upstream.Roster, owners map[string]owner) LeagueRosters {
	teams := make([]RosterSummary, 0, len(rosters))
	for _, roster := range rosters {
		label := teamLabel(roster, owners)
		teams = append(teams, RosterSummary{
			RosterID:    roster.RosterID,
			OwnerID:     roster.OwnerID,
			TeamName:    label.teamName,
			DisplayName: label.displayName,
			Wins:        roster.Settings.Wins,
			Losses:      roster.Settings.Losses,
			Ties:        roster.Settings.Ties,
			PlayerCount: len(filterPlayerIDs(roster.Players)),
		})
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].RosterID < teams[j].RosterID })
	return LeagueRosters{LeagueID: leagueID, Teams: teams}
}

// findRoster matches team id against the roster id first, then the owner.
func findRoster(rosters []upstream.Roster, teamID string) (upstream.Roster, bool) {
	if n, err := strconv.Atoi(teamID); err == nil {
		for _, roster := range rosters {
			if roster.RosterID == n {
				return roster, true
			}
		}
	}
	for _, roster := range rosters {
		if roster.OwnerID == teamID {
			return roster, true
		}
		for _, co := range roster.CoOwners {
			if co == teamID {
				return roster, true
			}
		}
	}
	return upstream.Roster{}, false
}

// SplitLineup returns starters, bench and reserve, where bench is every
// rostered player that is neither starting nor on reserve.
func SplitLineup(roster upstream.Roster) (starters, bench, reserve []string) {
	starters = filterPlayerIDs(roster.Starters)
	reserve = filterPlayerIDs(roster.Reserve)
	excluded := make(map[string]struct{}, len(starters)+len(reserve))
	for _, id := range starters {
		excluded[id] = struct{}{}
	}
	for _, id := range reserve {
		excluded[id] = struct{}{}
	}
	bench = make([]string, 0)
	for _, id := range filterPlayerIDs(roster.Players) {
		if _, skip := excluded[id]; !skip {
			bench = append(bench, id)
		}
	}
	return starters, bench, reserve
}

func filterPlayerIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isPlayerID(id) {
			out = append(out, strings.TrimSpace(id))
		}
	}
	return out
}

func rosterPlayers(ids []string, resolver domain.PlayerResolver) []RosterPlayer {
	out := make([]RosterPlayer, 0, len(ids))
	for _, id := range ids {
		player := RosterPlayer{ID: id}
		if resolver != nil {
			if record, ok := resolver.Lookup(id); ok {
				player.Name = record.FullName
				player.Position = record.Position
				player.Team = record.Team
			}
		}
		out = append(out, player)
	}
	return out
}
