package sports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/upstream"
)

type fakeRoute struct {
	status int
	body   string
}

type fakePlatform struct {
	mu     sync.Mutex
	routes map[string]fakeRoute
	hits   map[string]int
}

func newFakePlatform(t *testing.T, routes map[string]fakeRoute) (*fakePlatform, *upstream.Client) {
	t.Helper()
	platform := &fakePlatform{routes: routes, hits: map[string]int{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		platform.mu.Lock()
		platform.hits[r.URL.Path]++
		route, ok := platform.routes[r.URL.Path]
		platform.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if route.status != 0 {
			w.WriteHeader(route.status)
		}
		_, _ = w.Write([]byte(route.body))
	}))
	t.Cleanup(server.Close)
	return platform, upstream.NewClient(upstream.Options{BaseURL: server.URL, Timeout: 2 * time.Second})
}

func (p *fakePlatform) hitCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

type catalogFunc func(ctx context.Context, sport string) (domain.PlayerIndex, error)

func (f catalogFunc) Index(ctx context.Context, sport string) (domain.PlayerIndex, error) {
	return f(ctx, sport)
}

func staticCatalog(records ...domain.PlayerRecord) PlayerCatalog {
	index := domain.NewPlayerIndex(records)
	return catalogFunc(func(context.Context, string) (domain.PlayerIndex, error) { return index, nil })
}

func brokenCatalog() PlayerCatalog {
	return catalogFunc(func(context.Context, string) (domain.PlayerIndex, error) {
		return nil, errors.New("durable store offline")
	})
}

func call(t *testing.T, sport *SleeperSport, tool string, params domain.ToolParams) domain.ExecuteResponse {
	t.Helper()
	handler, ok := sport.Handler(tool)
	require.True(t, ok, tool)
	return handler(context.Background(), params)
}

func intPtr(n int) *int { return &n }

const standingsRosters = `[
	{"roster_id":1,"owner_id":"u1","players":["p1"],"settings":{"wins":8,"losses":5,"fpts":1234,"fpts_decimal":50,"fpts_against":1100,"fpts_against_decimal":10}},
	{"roster_id":2,"owner_id":"u2","players":["p2"],"settings":{"wins":8,"losses":5,"fpts":1225,"fpts_decimal":99}},
	{"roster_id":3,"owner_id":"u3","players":["p3"],"settings":{"wins":5,"losses":7,"ties":1,"fpts":1150,"fpts_decimal":0}}
]`

const standingsUsers = `[
	{"user_id":"u1","display_name":"alpha","metadata":{"team_name":"Alpha Dogs"}},
	{"user_id":"u2","display_name":"bravo","metadata":{}},
	{"user_id":"u3","username":"charlie"}
]`

func TestStandings_RanksByWinsThenPoints(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: standingsRosters},
		"/league/L1/users":   {body: standingsUsers},
	})
	sport := NewFootball(client, nil, nil)

	resp := call(t, sport, ToolGetStandings, domain.ToolParams{Sport: "football", LeagueID: "L1", SeasonYear: 2025})
	require.True(t, resp.Success, resp.Error)

	standings := resp.Data.(Standings)
	require.Equal(t, 2025, standings.SeasonYear)
	type row struct {
		Rank     int
		RosterID int
		Team     string
		Points   float64
	}
	var got []row
	for _, entry := range standings.Standings {
		got = append(got, row{entry.Rank, entry.RosterID, entry.TeamName, entry.PointsFor})
	}
	want := []row{
		{1, 1, "Alpha Dogs", 1234.5},
		{2, 2, "bravo", 1225.99},
		{3, 3, "charlie", 1150.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("standings mismatch (-want +got):\n%s", diff)
	}
	require.InDelta(t, 0.423, standings.Standings[2].WinPct, 0.0005)
	require.Equal(t, 1100.1, standings.Standings[0].PointsAgainst)
}

func TestStandings_EqualRecordsBreakTiesByRosterID(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: `[
			{"roster_id":9,"settings":{"wins":6,"fpts":900}},
			{"roster_id":4,"settings":{"wins":6,"fpts":900}}
		]`},
		"/league/L1/users": {body: `[]`},
	})
	resp := call(t, NewFootball(client, nil, nil), ToolGetStandings, domain.ToolParams{LeagueID: "L1"})
	require.True(t, resp.Success)

	entries := resp.Data.(Standings).Standings
	require.Equal(t, 4, entries[0].RosterID)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, 9, entries[1].RosterID)
	require.Equal(t, 2, entries[1].Rank)
	require.Equal(t, "Team 9", entries[1].TeamName)
}

func TestStandings_JoinFailureReturnsThatCode(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: standingsRosters},
		"/league/L1/users":   {status: http.StatusTooManyRequests},
	})
	resp := call(t, NewFootball(client, nil, nil), ToolGetStandings, domain.ToolParams{LeagueID: "L1"})
	require.False(t, resp.Success)
	require.Nil(t, resp.Data)
	require.Equal(t, domain.ErrorCode("SLEEPER_RATE_LIMIT"), resp.Code)
}

func TestHandlers_RequireLeagueID(t *testing.T) {
	_, client := newFakePlatform(t, nil)
	sport := NewBasketball(client, nil, nil)
	for _, tool := range []string{ToolGetLeagueInfo, ToolGetStandings, ToolGetRoster, ToolGetMatchups, ToolGetFreeAgents, ToolGetTransactions} {
		resp := call(t, sport, tool, domain.ToolParams{Sport: "basketball"})
		require.False(t, resp.Success, tool)
		require.Equal(t, domain.CodeMissingParam, resp.Code, tool)
	}
}

func TestLeagueInfo_NotFound(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{})
	resp := call(t, NewFootball(client, nil, nil), ToolGetLeagueInfo, domain.ToolParams{LeagueID: "missing"})
	require.False(t, resp.Success)
	require.True(t, resp.Code.HasSuffix(domain.SuffixNotFound))
}

func TestLeagueInfo_Projection(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1": {body: `{"league_id":"L1","name":"Sunday Club","season":"2025","status":"in_season","total_rosters":12,"roster_positions":["QB","RB","FLEX"],"scoring_settings":{"rec":1}}`},
	})
	resp := call(t, NewFootball(client, nil, nil), ToolGetLeagueInfo, domain.ToolParams{LeagueID: "L1"})
	require.True(t, resp.Success)

	info := resp.Data.(LeagueInfo)
	require.Equal(t, "Sunday Club", info.Name)
	require.Equal(t, "football", info.Sport)
	require.Equal(t, 12, info.TotalRosters)
	require.Equal(t, []string{"QB", "RB", "FLEX"}, info.RosterPositions)
	require.Equal(t, 1.0, info.ScoringSettings["rec"])
}

var freeAgentCatalog = []domain.PlayerRecord{
	{ID: "qb1", FullName: "Josh Allen", Position: "QB", Team: "BUF", Active: true},
	{ID: "qb2", FullName: "Jalen Hurts", Position: "QB", Team: "PHI", Active: true},
	{ID: "wr1", FullName: "CeeDee Lamb", Position: "WR", Team: "DAL", Active: true},
}

func TestFreeAgents_ExcludesRosteredQB(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: `[{"roster_id":1,"players":["qb1"]},{"roster_id":2,"players":["wr1"]}]`},
	})
	sport := NewFootball(client, staticCatalog(freeAgentCatalog...), nil)

	resp := call(t, sport, ToolGetFreeAgents, domain.ToolParams{Sport: "football", LeagueID: "L1", Position: "QB", Count: intPtr(25)})
	require.True(t, resp.Success, resp.Error)

	payload := resp.Data.(FreeAgents)
	require.Empty(t, payload.Warning)
	require.Equal(t, []domain.FreeAgent{
		{ID: "qb2", FullName: "Jalen Hurts", Position: "QB", Team: "PHI", Ownership: domain.OwnershipUnavailable},
	}, payload.Players)
}

func TestFreeAgents_CatalogFailureDegrades(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: `[]`},
	})
	resp := call(t, NewFootball(client, brokenCatalog(), nil), ToolGetFreeAgents, domain.ToolParams{LeagueID: "L1"})
	require.True(t, resp.Success)

	payload := resp.Data.(FreeAgents)
	require.Empty(t, payload.Players)
	require.NotNil(t, payload.Players)
	require.Contains(t, payload.Warning, string(domain.CodeEnrichmentDegraded))
	require.Equal(t, domain.DefaultFreeAgentCount, payload.Count)
}

func TestFreeAgents_RosterFailureFails(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {status: http.StatusBadRequest},
	})
	resp := call(t, NewFootball(client, staticCatalog(freeAgentCatalog...), nil), ToolGetFreeAgents, domain.ToolParams{LeagueID: "L1"})
	require.False(t, resp.Success)
	require.Equal(t, domain.ErrorCode("SLEEPER_BAD_REQUEST"), resp.Code)
}

func TestSearchPlayers(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: `[{"roster_id":5,"players":["qb1"]}]`},
	})
	sport := NewFootball(client, staticCatalog(freeAgentCatalog...), nil)

	resp := call(t, sport, ToolSearchPlayers, domain.ToolParams{})
	require.Equal(t, domain.CodeMissingParam, resp.Code)

	resp = call(t, sport, ToolSearchPlayers, domain.ToolParams{Query: "j", LeagueID: "L1"})
	require.True(t, resp.Success)
	players := resp.Data.(PlayerSearch).Players
	require.Len(t, players, 2)
	require.Equal(t, "qb2", players[0].ID)
	require.Empty(t, players[0].RosteredBy)
	require.Equal(t, "qb1", players[1].ID)
	require.Equal(t, "5", players[1].RosteredBy)

	resp = call(t, sport, ToolSearchPlayers, domain.ToolParams{Query: "lamb"})
	require.True(t, resp.Success)
	require.Len(t, resp.Data.(PlayerSearch).Players, 1)
}

const lineupRoster = `[
	{"roster_id":1,"owner_id":"u1","players":["a","b","c","d","e"],"starters":["a","0","b"],"reserve":["d"],"taxi":["e"]},
	{"roster_id":2,"owner_id":"u2","co_owners":["u9"],"players":["x"],"starters":["x"]}
]`

func TestRoster_TeamSplitsLineup(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: lineupRoster},
		"/league/L1/users":   {body: `[{"user_id":"u1","display_name":"one"}]`},
	})
	sport := NewFootball(client, staticCatalog(domain.PlayerRecord{ID: "a", FullName: "Player A", Position: "QB", Team: "KC", Active: true}), nil)

	resp := call(t, sport, ToolGetRoster, domain.ToolParams{LeagueID: "L1", TeamID: "1"})
	require.True(t, resp.Success, resp.Error)
	team := resp.Data.(TeamRoster)
	require.Equal(t, []RosterPlayer{{ID: "a", Name: "Player A", Position: "QB", Team: "KC"}, {ID: "b"}}, team.Starters)
	require.Equal(t, []RosterPlayer{{ID: "c"}, {ID: "e"}}, team.Bench)
	require.Equal(t, []RosterPlayer{{ID: "d"}}, team.Reserve)
	require.Equal(t, []RosterPlayer{{ID: "e"}}, team.Taxi)
	require.Equal(t, "one", team.TeamName)

	resp = call(t, sport, ToolGetRoster, domain.ToolParams{LeagueID: "L1", TeamID: "u9"})
	require.True(t, resp.Success)
	require.Equal(t, 2, resp.Data.(TeamRoster).RosterID)

	resp = call(t, sport, ToolGetRoster, domain.ToolParams{LeagueID: "L1", TeamID: "42"})
	require.False(t, resp.Success)
	require.Equal(t, domain.ErrorCode("SLEEPER_NOT_FOUND"), resp.Code)
}

func TestRoster_LeagueSummaryAndDegradedEnrichment(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/league/L1/rosters": {body: lineupRoster},
		"/league/L1/users":   {body: `[]`},
	})
	sport := NewFootball(client, brokenCatalog(), nil)

	resp := call(t, sport, ToolGetRoster, domain.ToolParams{LeagueID: "L1"})
	require.True(t, resp.Success)
	summary := resp.Data.(LeagueRosters)
	require.Len(t, summary.Teams, 2)
	require.Equal(t, 5, summary.Teams[0].PlayerCount)

	resp = call(t, sport, ToolGetRoster, domain.ToolParams{LeagueID: "L1", TeamID: "1"})
	require.True(t, resp.Success)
	team := resp.Data.(TeamRoster)
	require.Contains(t, team.Warning, string(domain.CodeEnrichmentDegraded))
	require.Equal(t, RosterPlayer{ID: "a"}, team.Starters[0])
}

func TestMatchups_DefaultsToCurrentWeekAndPairs(t *testing.T) {
	platform, client := newFakePlatform(t, map[string]fakeRoute{
		"/state/nfl":            {body: `{"week":6,"season":"2025"}`},
		"/league/L1/matchups/6": {body: `[
			{"roster_id":2,"matchup_id":1,"points":101.5},
			{"roster_id":1,"matchup_id":1,"points":99.1},
			{"roster_id":3,"matchup_id":2,"points":0},
			{"roster_id":4,"matchup_id":2,"points":0},
			{"roster_id":5,"matchup_id":3,"points":80,"custom_points":90},
			{"roster_id":6,"matchup_id":3,"points":90},
			{"roster_id":7,"matchup_id":null,"points":0}
		]`},
		"/league/L1/rosters": {body: `[{"roster_id":1,"owner_id":"u1"}]`},
		"/league/L1/users":   {body: `[{"user_id":"u1","metadata":{"team_name":"Home Team"}}]`},
	})
	resp := call(t, NewFootball(client, nil, nil), ToolGetMatchups, domain.ToolParams{LeagueID: "L1"})
	require.True(t, resp.Success, resp.Error)

	result := resp.Data.(Matchups)
	require.Equal(t, 6, result.Week)
	require.Len(t, result.Matchups, 3)

	first := result.Matchups[0]
	require.Equal(t, 1, first.Home.RosterID)
	require.Equal(t, "Home Team", first.Home.TeamName)
	require.Equal(t, 2, first.Away.RosterID)
	require.Equal(t, "away", first.Winner)

	require.Empty(t, result.Matchups[1].Winner)
	require.Equal(t, "tie", result.Matchups[2].Winner)
	require.Len(t, result.Byes, 1)
	require.Equal(t, 7, result.Byes[0].RosterID)

	resp = call(t, NewFootball(client, nil, nil), ToolGetMatchups, domain.ToolParams{LeagueID: "L1", Week: intPtr(6)})
	require.True(t, resp.Success)
	require.Equal(t, 1, platform.hitCount("/state/nfl"))
}

func TestTransactions_DefaultWindowDedupsAcrossWeeks(t *testing.T) {
	_, client := newFakePlatform(t, map[string]fakeRoute{
		"/state/nba": {body: `{"week":3}`},
		"/league/L1/transactions/3": {body: `[
			{"transaction_id":"t2","type":"free_agent","status":"complete","created":3000,"adds":{"p1":1}},
			{"transaction_id":"t1","type":"waiver","status":"complete","created":2000,"adds":{"p2":2},"settings":{"waiver_bid":12}}
		]`},
		"/league/L1/transactions/2": {body: `[
			{"transaction_id":"t1","type":"waiver","status":"failed","created":2000,"adds":{"p2":2}},
			{"transaction_id":"t0","type":"commissioner","created":1500},
			{"transaction_id":"t3","type":"trade","status":"complete","created":1000,"roster_ids":[1,2]}
		]`},
	})
	sport := NewBasketball(client, staticCatalog(domain.PlayerRecord{ID: "p1", FullName: "Nikola Jokic", Position: "C", Team: "DEN", Active: true}), nil)

	resp := call(t, sport, ToolGetTransactions, domain.ToolParams{Sport: "basketball", LeagueID: "L1"})
	require.True(t, resp.Success, resp.Error)

	payload := resp.Data.(Transactions)
	require.Equal(t, []int{3, 2}, payload.Weeks)
	require.Len(t, payload.Transactions, 3)
	require.Equal(t, "t2", payload.Transactions[0].ID)
	require.Equal(t, "Nikola Jokic", payload.Transactions[0].PlayersAdded[0].Name)
	require.Equal(t, "complete", payload.Transactions[1].Status)
	require.Equal(t, 12, *payload.Transactions[1].FAABBid)
	require.Equal(t, domain.TransactionTrade, payload.Transactions[2].Type)

	resp = call(t, sport, ToolGetTransactions, domain.ToolParams{LeagueID: "L1", Type: "trade", Week: intPtr(2)})
	require.True(t, resp.Success)
	payload = resp.Data.(Transactions)
	require.Equal(t, []int{2}, payload.Weeks)
	require.Len(t, payload.Transactions, 1)

	resp = call(t, sport, ToolGetTransactions, domain.ToolParams{LeagueID: "L1", Type: "veto"})
	require.False(t, resp.Success)
	require.Equal(t, domain.CodeMissingParam, resp.Code)
}

func TestCatalogSource_MapsSportKeys(t *testing.T) {
	platform, client := newFakePlatform(t, map[string]fakeRoute{
		"/players/nba": {body: `{}`},
	})
	source := NewCatalogSource(client)

	body, err := source.FetchCatalog(context.Background(), "basketball")
	require.NoError(t, err)
	require.Equal(t, "{}", string(body))
	require.Equal(t, 1, platform.hitCount("/players/nba"))

	_, err = source.FetchCatalog(context.Background(), "baseball")
	code, _ := domain.ExtractError(err)
	require.Equal(t, domain.CodeSportNotSupported, code)
}

func TestRegistry_Lookup(t *testing.T) {
	_, client := newFakePlatform(t, nil)
	registry := NewRegistry(NewFootball(client, nil, nil), NewBasketball(client, nil, nil))

	sport, ok := registry.Lookup(" Football ")
	require.True(t, ok)
	require.Equal(t, SportFootball, sport.Name())
	_, ok = registry.Lookup("baseball")
	require.False(t, ok)
	require.Equal(t, []string{"basketball", "football"}, registry.Names())
	require.Len(t, sport.Tools(), 7)
	_, ok = sport.Handler("get_weather")
	require.False(t, ok)
}
