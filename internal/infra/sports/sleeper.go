package sports

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/telemetry"
	"fantasygw/internal/infra/upstream"
)

const (
	ToolGetLeagueInfo   = "get_league_info"
	ToolGetStandings    = "get_standings"
	ToolGetRoster       = "get_roster"
	ToolGetMatchups     = "get_matchups"
	ToolGetFreeAgents   = "get_free_agents"
	ToolSearchPlayers   = "search_players"
	ToolGetTransactions = "get_transactions"
)

const (
	SportFootball   = "football"
	SportBasketball = "basketball"
)

// platformSports maps a sport key to the platform's own sport key.
var platformSports = map[string]string{
	SportFootball:   "nfl",
	SportBasketball: "nba",
}

// PlatformSport returns the platform key (nfl, nba) for a sport.
func PlatformSport(sport string) (string, bool) {
	key, ok := platformSports[strings.ToLower(strings.TrimSpace(sport))]
	return key, ok
}

// LeagueClient is the slice of the upstream client the handlers need.
type LeagueClient interface {
	Platform() string
	League(ctx context.Context, leagueID string) (upstream.League, error)
	Rosters(ctx context.Context, leagueID string) ([]upstream.Roster, error)
	Users(ctx context.Context, leagueID string) ([]upstream.User, error)
	Matchups(ctx context.Context, leagueID string, week int) ([]upstream.Matchup, error)
	Transactions(ctx context.Context, leagueID string, week int) ([]upstream.Transaction, error)
	State(ctx context.Context, platformSport string) (upstream.State, error)
}

// PlayerCatalog serves the cached reference catalog.
type PlayerCatalog interface {
	Index(ctx context.Context, sport string) (domain.PlayerIndex, error)
}

// SleeperSport serves the tool table for one sport from the Sleeper API.
type SleeperSport struct {
	name          string
	platformSport string
	client        LeagueClient
	players       PlayerCatalog
	logger        *zap.Logger
	handlers      map[string]domain.ToolHandler
	specs         []domain.ToolSpec
}

func NewFootball(client LeagueClient, players PlayerCatalog, logger *zap.Logger) *SleeperSport {
	return newSleeperSport(SportFootball, client, players, logger)
}

func NewBasketball(client LeagueClient, players PlayerCatalog, logger *zap.Logger) *SleeperSport {
	return newSleeperSport(SportBasketball, client, players, logger)
}

func newSleeperSport(name string, client LeagueClient, players PlayerCatalog, logger *zap.Logger) *SleeperSport {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SleeperSport{
		name:          name,
		platformSport: platformSports[name],
		client:        client,
		players:       players,
		logger:        logger.Named("sports").With(telemetry.SportField(name)),
	}
	s.specs = []domain.ToolSpec{
		{Name: ToolGetLeagueInfo, Description: "League settings, scoring and roster positions."},
		{Name: ToolGetStandings, Description: "Standings ranked by wins, then points for."},
		{Name: ToolGetRoster, Description: "League-wide roster summary, or one team's starters, bench and reserve when team_id is given."},
		{Name: ToolGetMatchups, Description: "Head-to-head matchups for a week (defaults to the current week)."},
		{Name: ToolGetFreeAgents, Description: "Active players not on any roster in the league, optionally filtered by position."},
		{Name: ToolSearchPlayers, Description: "Find players by name; annotates the owning roster when league_id is given."},
		{Name: ToolGetTransactions, Description: "Recent adds, drops, trades and waiver claims (defaults to the current and previous week)."},
	}
	s.handlers = map[string]domain.ToolHandler{
		ToolGetLeagueInfo:   s.leagueInfo,
		ToolGetStandings:    s.standings,
		ToolGetRoster:       s.roster,
		ToolGetMatchups:     s.matchups,
		ToolGetFreeAgents:   s.freeAgents,
		ToolSearchPlayers:   s.searchPlayers,
		ToolGetTransactions: s.transactions,
	}
	return s
}

func (s *SleeperSport) Name() string {
	return s.name
}

func (s *SleeperSport) Handler(tool string) (domain.ToolHandler, bool) {
	handler, ok := s.handlers[tool]
	return handler, ok
}

func (s *SleeperSport) Tools() []domain.ToolSpec {
	out := make([]domain.ToolSpec, len(s.specs))
	copy(out, s.specs)
	return out
}

func requireLeague(op string, params domain.ToolParams) (string, error) {
	leagueID := strings.TrimSpace(params.LeagueID)
	if leagueID == "" {
		return "", domain.MissingParam(op, "league_id")
	}
	return leagueID, nil
}

// currentWeek resolves the platform's current scoring period, clamped to >= 1.
func (s *SleeperSport) currentWeek(ctx context.Context) (int, error) {
	state, err := s.client.State(ctx, s.platformSport)
	if err != nil {
		return 0, err
	}
	week := state.Week
	if week < 1 {
		week = state.DisplayWeek
	}
	if week < 1 {
		week = 1
	}
	return week, nil
}

// resolveWeek honours an explicit week and otherwise asks the platform.
func (s *SleeperSport) resolveWeek(ctx context.Context, params domain.ToolParams) (int, error) {
	if params.Week != nil {
		if *params.Week < 1 {
			return 1, nil
		}
		return *params.Week, nil
	}
	return s.currentWeek(ctx)
}

var errCatalogUnconfigured = errors.New("no player catalog configured")

func (s *SleeperSport) playerIndex(ctx context.Context) (domain.PlayerIndex, error) {
	if s.players == nil {
		return nil, errCatalogUnconfigured
	}
	return s.players.Index(ctx, s.name)
}

// enrichmentWarning is attached to payloads whose player details are degraded.
func enrichmentWarning(err error) string {
	return fmt.Sprintf("%s: player catalog unavailable: %v", domain.CodeEnrichmentDegraded, err)
}

func (s *SleeperSport) logEnrichmentFailure(ctx context.Context, tool string, err error) {
	telemetry.LoggerWithRequest(ctx, s.logger).Warn("player enrichment unavailable",
		telemetry.EventField(telemetry.EventEnrichmentFailed),
		telemetry.ToolField(tool),
		zap.Error(err),
	)
}

type owner struct {
	teamName    string
	displayName string
}

func ownersByID(users []upstream.User) map[string]owner {
	out := make(map[string]owner, len(users))
	for _, user := range users {
		display := user.DisplayName
		if display == "" {
			display = user.Username
		}
		team := strings.TrimSpace(user.Metadata.TeamName)
		if team == "" {
			team = display
		}
		out[user.UserID] = owner{teamName: team, displayName: display}
	}
	return out
}

func teamLabel(roster upstream.Roster, owners map[string]owner) owner {
	if o, ok := owners[roster.OwnerID]; ok {
		return o
	}
	return owner{teamName: "Team " + strconv.Itoa(roster.RosterID)}
}

// rosteredIDs maps every player on any roster of the league to its roster id.
func rosteredIDs(rosters []upstream.Roster) map[string]int {
	out := make(map[string]int)
	for _, roster := range rosters {
		for _, group := range [][]string{roster.Players, roster.Reserve, roster.Taxi} {
			for _, id := range group {
				if isPlayerID(id) {
					out[id] = roster.RosterID
				}
			}
		}
	}
	return out
}

// isPlayerID rejects the empty-slot placeholders the platform uses in lineups.
func isPlayerID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != "0"
}
