package upstream

import (
	"context"
	"fmt"
	"net/url"
)

type League struct {
	LeagueID         string             `json:"league_id"`
	Name             string             `json:"name"`
	Season           string             `json:"season"`
	SeasonType       string             `json:"season_type"`
	Sport            string             `json:"sport"`
	Status           string             `json:"status"`
	TotalRosters     int                `json:"total_rosters"`
	RosterPositions  []string           `json:"roster_positions"`
	ScoringSettings  map[string]float64 `json:"scoring_settings"`
	Settings         map[string]any     `json:"settings"`
	PreviousLeagueID string             `json:"previous_league_id"`
	DraftID          string             `json:"draft_id"`
	Avatar           string             `json:"avatar"`
}

type RosterSettings struct {
	Wins               int `json:"wins"`
	Losses             int `json:"losses"`
	Ties               int `json:"ties"`
	Fpts               int `json:"fpts"`
	FptsDecimal        int `json:"fpts_decimal"`
	FptsAgainst        int `json:"fpts_against"`
	FptsAgainstDecimal int `json:"fpts_against_decimal"`
	WaiverPosition     int `json:"waiver_position"`
	WaiverBudgetUsed   int `json:"waiver_budget_used"`
	TotalMoves         int `json:"total_moves"`
}

type Roster struct {
	RosterID int            `json:"roster_id"`
	OwnerID  string         `json:"owner_id"`
	CoOwners []string       `json:"co_owners"`
	LeagueID string         `json:"league_id"`
	Players  []string       `json:"players"`
	Starters []string       `json:"starters"`
	Reserve  []string       `json:"reserve"`
	Taxi     []string       `json:"taxi"`
	Settings RosterSettings `json:"settings"`
}

type UserMetadata struct {
	TeamName string `json:"team_name"`
}

type User struct {
	UserID      string       `json:"user_id"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name"`
	Avatar      string       `json:"avatar"`
	Metadata    UserMetadata `json:"metadata"`
}

type Matchup struct {
	RosterID     int      `json:"roster_id"`
	MatchupID    *int     `json:"matchup_id"`
	Points       float64  `json:"points"`
	CustomPoints *float64 `json:"custom_points"`
	Starters     []string `json:"starters"`
	Players      []string `json:"players"`
}

type State struct {
	Week         int    `json:"week"`
	DisplayWeek  int    `json:"display_week"`
	Leg          int    `json:"leg"`
	Season       string `json:"season"`
	SeasonType   string `json:"season_type"`
	LeagueSeason string `json:"league_season"`
}

type TransactionSettings struct {
	WaiverBid *int `json:"waiver_bid"`
}

type TransactionDraftPick struct {
	Season          string `json:"season"`
	Round           int    `json:"round"`
	RosterID        int    `json:"roster_id"`
	PreviousOwnerID int    `json:"previous_owner_id"`
	OwnerID         int    `json:"owner_id"`
}

type Transaction struct {
	TransactionID string                 `json:"transaction_id"`
	Type          string                 `json:"type"`
	Status        string                 `json:"status"`
	Created       int64                  `json:"created"`
	StatusUpdated int64                  `json:"status_updated"`
	Leg           int                    `json:"leg"`
	RosterIDs     []int                  `json:"roster_ids"`
	Adds          map[string]int         `json:"adds"`
	Drops         map[string]int         `json:"drops"`
	DraftPicks    []TransactionDraftPick `json:"draft_picks"`
	Settings      *TransactionSettings   `json:"settings"`
}

func leaguePath(leagueID string, parts ...string) string {
	path := "/league/" + url.PathEscape(leagueID)
	for _, part := range parts {
		path += "/" + part
	}
	return path
}

func (c *Client) League(ctx context.Context, leagueID string) (League, error) {
	var league League
	err := c.FetchJSON(ctx, leaguePath(leagueID), FetchOptions{Endpoint: "league"}, &league)
	return league, err
}

func (c *Client) Rosters(ctx context.Context, leagueID string) ([]Roster, error) {
	var rosters []Roster
	err := c.FetchJSON(ctx, leaguePath(leagueID, "rosters"), FetchOptions{Endpoint: "rosters"}, &rosters)
	return rosters, err
}

func (c *Client) Users(ctx context.Context, leagueID string) ([]User, error) {
	var users []User
	err := c.FetchJSON(ctx, leaguePath(leagueID, "users"), FetchOptions{Endpoint: "users"}, &users)
	return users, err
}

func (c *Client) Matchups(ctx context.Context, leagueID string, week int) ([]Matchup, error) {
	var matchups []Matchup
	err := c.FetchJSON(ctx, leaguePath(leagueID, "matchups", fmt.Sprint(week)), FetchOptions{Endpoint: "matchups"}, &matchups)
	return matchups, err
}

func (c *Client) Transactions(ctx context.Context, leagueID string, week int) ([]Transaction, error) {
	var txns []Transaction
	err := c.FetchJSON(ctx, leaguePath(leagueID, "transactions", fmt.Sprint(week)), FetchOptions{Endpoint: "transactions"}, &txns)
	return txns, err
}

// State returns the platform's current season state for a platform sport key (nfl, nba).
func (c *Client) State(ctx context.Context, platformSport string) (State, error) {
	var state State
	err := c.FetchJSON(ctx, "/state/"+url.PathEscape(platformSport), FetchOptions{Endpoint: "state"}, &state)
	return state, err
}

// Players returns the raw player catalog. Its shape varies and is normalized by the reference cache.
func (c *Client) Players(ctx context.Context, platformSport string) ([]byte, error) {
	return c.Fetch(ctx, "/players/"+url.PathEscape(platformSport), FetchOptions{
		Endpoint: "players",
		Timeout:  3 * c.timeout,
	})
}
