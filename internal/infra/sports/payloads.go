package sports

import "fantasygw/internal/domain"

type LeagueInfo struct {
	LeagueID         string             `json:"league_id"`
	Name             string             `json:"name"`
	Sport            string             `json:"sport"`
	Season           string             `json:"season"`
	SeasonType       string             `json:"season_type,omitempty"`
	Status           string             `json:"status"`
	TotalRosters     int                `json:"total_rosters"`
	RosterPositions  []string           `json:"roster_positions"`
	ScoringSettings  map[string]float64 `json:"scoring_settings,omitempty"`
	Settings         map[string]any     `json:"settings,omitempty"`
	PreviousLeagueID string             `json:"previous_league_id,omitempty"`
	DraftID          string             `json:"draft_id,omitempty"`
}

type StandingEntry struct {
	Rank          int     `json:"rank"`
	RosterID      int     `json:"roster_id"`
	OwnerID       string  `json:"owner_id,omitempty"`
	TeamName      string  `json:"team_name"`
	DisplayName   string  `json:"display_name,omitempty"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	WinPct        float64 `json:"win_pct"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
}

type Standings struct {
	LeagueID   string          `json:"league_id"`
	SeasonYear int             `json:"season_year,omitempty"`
	Standings  []StandingEntry `json:"standings"`
}

type RosterSummary struct {
	RosterID    int    `json:"roster_id"`
	OwnerID     string `json:"owner_id,omitempty"`
	TeamName    string `json:"team_name"`
	DisplayName string `json:"display_name,omitempty"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Ties        int    `json:"ties"`
	PlayerCount int    `json:"player_count"`
}

type LeagueRosters struct {
	LeagueID string          `json:"league_id"`
	Teams    []RosterSummary `json:"teams"`
}

type RosterPlayer struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Position string `json:"position,omitempty"`
	Team     string `json:"team,omitempty"`
}

type TeamRoster struct {
	LeagueID    string         `json:"league_id"`
	RosterID    int            `json:"roster_id"`
	OwnerID     string         `json:"owner_id,omitempty"`
	TeamName    string         `json:"team_name"`
	DisplayName string         `json:"display_name,omitempty"`
	Starters    []RosterPlayer `json:"starters"`
	Bench       []RosterPlayer `json:"bench"`
	Reserve     []RosterPlayer `json:"reserve"`
	Taxi        []RosterPlayer `json:"taxi,omitempty"`
	Warning     string         `json:"warning,omitempty"`
}

type MatchupSide struct {
	RosterID int     `json:"roster_id"`
	OwnerID  string  `json:"owner_id,omitempty"`
	TeamName string  `json:"team_name"`
	Points   float64 `json:"points"`
}

type MatchupPair struct {
	MatchupID int          `json:"matchup_id"`
	Home      MatchupSide  `json:"home"`
	Away      *MatchupSide `json:"away,omitempty"`
	// Winner is home, away or tie; empty while neither side has scored.
	Winner string `json:"winner,omitempty"`
}

type Matchups struct {
	LeagueID string        `json:"league_id"`
	Week     int           `json:"week"`
	Matchups []MatchupPair `json:"matchups"`
	Byes     []MatchupSide `json:"byes,omitempty"`
}

type FreeAgents struct {
	LeagueID string             `json:"league_id"`
	Position string             `json:"position,omitempty"`
	Count    int                `json:"count"`
	Players  []domain.FreeAgent `json:"players"`
	Warning  string             `json:"warning,omitempty"`
}

type PlayerSearch struct {
	Query    string                `json:"query"`
	LeagueID string                `json:"league_id,omitempty"`
	Position string                `json:"position,omitempty"`
	Count    int                   `json:"count"`
	Players  []domain.SearchResult `json:"players"`
	Warning  string                `json:"warning,omitempty"`
}

type Transactions struct {
	LeagueID     string                         `json:"league_id"`
	Weeks        []int                          `json:"weeks"`
	Type         domain.TransactionType         `json:"type,omitempty"`
	Count        int                            `json:"count"`
	Transactions []domain.NormalizedTransaction `json:"transactions"`
	Warning      string                         `json:"warning,omitempty"`
}
