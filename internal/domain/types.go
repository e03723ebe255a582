package domain

import (
	"context"
	"strings"
)

// ToolRequest is the inbound call shape: a tool name plus its parameters.
type ToolRequest struct {
	Tool   string     `json:"tool"`
	Params ToolParams `json:"params"`
}

// ToolParams carries the common league scope and the tool-specific optional fields.
type ToolParams struct {
	Sport      string `json:"sport" jsonschema:"sport key, e.g. football or basketball"`
	LeagueID   string `json:"league_id,omitempty" jsonschema:"platform league identifier"`
	SeasonYear int    `json:"season_year,omitempty" jsonschema:"season year the league belongs to"`
	TeamID     string `json:"team_id,omitempty" jsonschema:"roster id or owner user id"`
	Week       *int   `json:"week,omitempty" jsonschema:"scoring period; defaults to the current one"`
	Position   string `json:"position,omitempty" jsonschema:"position filter, e.g. QB"`
	Count      *int   `json:"count,omitempty" jsonschema:"maximum number of results"`
	Query      string `json:"query,omitempty" jsonschema:"player name search text"`
	Type       string `json:"type,omitempty" jsonschema:"transaction type filter: add, drop, trade or waiver"`
}

// NormalizedSport lower-cases and trims the sport key.
func (p ToolParams) NormalizedSport() string {
	return strings.ToLower(strings.TrimSpace(p.Sport))
}

// CountOr returns the requested count or the fallback when none was given.
func (p ToolParams) CountOr(fallback int) int {
	if p.Count == nil {
		return fallback
	}
	return *p.Count
}

// ExecuteResponse is the envelope every tool call resolves to.
type ExecuteResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
}

func Succeed(data any) ExecuteResponse {
	return ExecuteResponse{Success: true, Data: data}
}

func Fail(code ErrorCode, msg string) ExecuteResponse {
	if code == "" {
		code = CodeInternal
	}
	return ExecuteResponse{Success: false, Error: msg, Code: code}
}

// FailFromError converts any error into a failed envelope.
func FailFromError(err error) ExecuteResponse {
	code, msg := ExtractError(err)
	return Fail(code, msg)
}

// ToolHandler serves one tool for one sport. Implementations never panic out
// and never leak Go errors: failures come back as a failed envelope.
type ToolHandler func(ctx context.Context, params ToolParams) ExecuteResponse

// ToolSpec describes a tool for discovery surfaces.
type ToolSpec struct {
	Name        string
	Description string
}
