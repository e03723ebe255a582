package normalize

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"fantasygw/internal/domain"
)

// ClampCount bounds a requested result count to [1, upper].
func ClampCount(count, upper int) int {
	if count < 1 {
		return 1
	}
	if count > upper {
		return upper
	}
	return count
}

// BuildFreeAgents lists active catalog players that are not on any roster,
// optionally restricted to one position, ordered by (full_name, id).
func BuildFreeAgents(index domain.PlayerIndex, rostered map[string]struct{}, position string, count int) []domain.FreeAgent {
	limit := ClampCount(count, domain.MaxFreeAgentCount)
	position = strings.TrimSpace(position)

	matches := make([]domain.PlayerRecord, 0)
	for id, record := range index {
		if !record.Active {
			continue
		}
		if _, taken := rostered[id]; taken {
			continue
		}
		if position != "" && !strings.EqualFold(record.Position, position) {
			continue
		}
		matches = append(matches, record)
	}
	sortByNameThenID(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]domain.FreeAgent, 0, len(matches))
	for _, record := range matches {
		out = append(out, domain.FreeAgent{
			ID:        record.ID,
			FullName:  record.FullName,
			Position:  record.Position,
			Team:      record.Team,
			Ownership: domain.OwnershipUnavailable,
		})
	}
	return out
}

// BuildPlayerSearch matches catalog players whose name contains query, ignoring
// case. Inactive players are included. rosteredBy maps player id to the roster
// holding it and may be nil.
func BuildPlayerSearch(index domain.PlayerIndex, query, position string, count int, rosteredBy map[string]string) []domain.SearchResult {
	limit := ClampCount(count, domain.MaxSearchCount)
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}
	}
	position = strings.TrimSpace(position)

	folder := cases.Fold()
	needle := folder.String(query)

	matches := make([]domain.PlayerRecord, 0)
	for _, record := range index {
		if position != "" && !strings.EqualFold(record.Position, position) {
			continue
		}
		if !strings.Contains(folder.String(searchName(record)), needle) {
			continue
		}
		matches = append(matches, record)
	}
	sortByNameThenID(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]domain.SearchResult, 0, len(matches))
	for _, record := range matches {
		out = append(out, domain.SearchResult{
			ID:         record.ID,
			FullName:   record.FullName,
			Position:   record.Position,
			Team:       record.Team,
			Active:     record.Active,
			Ownership:  domain.OwnershipUnavailable,
			RosteredBy: rosteredBy[record.ID],
		})
	}
	return out
}

func searchName(record domain.PlayerRecord) string {
	if record.FullName != "" {
		return record.FullName
	}
	return strings.TrimSpace(record.FirstName + " " + record.LastName)
}

func sortByNameThenID(records []domain.PlayerRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].FullName != records[j].FullName {
			return records[i].FullName < records[j].FullName
		}
		return records[i].ID < records[j].ID
	})
}
