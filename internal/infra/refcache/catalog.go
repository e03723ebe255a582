package refcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"fantasygw/internal/domain"
)

var ErrUnknownCatalogShape = errors.New("player catalog is neither an array nor an object")

// CatalogPayload is the union of catalog shapes the platform (and older cache
// values) may carry: a list of records, or an object keyed by player id.
// Exactly one of List or Keyed is set after decoding.
type CatalogPayload struct {
	List  []rawPlayer
	Keyed map[string]rawPlayer
}

func (p *CatalogPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ErrUnknownCatalogShape
	}
	switch trimmed[0] {
	case '[':
		p.Keyed = nil
		return json.Unmarshal(trimmed, &p.List)
	case '{':
		p.List = nil
		return json.Unmarshal(trimmed, &p.Keyed)
	default:
		return ErrUnknownCatalogShape
	}
}

// flexID accepts ids encoded as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type rawPlayer struct {
	PlayerID  flexID `json:"player_id"`
	ID        flexID `json:"id"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Team      string `json:"team"`
	Active    *bool  `json:"active"`
	Status    string `json:"status"`
}

func (r rawPlayer) normalize(fallbackID string) (domain.PlayerRecord, bool) {
	id := string(r.PlayerID)
	if id == "" {
		id = string(r.ID)
	}
	if id == "" {
		id = strings.TrimSpace(fallbackID)
	}
	if id == "" {
		return domain.PlayerRecord{}, false
	}
	first := strings.TrimSpace(r.FirstName)
	last := strings.TrimSpace(r.LastName)
	fullName := strings.TrimSpace(r.FullName)
	if fullName == "" {
		fullName = strings.TrimSpace(first + " " + last)
	}
	active := strings.EqualFold(r.Status, "active")
	if r.Active != nil {
		active = *r.Active
	}
	return domain.PlayerRecord{
		ID:        id,
		FullName:  fullName,
		FirstName: first,
		LastName:  last,
		Position:  strings.TrimSpace(r.Position),
		Team:      strings.TrimSpace(r.Team),
		Active:    active,
	}, true
}

// Records normalizes the payload into canonical records ordered by id,
// dropping any entry without a resolvable id.
func (p CatalogPayload) Records() []domain.PlayerRecord {
	records := make([]domain.PlayerRecord, 0, len(p.List)+len(p.Keyed))
	for _, raw := range p.List {
		if record, ok := raw.normalize(""); ok {
			records = append(records, record)
		}
	}
	for key, raw := range p.Keyed {
		if record, ok := raw.normalize(key); ok {
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// DecodeCatalog is the single ingestion boundary for catalog bytes.
func DecodeCatalog(data []byte) (domain.PlayerIndex, error) {
	var payload CatalogPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode player catalog: %w", err)
	}
	return domain.NewPlayerIndex(payload.Records()), nil
}

// EncodeCatalog serializes an index in the canonical list shape.
func EncodeCatalog(index domain.PlayerIndex) (string, error) {
	data, err := json.Marshal(index.Records())
	if err != nil {
		return "", fmt.Errorf("encode player catalog: %w", err)
	}
	return string(data), nil
}
