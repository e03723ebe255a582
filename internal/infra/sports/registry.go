package sports

import (
	"sort"
	"strings"

	"fantasygw/internal/domain"
)

// Sport exposes one sport's tool table. Implementations are selected once at
// startup and shared by every request.
type Sport interface {
	Name() string
	Handler(tool string) (domain.ToolHandler, bool)
	Tools() []domain.ToolSpec
}

// Registry maps sport keys to their implementation.
type Registry struct {
	sports map[string]Sport
}

func NewRegistry(sports ...Sport) *Registry {
	r := &Registry{sports: make(map[string]Sport, len(sports))}
	for _, sport := range sports {
		if sport == nil {
			continue
		}
		r.sports[strings.ToLower(sport.Name())] = sport
	}
	return r
}

func (r *Registry) Lookup(name string) (Sport, bool) {
	if r == nil {
		return nil, false
	}
	sport, ok := r.sports[strings.ToLower(strings.TrimSpace(name))]
	return sport, ok
}

// Sports returns every registered sport ordered by name.
func (r *Registry) Sports() []Sport {
	if r == nil {
		return nil
	}
	out := make([]Sport, 0, len(r.sports))
	for _, sport := range r.sports {
		out = append(out, sport)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names lists the supported sport keys.
func (r *Registry) Names() []string {
	sports := r.Sports()
	names := make([]string, 0, len(sports))
	for _, sport := range sports {
		names = append(names, sport.Name())
	}
	return names
}
