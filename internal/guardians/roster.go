// Package guardians holds the roster of creative-mentor identities used to
// bias prompt composition and curation scoring.
package guardians

import (
	"sort"
	"strings"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

// Roster maps guardian ids to their definitions.
type Roster map[string]domain.Guardian

// Builtin returns the default roster, one guardian per element.
func Builtin() Roster {
	list := []domain.Guardian{
		{
			ID:       "lyria",
			Name:     "Lyria",
			Gate:     "Sight",
			Element:  domain.ElementSpirit,
			Keywords: []string{"dream", "radiance", "melody", "aurora", "memory"},
		},
		{
			ID:       "kael",
			Name:     "Kael",
			Gate:     "Forge",
			Element:  domain.ElementFire,
			Keywords: []string{"ember", "forge", "molten", "phoenix", "crimson"},
		},
		{
			ID:       "mira",
			Name:     "Mira",
			Gate:     "Tides",
			Element:  domain.ElementWater,
			Keywords: []string{"tide", "abyss", "current", "pearl", "mist"},
		},
		{
			ID:       "thorne",
			Name:     "Thorne",
			Gate:     "Roots",
			Element:  domain.ElementEarth,
			Keywords: []string{"root", "stone", "grove", "amber", "moss"},
		},
		{
			ID:       "zephra",
			Name:     "Zephra",
			Gate:     "Whisper",
			Element:  domain.ElementWind,
			Keywords: []string{"gale", "feather", "drift", "horizon", "silver"},
		},
		{
			ID:       "noxis",
			Name:     "Noxis",
			Gate:     "Hollow",
			Element:  domain.ElementVoid,
			Keywords: []string{"eclipse", "hollow", "starless", "obsidian", "echo"},
		},
	}

	roster := make(Roster, len(list))
	for _, g := range list {
		roster[g.ID] = g
	}
	return roster
}

// Lookup resolves a guardian id case-insensitively.
func (r Roster) Lookup(id string) (domain.Guardian, bool) {
	g, ok := r[strings.ToLower(strings.TrimSpace(id))]
	return g, ok
}

// IDs lists guardian ids in a stable order.
func (r Roster) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Vocabulary flattens every guardian's keywords plus gate and element names
// into the canon vocabulary set, lowercased.
func (r Roster) Vocabulary() map[string]struct{} {
	vocab := make(map[string]struct{})
	for _, g := range r {
		vocab[strings.ToLower(g.Name)] = struct{}{}
		vocab[strings.ToLower(g.Gate)] = struct{}{}
		vocab[strings.ToLower(string(g.Element))] = struct{}{}
		for _, kw := range g.Keywords {
			vocab[strings.ToLower(strings.TrimSpace(kw))] = struct{}{}
		}
	}
	delete(vocab, "")
	return vocab
}
