package domain

import (
	"errors"
	"strings"
)

// Guardian is a creative-mentor identity tied to an elemental domain and a
// thematic gate. Guardians bias prompt composition and curation scoring.
type Guardian struct {
	ID       string
	Name     string
	Gate     string
	Element  Element
	Keywords []string
}

func (g Guardian) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("guardian id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("guardian name is required")
	}
	if !g.Element.Valid() {
		return errors.New("guardian element is invalid")
	}
	return nil
}

// MatchesKeyword reports whether the given term appears in the guardian's
// creative-domain vocabulary, case-insensitively.
func (g Guardian) MatchesKeyword(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for _, kw := range g.Keywords {
		if strings.ToLower(strings.TrimSpace(kw)) == term {
			return true
		}
	}
	return false
}
