package promptengine

import (
	"strings"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

type elementPalette struct {
	Colors   []string
	Particle string
	Effect   string
}

var elementPalettes = map[domain.Element]elementPalette{
	domain.ElementFire: {
		Colors:   []string{"crimson", "amber", "gold"},
		Particle: "drifting embers",
		Effect:   "heat shimmer and rising sparks",
	},
	domain.ElementWater: {
		Colors:   []string{"sapphire", "teal", "foam white"},
		Particle: "pearled droplets",
		Effect:   "rippling light and slow currents",
	},
	domain.ElementEarth: {
		Colors:   []string{"moss green", "umber", "ochre"},
		Particle: "floating pollen",
		Effect:   "dappled sunlight through canopy",
	},
	domain.ElementWind: {
		Colors:   []string{"silver", "pale blue", "white"},
		Particle: "swirling petals",
		Effect:   "streaking air currents",
	},
	domain.ElementVoid: {
		Colors:   []string{"obsidian", "violet", "starless black"},
		Particle: "collapsing starlight",
		Effect:   "gravitational distortion at the edges",
	},
	domain.ElementSpirit: {
		Colors:   []string{"iridescent white", "rose gold", "aurora"},
		Particle: "glowing motes",
		Effect:   "soft luminous haze",
	},
}

// BuildImagePrompt composes image prompt text from the element palette and
// the guardian's vocabulary. Unknown elements and guardians degrade to the
// raw subject; this never fails.
func (e *Engine) BuildImagePrompt(subject string, element domain.Element, guardianID string) string {
	subject = strings.TrimSpace(subject)

	var b strings.Builder
	b.WriteString(subject)

	if palette, ok := elementPalettes[element]; ok {
		b.WriteString(", palette of " + joinAnd(palette.Colors))
		b.WriteString(", " + palette.Particle)
		b.WriteString(", " + palette.Effect)
	}
	if guardian, ok := e.roster.Lookup(guardianID); ok {
		b.WriteString(", in the manner of " + guardian.Name)
		if len(guardian.Keywords) > 0 {
			b.WriteString(", evoking " + joinAnd(firstN(guardian.Keywords, 3)))
		}
	}
	return b.String()
}

// BuildCharacterPrompt composes character prompt text from the guardian's
// gate, element and vocabulary, echoing the raw name for unknown guardians.
func (e *Engine) BuildCharacterPrompt(name string, guardianID string) string {
	name = strings.TrimSpace(name)
	guardian, ok := e.roster.Lookup(guardianID)
	if !ok {
		return name
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteString(", a figure attuned to the Gate of " + guardian.Gate)
	b.WriteString(", wreathed in " + string(guardian.Element))
	if palette, ok := elementPalettes[guardian.Element]; ok {
		b.WriteString(", " + palette.Particle)
	}
	if len(guardian.Keywords) > 0 {
		b.WriteString(", evoking " + joinAnd(firstN(guardian.Keywords, 3)))
	}
	return b.String()
}

// BuildScenePrompt composes scene prompt text from the element palette and
// an optional mood, echoing the raw location for unknown elements.
func (e *Engine) BuildScenePrompt(location string, element domain.Element, mood string) string {
	location = strings.TrimSpace(location)
	mood = strings.TrimSpace(mood)

	var b strings.Builder
	b.WriteString(location)
	if palette, ok := elementPalettes[element]; ok {
		b.WriteString(", bathed in " + joinAnd(palette.Colors))
		b.WriteString(", " + palette.Effect)
	}
	if mood != "" {
		b.WriteString(", " + mood + " mood")
	}
	return b.String()
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
