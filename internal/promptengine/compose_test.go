package promptengine

import (
	"strings"
	"testing"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

func TestBuildImagePrompt_KnownElementAndGuardian(t *testing.T) {
	engine := newTestEngine(t)
	got := engine.BuildImagePrompt("a ruined citadel", domain.ElementFire, "kael")
	for _, fragment := range []string{"a ruined citadel", "crimson", "drifting embers", "Kael", "ember"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("prompt %q missing %q", got, fragment)
		}
	}
}

func TestBuildImagePrompt_UnknownElementEchoesSubject(t *testing.T) {
	engine := newTestEngine(t)
	if got := engine.BuildImagePrompt("a ruined citadel", "plasma", ""); got != "a ruined citadel" {
		t.Fatalf("prompt=%q, want raw subject", got)
	}
}

func TestBuildImagePrompt_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	a := engine.BuildImagePrompt("a grove", domain.ElementEarth, "thorne")
	b := engine.BuildImagePrompt("a grove", domain.ElementEarth, "thorne")
	if a != b {
		t.Fatalf("prompts differ: %q vs %q", a, b)
	}
}

func TestBuildCharacterPrompt(t *testing.T) {
	engine := newTestEngine(t)
	got := engine.BuildCharacterPrompt("Ilya", "mira")
	for _, fragment := range []string{"Ilya", "Gate of Tides", "water", "tide"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("prompt %q missing %q", got, fragment)
		}
	}
	if got := engine.BuildCharacterPrompt("Ilya", "nobody"); got != "Ilya" {
		t.Fatalf("prompt=%q, want raw name for unknown guardian", got)
	}
}

func TestBuildScenePrompt(t *testing.T) {
	engine := newTestEngine(t)
	got := engine.BuildScenePrompt("the hollow market", domain.ElementVoid, "tense")
	for _, fragment := range []string{"the hollow market", "obsidian", "tense mood"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("prompt %q missing %q", got, fragment)
		}
	}
	if got := engine.BuildScenePrompt("the hollow market", "plasma", ""); got != "the hollow market" {
		t.Fatalf("prompt=%q, want raw location", got)
	}
}
