package promptengine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/guardians"
	"github.com/atelier-labs/atelier-go/internal/repo"
	"github.com/atelier-labs/atelier-go/internal/repo/memory"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine := New(memory.NewTemplateRepository(), guardians.Builtin(), slog.Default())
	engine.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return engine
}

func TestGenerate_SubstitutesVariables(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID:        "greet",
		Name:      "greeting",
		Type:      domain.ContentTypeText,
		Body:      "Hello {{name}}",
		Variables: []string{"name"},
	})
	if err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	prompt, err := engine.Generate(ctx, "greet", map[string]string{"name": "Lyria"}, nil)
	if err != nil {
		t.Fatalf("Generate() err=%v", err)
	}
	if prompt.Text != "Hello Lyria" {
		t.Fatalf("text=%q, want %q", prompt.Text, "Hello Lyria")
	}
	if !prompt.CreatedAt.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Fatalf("created at=%v, want injected clock", prompt.CreatedAt)
	}
}

func TestGenerate_MissingVariableBecomesEmpty(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID:        "scene",
		Name:      "scene",
		Type:      domain.ContentTypeText,
		Body:      "A {{adjective}} valley under {{sky}}",
		Variables: []string{"adjective", "sky"},
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	prompt, err := engine.Generate(ctx, "scene", map[string]string{"sky": "twin moons"}, nil)
	if err != nil {
		t.Fatalf("Generate() err=%v", err)
	}
	if prompt.Text != "A  valley under twin moons" {
		t.Fatalf("text=%q, want empty substitution for adjective", prompt.Text)
	}
}

func TestGenerate_UnknownTemplateFails(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Generate(context.Background(), "missing", nil, nil)
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestGenerate_AppendsContextClauses(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID:   "base",
		Name: "base",
		Type: domain.ContentTypeImage,
		Body: "a tower",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	prompt, err := engine.Generate(ctx, "base", nil, map[string]string{
		"mood":  "serene",
		"style": "watercolor",
		"epoch": "first dawn",
	})
	if err != nil {
		t.Fatalf("Generate() err=%v", err)
	}
	want := "a tower, serene mood, in watercolor style, epoch: first dawn"
	if prompt.Text != want {
		t.Fatalf("text=%q, want %q", prompt.Text, want)
	}
}

func TestGenerate_CopiesNegativeVerbatim(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID:       "img",
		Name:     "img",
		Type:     domain.ContentTypeImage,
		Body:     "a grove",
		Negative: "blurry, low contrast",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	prompt, err := engine.Generate(ctx, "img", nil, nil)
	if err != nil {
		t.Fatalf("Generate() err=%v", err)
	}
	if prompt.Negative != "blurry, low contrast" {
		t.Fatalf("negative=%q, want verbatim copy", prompt.Negative)
	}
}

func TestRegisterTemplate_LastWriteWins(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
			ID:   "dup",
			Name: "dup",
			Type: domain.ContentTypeText,
			Body: body,
		}); err != nil {
			t.Fatalf("RegisterTemplate() err=%v", err)
		}
	}

	template, ok, err := engine.GetTemplate(ctx, "dup")
	if err != nil || !ok {
		t.Fatalf("GetTemplate() ok=%v err=%v", ok, err)
	}
	if template.Body != "second" {
		t.Fatalf("body=%q, want second", template.Body)
	}
}

func TestGetTemplate_AbsentIsNotError(t *testing.T) {
	engine := newTestEngine(t)
	_, ok, err := engine.GetTemplate(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetTemplate() err=%v", err)
	}
	if ok {
		t.Fatalf("expected absent template")
	}
}

func TestGenerateForGuardian_PrefersGuardianTemplate(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID: "generic", Name: "generic", Type: domain.ContentTypeImage, Body: "generic image",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}
	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID: "kael-img", Name: "kael image", Type: domain.ContentTypeImage, Body: "forge vision", GuardianID: "kael",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	prompt, err := engine.GenerateForGuardian(ctx, "kael", domain.ContentTypeImage, nil)
	if err != nil {
		t.Fatalf("GenerateForGuardian() err=%v", err)
	}
	if prompt.TemplateID != "kael-img" {
		t.Fatalf("template=%q, want kael-img", prompt.TemplateID)
	}
	if !strings.Contains(prompt.Text, "Gate of Forge") {
		t.Fatalf("text=%q, want injected gate clause", prompt.Text)
	}
	if !strings.Contains(prompt.Text, "fire energy") {
		t.Fatalf("text=%q, want injected element clause", prompt.Text)
	}
}

func TestGenerateForGuardian_FallsBackToType(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID: "generic", Name: "generic", Type: domain.ContentTypeMusic, Body: "a melody",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	prompt, err := engine.GenerateForGuardian(ctx, "mira", domain.ContentTypeMusic, nil)
	if err != nil {
		t.Fatalf("GenerateForGuardian() err=%v", err)
	}
	if prompt.TemplateID != "generic" {
		t.Fatalf("template=%q, want generic fallback", prompt.TemplateID)
	}
}

func TestGenerateForGuardian_NoTemplateFound(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.GenerateForGuardian(context.Background(), "mira", domain.ContentTypeVideo, nil)
	if !errors.Is(err, ErrNoTemplateFound) {
		t.Fatalf("err=%v, want ErrNoTemplateFound", err)
	}
}

func TestStats_CountsPerType(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID: "t1", Name: "t1", Type: domain.ContentTypeText, Body: "x",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}
	if err := engine.RegisterTemplate(ctx, domain.PromptTemplate{
		ID: "i1", Name: "i1", Type: domain.ContentTypeImage, Body: "y",
	}); err != nil {
		t.Fatalf("RegisterTemplate() err=%v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := engine.Generate(ctx, "t1", nil, nil); err != nil {
			t.Fatalf("Generate() err=%v", err)
		}
	}
	if _, err := engine.Generate(ctx, "i1", nil, nil); err != nil {
		t.Fatalf("Generate() err=%v", err)
	}

	stats := engine.Stats()
	if stats.Total != 4 {
		t.Fatalf("total=%d, want 4", stats.Total)
	}
	if stats.GeneratedByType[domain.ContentTypeText] != 3 {
		t.Fatalf("text count=%d, want 3", stats.GeneratedByType[domain.ContentTypeText])
	}
	if stats.GeneratedByType[domain.ContentTypeImage] != 1 {
		t.Fatalf("image count=%d, want 1", stats.GeneratedByType[domain.ContentTypeImage])
	}
}
