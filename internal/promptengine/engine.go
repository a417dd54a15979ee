// Package promptengine registers reusable prompt templates and renders
// generation-ready prompt text from them.
package promptengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/guardians"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

// ErrNoTemplateFound marks a guardian generation request for which neither
// a guardian-tagged template nor any template of the requested type exists.
var ErrNoTemplateFound = errors.New("no template found")

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// contextClauseKeys are rendered first, in this order, with dedicated
// phrasing. Remaining context keys follow alphabetically.
var contextClauseKeys = []string{"mood", "style", "setting", "gate", "element", "guardian"}

type Engine struct {
	templates repo.TemplateRepository
	roster    guardians.Roster
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	generated map[domain.ContentType]int64
}

// Stats reports how many prompts have been generated per content type.
type Stats struct {
	Total           int64
	GeneratedByType map[domain.ContentType]int64
}

func New(templates repo.TemplateRepository, roster guardians.Roster, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if roster == nil {
		roster = guardians.Builtin()
	}
	return &Engine{
		templates: templates,
		roster:    roster,
		logger:    logger,
		now:       time.Now,
		generated: make(map[domain.ContentType]int64),
	}
}

// RegisterTemplate inserts or overwrites a template by id. Placeholder and
// declared-variable mismatches are not validated here; they surface at
// generation time as empty substitutions.
func (e *Engine) RegisterTemplate(ctx context.Context, template domain.PromptTemplate) error {
	template.ID = strings.TrimSpace(template.ID)
	return e.templates.Put(ctx, template)
}

// GetTemplate returns the template and whether it exists. An unknown id is
// an absent value, not an error.
func (e *Engine) GetTemplate(ctx context.Context, id string) (domain.PromptTemplate, bool, error) {
	template, err := e.templates.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.PromptTemplate{}, false, nil
	}
	if err != nil {
		return domain.PromptTemplate{}, false, err
	}
	return template, true, nil
}

func (e *Engine) TemplatesByType(ctx context.Context, contentType domain.ContentType) ([]domain.PromptTemplate, error) {
	return e.templates.List(ctx, repo.TemplateFilter{Type: contentType})
}

func (e *Engine) TemplatesByGuardian(ctx context.Context, guardianID string) ([]domain.PromptTemplate, error) {
	return e.templates.List(ctx, repo.TemplateFilter{GuardianID: strings.TrimSpace(guardianID)})
}

// Generate renders a template. Every {{name}} placeholder is substituted
// with the matching variable; names absent from variables become the empty
// string. Context keys are appended as descriptive clauses.
func (e *Engine) Generate(ctx context.Context, templateID string, variables map[string]string, promptContext map[string]string) (domain.GeneratedPrompt, error) {
	template, err := e.templates.Get(ctx, templateID)
	if err != nil {
		return domain.GeneratedPrompt{}, fmt.Errorf("generate: %w", err)
	}

	text := placeholderPattern.ReplaceAllStringFunc(template.Body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return variables[name]
	})
	text += renderContextClauses(promptContext)

	e.mu.Lock()
	e.generated[template.Type]++
	e.mu.Unlock()

	e.logger.Debug("prompt generated", "template_id", template.ID, "type", string(template.Type))

	return domain.GeneratedPrompt{
		TemplateID: template.ID,
		Text:       text,
		Negative:   template.Negative,
		Variables:  cloneStringMap(variables),
		Context:    cloneStringMap(promptContext),
		CreatedAt:  e.now().UTC(),
	}, nil
}

// GenerateForGuardian selects a guardian-tagged template of the requested
// type, falling back to any template of that type, and injects the
// guardian's gate and element into the context before rendering.
func (e *Engine) GenerateForGuardian(ctx context.Context, guardianID string, contentType domain.ContentType, promptContext map[string]string) (domain.GeneratedPrompt, error) {
	guardianID = strings.TrimSpace(guardianID)

	candidates, err := e.templates.List(ctx, repo.TemplateFilter{Type: contentType, GuardianID: guardianID})
	if err != nil {
		return domain.GeneratedPrompt{}, err
	}
	if len(candidates) == 0 {
		candidates, err = e.templates.List(ctx, repo.TemplateFilter{Type: contentType})
		if err != nil {
			return domain.GeneratedPrompt{}, err
		}
	}
	if len(candidates) == 0 {
		return domain.GeneratedPrompt{}, fmt.Errorf("%w: guardian %q type %q", ErrNoTemplateFound, guardianID, contentType)
	}

	enriched := cloneStringMap(promptContext)
	if enriched == nil {
		enriched = make(map[string]string, 2)
	}
	if guardian, ok := e.roster.Lookup(guardianID); ok {
		if _, set := enriched["gate"]; !set {
			enriched["gate"] = guardian.Gate
		}
		if _, set := enriched["element"]; !set {
			enriched["element"] = string(guardian.Element)
		}
	}

	return e.Generate(ctx, candidates[0].ID, nil, enriched)
}

// Stats returns running per-type generation counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := Stats{GeneratedByType: make(map[domain.ContentType]int64, len(e.generated))}
	for contentType, count := range e.generated {
		out.GeneratedByType[contentType] = count
		out.Total += count
	}
	return out
}

func renderContextClauses(promptContext map[string]string) string {
	if len(promptContext) == 0 {
		return ""
	}

	var b strings.Builder
	used := make(map[string]struct{}, len(promptContext))
	for _, key := range contextClauseKeys {
		value := strings.TrimSpace(promptContext[key])
		if value == "" {
			continue
		}
		used[key] = struct{}{}
		switch key {
		case "mood":
			b.WriteString(", " + value + " mood")
		case "style":
			b.WriteString(", in " + value + " style")
		case "setting":
			b.WriteString(", set in " + value)
		case "gate":
			b.WriteString(", beyond the Gate of " + value)
		case "element":
			b.WriteString(", infused with " + value + " energy")
		case "guardian":
			b.WriteString(", guided by " + value)
		}
	}

	rest := make([]string, 0, len(promptContext))
	for key, value := range promptContext {
		if _, ok := used[key]; ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		rest = append(rest, ", "+key+": "+value)
	}
	sort.Strings(rest)
	for _, clause := range rest {
		b.WriteString(clause)
	}
	return b.String()
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
