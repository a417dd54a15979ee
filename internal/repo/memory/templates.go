package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

// TemplateRepository is a mutex-guarded in-memory template store.
type TemplateRepository struct {
	mu        sync.RWMutex
	templates map[string]domain.PromptTemplate
	order     []string
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{templates: make(map[string]domain.PromptTemplate)}
}

func (r *TemplateRepository) Put(ctx context.Context, template domain.PromptTemplate) error {
	if err := template.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[template.ID]; !exists {
		r.order = append(r.order, template.ID)
	}
	r.templates[template.ID] = template
	return nil
}

func (r *TemplateRepository) Get(ctx context.Context, id string) (domain.PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[strings.TrimSpace(id)]
	if !ok {
		return domain.PromptTemplate{}, fmt.Errorf("template %q: %w", id, repo.ErrNotFound)
	}
	return template, nil
}

func (r *TemplateRepository) List(ctx context.Context, filter repo.TemplateFilter) ([]domain.PromptTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PromptTemplate, 0, len(r.order))
	for _, id := range r.order {
		template := r.templates[id]
		if filter.Type != "" && template.Type != filter.Type {
			continue
		}
		if filter.GuardianID != "" && template.GuardianID != filter.GuardianID {
			continue
		}
		out = append(out, template)
	}
	return out, nil
}
