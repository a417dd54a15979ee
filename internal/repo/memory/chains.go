package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

// ChainRepository is a mutex-guarded in-memory remix chain store.
type ChainRepository struct {
	mu     sync.RWMutex
	chains map[string]domain.RemixChain
	order  []string
}

func NewChainRepository() *ChainRepository {
	return &ChainRepository{chains: make(map[string]domain.RemixChain)}
}

func (r *ChainRepository) Create(ctx context.Context, chain domain.RemixChain) error {
	if err := chain.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.chains[chain.ID]; exists {
		return fmt.Errorf("chain %q already exists", chain.ID)
	}
	r.chains[chain.ID] = chain.Clone()
	r.order = append(r.order, chain.ID)
	return nil
}

func (r *ChainRepository) Get(ctx context.Context, id string) (domain.RemixChain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain, ok := r.chains[strings.TrimSpace(id)]
	if !ok {
		return domain.RemixChain{}, fmt.Errorf("chain %q: %w", id, repo.ErrNotFound)
	}
	return chain.Clone(), nil
}

func (r *ChainRepository) List(ctx context.Context) ([]domain.RemixChain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RemixChain, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.chains[id].Clone())
	}
	return out, nil
}

// Mutate applies fn to a private clone under the write lock and commits it
// only when fn succeeds, so a failed mutation leaves the chain untouched.
func (r *ChainRepository) Mutate(ctx context.Context, id string, fn func(*domain.RemixChain) error) (domain.RemixChain, error) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	chain, ok := r.chains[id]
	if !ok {
		return domain.RemixChain{}, fmt.Errorf("chain %q: %w", id, repo.ErrNotFound)
	}
	working := chain.Clone()
	if err := fn(&working); err != nil {
		return domain.RemixChain{}, err
	}
	r.chains[id] = working.Clone()
	return working, nil
}
