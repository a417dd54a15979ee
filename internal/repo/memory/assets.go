package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

// AssetRepository is a mutex-guarded in-memory asset store. Insertion order
// is retained so list results are deterministic for equal timestamps.
type AssetRepository struct {
	mu     sync.RWMutex
	assets map[string]domain.Asset
	order  []string
}

func NewAssetRepository() *AssetRepository {
	return &AssetRepository{assets: make(map[string]domain.Asset)}
}

func (r *AssetRepository) Create(ctx context.Context, asset domain.Asset) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.assets[asset.ID]; exists {
		return fmt.Errorf("asset %q already exists", asset.ID)
	}
	if asset.ParentID != "" {
		if _, ok := r.assets[asset.ParentID]; !ok {
			return fmt.Errorf("parent asset %q: %w", asset.ParentID, repo.ErrNotFound)
		}
	}
	r.assets[asset.ID] = asset.Clone()
	r.order = append(r.order, asset.ID)
	return nil
}

func (r *AssetRepository) Get(ctx context.Context, id string) (domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.assets[strings.TrimSpace(id)]
	if !ok {
		return domain.Asset{}, fmt.Errorf("asset %q: %w", id, repo.ErrNotFound)
	}
	return asset.Clone(), nil
}

func (r *AssetRepository) Update(ctx context.Context, asset domain.Asset) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	before, ok := r.assets[asset.ID]
	if !ok {
		return fmt.Errorf("asset %q: %w", asset.ID, repo.ErrNotFound)
	}
	if err := domain.EnsureAssetIdentityImmutable(before, asset); err != nil {
		return err
	}
	r.assets[asset.ID] = asset.Clone()
	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[id]; !ok {
		return fmt.Errorf("asset %q: %w", id, repo.ErrNotFound)
	}
	delete(r.assets, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *AssetRepository) List(ctx context.Context, filter repo.AssetFilter) ([]domain.Asset, error) {
	r.mu.RLock()
	matched := make([]domain.Asset, 0, len(r.order))
	for _, id := range r.order {
		asset := r.assets[id]
		if matchesFilter(asset, filter) {
			matched = append(matched, asset.Clone())
		}
	}
	r.mu.RUnlock()

	switch filter.OrderBy {
	case repo.OrderByName:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	default:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []domain.Asset{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *AssetRepository) ListByParent(ctx context.Context, parentID string) ([]domain.Asset, error) {
	parentID = strings.TrimSpace(parentID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Asset, 0)
	for _, id := range r.order {
		asset := r.assets[id]
		if asset.ParentID == parentID && parentID != "" {
			out = append(out, asset.Clone())
		}
	}
	return out, nil
}

func matchesFilter(asset domain.Asset, filter repo.AssetFilter) bool {
	if filter.Type != "" && asset.Type != filter.Type {
		return false
	}
	if filter.GuardianID != "" && asset.GuardianID != filter.GuardianID {
		return false
	}
	if filter.Element != "" && asset.Element != filter.Element {
		return false
	}
	for _, tag := range filter.Tags {
		if !asset.HasTag(tag) {
			return false
		}
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		haystack := strings.ToLower(asset.Name + " " + asset.Description + " " + strings.Join(asset.Tags, " "))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}
