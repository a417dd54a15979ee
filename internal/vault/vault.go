// Package vault stores generated creative artifacts and tracks their
// variation lineage.
package vault

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/platform/event"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

type Vault struct {
	assets repo.AssetRepository
	bus    *event.Bus
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func New(assets repo.AssetRepository, bus *event.Bus, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{
		assets: assets,
		bus:    bus,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// AssetPatch carries optional field updates. Nil fields are left untouched;
// Metadata entries merge over the existing map.
type AssetPatch struct {
	Name        *string
	Description *string
	Content     *string
	Type        *domain.ContentType
	Tags        []string
	GuardianID  *string
	Gate        *string
	Element     *domain.Element
	Metadata    domain.Metadata
	Provenance  *domain.Provenance
}

func (p AssetPatch) apply(asset *domain.Asset) {
	if p.Name != nil {
		asset.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		asset.Description = *p.Description
	}
	if p.Content != nil {
		asset.Content = *p.Content
	}
	if p.Type != nil {
		asset.Type = *p.Type
	}
	if p.Tags != nil {
		asset.Tags = append([]string(nil), p.Tags...)
	}
	if p.GuardianID != nil {
		asset.GuardianID = strings.TrimSpace(*p.GuardianID)
	}
	if p.Gate != nil {
		asset.Gate = strings.TrimSpace(*p.Gate)
	}
	if p.Element != nil {
		asset.Element = *p.Element
	}
	if len(p.Metadata) > 0 {
		if asset.Metadata == nil {
			asset.Metadata = domain.Metadata{}
		}
		for k, v := range p.Metadata {
			asset.Metadata[k] = v
		}
	}
	if p.Provenance != nil {
		prov := *p.Provenance
		asset.Provenance = &prov
	}
}

// Store assigns a fresh id, stamps timestamps, persists the draft, and
// emits an AssetStored event. The draft's id field is ignored.
func (v *Vault) Store(ctx context.Context, draft domain.Asset) (domain.Asset, error) {
	asset := draft.Clone()
	asset.ID = v.newID()
	now := v.now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	if err := v.assets.Create(ctx, asset); err != nil {
		return domain.Asset{}, err
	}
	v.logger.Debug("asset stored", "asset_id", asset.ID, "type", string(asset.Type))
	v.bus.Publish(event.AssetStored{At: now, Asset: asset})
	return asset, nil
}

// Get returns the asset and whether it exists; absent ids are not errors.
func (v *Vault) Get(ctx context.Context, id string) (domain.Asset, bool, error) {
	asset, err := v.assets.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Asset{}, false, nil
	}
	if err != nil {
		return domain.Asset{}, false, err
	}
	return asset, true, nil
}

// Update merges patch fields onto the stored asset. Id, createdAt and
// parentId are preserved; updatedAt never moves backwards.
func (v *Vault) Update(ctx context.Context, id string, patch AssetPatch) (domain.Asset, error) {
	asset, err := v.assets.Get(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}

	patch.apply(&asset)
	now := v.now().UTC()
	if now.After(asset.UpdatedAt) {
		asset.UpdatedAt = now
	}

	if err := v.assets.Update(ctx, asset); err != nil {
		return domain.Asset{}, err
	}
	v.bus.Publish(event.AssetUpdated{At: now, Asset: asset})
	return asset, nil
}

// Delete removes the asset; deleting an absent id fails with ErrNotFound,
// including on a repeated call.
func (v *Vault) Delete(ctx context.Context, id string) error {
	if err := v.assets.Delete(ctx, id); err != nil {
		return err
	}
	v.bus.Publish(event.AssetDeleted{At: v.now().UTC(), AssetID: strings.TrimSpace(id)})
	return nil
}

// Query lists assets matching the conjunctive filter.
func (v *Vault) Query(ctx context.Context, filter repo.AssetFilter) ([]domain.Asset, error) {
	return v.assets.List(ctx, filter)
}

// CreateVariation copies the parent, applies overrides, and links the copy
// to the parent. Without an explicit name override the child is named
// "{parent name} (variation)".
func (v *Vault) CreateVariation(ctx context.Context, parentID string, overrides AssetPatch) (domain.Asset, error) {
	parent, err := v.assets.Get(ctx, parentID)
	if err != nil {
		return domain.Asset{}, err
	}

	child := parent.Clone()
	child.ID = v.newID()
	child.ParentID = parent.ID
	now := v.now().UTC()
	child.CreatedAt = now
	child.UpdatedAt = now
	if overrides.Name == nil {
		child.Name = parent.Name + " (variation)"
	}
	overrides.apply(&child)

	if err := v.assets.Create(ctx, child); err != nil {
		return domain.Asset{}, err
	}
	v.logger.Debug("variation created", "parent_id", parent.ID, "asset_id", child.ID)
	v.bus.Publish(event.VariationCreated{At: now, ParentID: parent.ID, Child: child})
	return child, nil
}

// GetVariations lists direct children of the given asset, in insertion
// order; an empty list when none exist.
func (v *Vault) GetVariations(ctx context.Context, parentID string) ([]domain.Asset, error) {
	return v.assets.ListByParent(ctx, parentID)
}

// ExportBundle is an asset plus derived metadata for handoff.
type ExportBundle struct {
	Asset          domain.Asset
	ExportedAt     time.Time
	HasParent      bool
	VariationCount int
}

// Export fails with ErrNotFound for absent ids.
func (v *Vault) Export(ctx context.Context, id string) (ExportBundle, error) {
	asset, err := v.assets.Get(ctx, id)
	if err != nil {
		return ExportBundle{}, err
	}
	variations, err := v.assets.ListByParent(ctx, asset.ID)
	if err != nil {
		return ExportBundle{}, err
	}
	return ExportBundle{
		Asset:          asset,
		ExportedAt:     v.now().UTC(),
		HasParent:      asset.ParentID != "",
		VariationCount: len(variations),
	}, nil
}

// Stats summarizes the vault contents.
type Stats struct {
	Total      int
	ByType     map[domain.ContentType]int
	ByGuardian map[string]int
	ByElement  map[domain.Element]int
}

func (v *Vault) Stats(ctx context.Context) (Stats, error) {
	assets, err := v.assets.List(ctx, repo.AssetFilter{})
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Total:      len(assets),
		ByType:     make(map[domain.ContentType]int),
		ByGuardian: make(map[string]int),
		ByElement:  make(map[domain.Element]int),
	}
	for _, asset := range assets {
		stats.ByType[asset.Type]++
		if asset.GuardianID != "" {
			stats.ByGuardian[asset.GuardianID]++
		}
		if asset.Element != "" {
			stats.ByElement[asset.Element]++
		}
	}
	return stats, nil
}

// GetByGuardian, GetByElement, GetByTag and Search are thin Query
// compositions.

func (v *Vault) GetByGuardian(ctx context.Context, guardianID string) ([]domain.Asset, error) {
	return v.Query(ctx, repo.AssetFilter{GuardianID: strings.TrimSpace(guardianID)})
}

func (v *Vault) GetByElement(ctx context.Context, element domain.Element) ([]domain.Asset, error) {
	return v.Query(ctx, repo.AssetFilter{Element: element})
}

func (v *Vault) GetByTag(ctx context.Context, tag string) ([]domain.Asset, error) {
	return v.Query(ctx, repo.AssetFilter{Tags: []string{tag}})
}

func (v *Vault) Search(ctx context.Context, term string) ([]domain.Asset, error) {
	return v.Query(ctx, repo.AssetFilter{Search: term})
}
