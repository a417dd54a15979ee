package domain

import (
	"errors"
	"strings"
	"time"
)

// Provenance records which prompt and external model produced an asset.
type Provenance struct {
	TemplateID string
	PromptText string
	Model      string
}

// Asset is a stored creative artifact. ParentID, when set, is a weak
// lineage pointer to the asset this one was derived from; lineage is
// append-only and never cyclic.
type Asset struct {
	ID          string
	Type        ContentType
	Name        string
	Description string
	Content     string
	Tags        []string
	GuardianID  string
	Gate        string
	Element     Element
	ParentID    string
	Metadata    Metadata
	Provenance  *Provenance
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("asset id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("asset name is required")
	}
	if strings.TrimSpace(string(a.Type)) == "" {
		return errors.New("asset type is required")
	}
	return nil
}

// Clone deep-copies the asset so stored state cannot be mutated through
// slices or maps held by callers.
func (a Asset) Clone() Asset {
	out := a
	if a.Tags != nil {
		out.Tags = append([]string(nil), a.Tags...)
	}
	out.Metadata = a.Metadata.Clone()
	if a.Provenance != nil {
		prov := *a.Provenance
		out.Provenance = &prov
	}
	return out
}

// HasTag reports whether the asset carries the tag, case-insensitively.
func (a Asset) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}
	for _, candidate := range a.Tags {
		if strings.ToLower(strings.TrimSpace(candidate)) == tag {
			return true
		}
	}
	return false
}
