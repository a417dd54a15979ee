package repo

import (
	"context"
	"errors"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

// ErrNotFound marks a lookup for an id that does not exist.
var ErrNotFound = errors.New("not found")

// ErrActiveSessionExists marks an attempt to activate a session while
// another session is already active.
var ErrActiveSessionExists = errors.New("another session is active")

type OrderBy string

const (
	// OrderByCreatedDesc is the default ordering, newest first.
	OrderByCreatedDesc OrderBy = "created_desc"
	OrderByName        OrderBy = "name"
)

type TemplateFilter struct {
	Type       domain.ContentType
	GuardianID string
}

// AssetFilter fields are optional and conjunctive. Tags require full-set
// containment; Search is a case-insensitive substring match over name,
// description, and tags.
type AssetFilter struct {
	Type       domain.ContentType
	GuardianID string
	Element    domain.Element
	Tags       []string
	Search     string
	OrderBy    OrderBy
	Offset     int
	Limit      int
}

type SessionFilter struct {
	Status domain.SessionStatus
}

// TemplateRepository manages prompt templates. Put overwrites by id.
type TemplateRepository interface {
	Put(ctx context.Context, template domain.PromptTemplate) error
	Get(ctx context.Context, id string) (domain.PromptTemplate, error)
	List(ctx context.Context, filter TemplateFilter) ([]domain.PromptTemplate, error)
}

// AssetRepository manages stored assets and their lineage pointers.
type AssetRepository interface {
	Create(ctx context.Context, asset domain.Asset) error
	Get(ctx context.Context, id string) (domain.Asset, error)
	Update(ctx context.Context, asset domain.Asset) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
	ListByParent(ctx context.Context, parentID string) ([]domain.Asset, error)
}

// SessionRepository manages creative sessions. Implementations must keep
// the single-active invariant atomic: Create and SetStatus combine the
// "any session active?" check with the mutation in one step.
type SessionRepository interface {
	Create(ctx context.Context, session domain.CreativeSession) error
	Get(ctx context.Context, id string) (domain.CreativeSession, error)
	List(ctx context.Context, filter SessionFilter) ([]domain.CreativeSession, error)
	Active(ctx context.Context) (domain.CreativeSession, bool, error)
	SetStatus(ctx context.Context, id string, to domain.SessionStatus, at time.Time) (domain.CreativeSession, error)
	AppendAsset(ctx context.Context, id string, assetID string) (domain.CreativeSession, error)
	AppendPrompt(ctx context.Context, id string, promptID string) (domain.CreativeSession, error)
}

// ChainRepository manages remix chains. Mutate applies fn to the stored
// chain under the repository's write lock so concurrent remix additions
// cannot lose updates.
type ChainRepository interface {
	Create(ctx context.Context, chain domain.RemixChain) error
	Get(ctx context.Context, id string) (domain.RemixChain, error)
	List(ctx context.Context) ([]domain.RemixChain, error)
	Mutate(ctx context.Context, id string, fn func(*domain.RemixChain) error) (domain.RemixChain, error)
}
