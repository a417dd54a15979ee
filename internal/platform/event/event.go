// Package event carries the closed set of domain events the core emits to
// observers. Consumers switch on the concrete variant types; the Kind tag
// exists for logging and persistence sinks.
package event

import (
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

type Kind string

const (
	KindAssetStored        Kind = "asset.stored"
	KindAssetUpdated       Kind = "asset.updated"
	KindAssetDeleted       Kind = "asset.deleted"
	KindVariationCreated   Kind = "asset.variation_created"
	KindSessionStarted     Kind = "session.started"
	KindSessionPaused      Kind = "session.paused"
	KindSessionResumed     Kind = "session.resumed"
	KindSessionCompleted   Kind = "session.completed"
	KindSessionAssetAdded  Kind = "session.asset_added"
	KindSessionPromptAdded Kind = "session.prompt_added"
)

// Event is implemented only by the variant structs in this package.
type Event interface {
	Kind() Kind
	OccurredAt() time.Time
	SubjectID() string
}

type AssetStored struct {
	At    time.Time
	Asset domain.Asset
}

func (e AssetStored) Kind() Kind            { return KindAssetStored }
func (e AssetStored) OccurredAt() time.Time { return e.At }
func (e AssetStored) SubjectID() string     { return e.Asset.ID }

type AssetUpdated struct {
	At    time.Time
	Asset domain.Asset
}

func (e AssetUpdated) Kind() Kind            { return KindAssetUpdated }
func (e AssetUpdated) OccurredAt() time.Time { return e.At }
func (e AssetUpdated) SubjectID() string     { return e.Asset.ID }

type AssetDeleted struct {
	At      time.Time
	AssetID string
}

func (e AssetDeleted) Kind() Kind            { return KindAssetDeleted }
func (e AssetDeleted) OccurredAt() time.Time { return e.At }
func (e AssetDeleted) SubjectID() string     { return e.AssetID }

type VariationCreated struct {
	At       time.Time
	ParentID string
	Child    domain.Asset
}

func (e VariationCreated) Kind() Kind            { return KindVariationCreated }
func (e VariationCreated) OccurredAt() time.Time { return e.At }
func (e VariationCreated) SubjectID() string     { return e.Child.ID }

type SessionStarted struct {
	At      time.Time
	Session domain.CreativeSession
}

func (e SessionStarted) Kind() Kind            { return KindSessionStarted }
func (e SessionStarted) OccurredAt() time.Time { return e.At }
func (e SessionStarted) SubjectID() string     { return e.Session.ID }

type SessionPaused struct {
	At        time.Time
	SessionID string
}

func (e SessionPaused) Kind() Kind            { return KindSessionPaused }
func (e SessionPaused) OccurredAt() time.Time { return e.At }
func (e SessionPaused) SubjectID() string     { return e.SessionID }

type SessionResumed struct {
	At        time.Time
	SessionID string
}

func (e SessionResumed) Kind() Kind            { return KindSessionResumed }
func (e SessionResumed) OccurredAt() time.Time { return e.At }
func (e SessionResumed) SubjectID() string     { return e.SessionID }

type SessionCompleted struct {
	At      time.Time
	Session domain.CreativeSession
	Summary domain.SessionSummary
}

func (e SessionCompleted) Kind() Kind            { return KindSessionCompleted }
func (e SessionCompleted) OccurredAt() time.Time { return e.At }
func (e SessionCompleted) SubjectID() string     { return e.Session.ID }

type SessionAssetAdded struct {
	At        time.Time
	SessionID string
	AssetID   string
}

func (e SessionAssetAdded) Kind() Kind            { return KindSessionAssetAdded }
func (e SessionAssetAdded) OccurredAt() time.Time { return e.At }
func (e SessionAssetAdded) SubjectID() string     { return e.SessionID }

type SessionPromptAdded struct {
	At        time.Time
	SessionID string
	PromptID  string
}

func (e SessionPromptAdded) Kind() Kind            { return KindSessionPromptAdded }
func (e SessionPromptAdded) OccurredAt() time.Time { return e.At }
func (e SessionPromptAdded) SubjectID() string     { return e.SessionID }
