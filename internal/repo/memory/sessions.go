package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

// SessionRepository is a mutex-guarded in-memory session store. The check
// for an existing active session and the mutation that activates one happen
// under the same lock, so the single-active invariant holds under
// concurrent callers.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.CreativeSession
	order    []string
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.CreativeSession)}
}

func (r *SessionRepository) Create(ctx context.Context, session domain.CreativeSession) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if !session.Status.Valid() {
		return fmt.Errorf("session status %q is invalid", session.Status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("session %q already exists", session.ID)
	}
	if session.Status == domain.SessionStatusActive && r.activeLocked() != "" {
		return repo.ErrActiveSessionExists
	}
	r.sessions[session.ID] = session.Clone()
	r.order = append(r.order, session.ID)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.CreativeSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[strings.TrimSpace(id)]
	if !ok {
		return domain.CreativeSession{}, fmt.Errorf("session %q: %w", id, repo.ErrNotFound)
	}
	return session.Clone(), nil
}

func (r *SessionRepository) List(ctx context.Context, filter repo.SessionFilter) ([]domain.CreativeSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CreativeSession, 0, len(r.order))
	for _, id := range r.order {
		session := r.sessions[id]
		if filter.Status != "" && session.Status != filter.Status {
			continue
		}
		out = append(out, session.Clone())
	}
	return out, nil
}

func (r *SessionRepository) Active(ctx context.Context) (domain.CreativeSession, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := r.activeLocked()
	if id == "" {
		return domain.CreativeSession{}, false, nil
	}
	return r.sessions[id].Clone(), true, nil
}

// SetStatus applies a lifecycle transition atomically: transition validity
// and the single-active check are evaluated under the write lock before any
// state changes.
func (r *SessionRepository) SetStatus(ctx context.Context, id string, to domain.SessionStatus, at time.Time) (domain.CreativeSession, error) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.CreativeSession{}, fmt.Errorf("session %q: %w", id, repo.ErrNotFound)
	}
	if err := domain.ValidateSessionTransition(session.Status, to); err != nil {
		return domain.CreativeSession{}, err
	}
	if to == domain.SessionStatusActive {
		if active := r.activeLocked(); active != "" && active != id {
			return domain.CreativeSession{}, repo.ErrActiveSessionExists
		}
	}
	session.Status = to
	if to == domain.SessionStatusComplete {
		completedAt := at.UTC()
		session.CompletedAt = &completedAt
	}
	r.sessions[id] = session
	return session.Clone(), nil
}

func (r *SessionRepository) AppendAsset(ctx context.Context, id string, assetID string) (domain.CreativeSession, error) {
	return r.append(id, assetID, true)
}

func (r *SessionRepository) AppendPrompt(ctx context.Context, id string, promptID string) (domain.CreativeSession, error) {
	return r.append(id, promptID, false)
}

func (r *SessionRepository) append(id string, ref string, asset bool) (domain.CreativeSession, error) {
	id = strings.TrimSpace(id)
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.CreativeSession{}, fmt.Errorf("reference id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return domain.CreativeSession{}, fmt.Errorf("session %q: %w", id, repo.ErrNotFound)
	}
	if !domain.SessionMutable(session.Status) {
		return domain.CreativeSession{}, fmt.Errorf("%w: session %q is complete", domain.ErrInvalidTransition, id)
	}
	if asset {
		session.AssetIDs = append(session.AssetIDs, ref)
	} else {
		session.PromptIDs = append(session.PromptIDs, ref)
	}
	r.sessions[id] = session
	return session.Clone(), nil
}

func (r *SessionRepository) activeLocked() string {
	for id, session := range r.sessions {
		if session.Status == domain.SessionStatusActive {
			return id
		}
	}
	return ""
}
