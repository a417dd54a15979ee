// Package session bounds creative work into sessions with a strict
// lifecycle: active, paused, complete. Complete is terminal and at most one
// session is active system-wide.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/platform/event"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

// Manager drives session lifecycle over a SessionRepository. The repository
// keeps the single-active invariant atomic; the manager adds validation,
// summaries, and event publication.
type Manager struct {
	sessions repo.SessionRepository
	bus      *event.Bus
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// StartOptions classify a new session. All fields are optional.
type StartOptions struct {
	GuardianID string
	Gate       string
	Element    domain.Element
}

// Stats is a roll-up across every session the manager has seen.
type Stats struct {
	Total         int
	ByStatus      map[domain.SessionStatus]int
	AssetsTouched int
	PromptsUsed   int
}

func New(sessions repo.SessionRepository, bus *event.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: sessions,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// StartSession opens a new active session. Fails with
// repo.ErrActiveSessionExists while another session is active.
func (m *Manager) StartSession(ctx context.Context, opts StartOptions) (domain.CreativeSession, error) {
	if opts.Element != "" && !opts.Element.Valid() {
		return domain.CreativeSession{}, fmt.Errorf("session element %q is not recognized", opts.Element)
	}

	now := m.now().UTC()
	session := domain.CreativeSession{
		ID:         m.newID(),
		GuardianID: strings.TrimSpace(opts.GuardianID),
		Gate:       strings.TrimSpace(opts.Gate),
		Element:    opts.Element,
		Status:     domain.SessionStatusActive,
		StartedAt:  now,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return domain.CreativeSession{}, err
	}

	m.bus.Publish(event.SessionStarted{At: now, Session: session})
	m.logger.Info("session started", "session_id", session.ID, "guardian_id", session.GuardianID)
	return session, nil
}

// AddAssetToSession records an asset id against a session. The session must
// be active or paused.
func (m *Manager) AddAssetToSession(ctx context.Context, sessionID, assetID string) (domain.CreativeSession, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return domain.CreativeSession{}, fmt.Errorf("asset id is required")
	}
	session, err := m.sessions.AppendAsset(ctx, sessionID, assetID)
	if err != nil {
		return domain.CreativeSession{}, err
	}
	m.bus.Publish(event.SessionAssetAdded{At: m.now().UTC(), SessionID: session.ID, AssetID: assetID})
	return session, nil
}

// AddPromptToSession records a prompt or template id against a session.
func (m *Manager) AddPromptToSession(ctx context.Context, sessionID, promptID string) (domain.CreativeSession, error) {
	promptID = strings.TrimSpace(promptID)
	if promptID == "" {
		return domain.CreativeSession{}, fmt.Errorf("prompt id is required")
	}
	session, err := m.sessions.AppendPrompt(ctx, sessionID, promptID)
	if err != nil {
		return domain.CreativeSession{}, err
	}
	m.bus.Publish(event.SessionPromptAdded{At: m.now().UTC(), SessionID: session.ID, PromptID: promptID})
	return session, nil
}

// PauseSession moves an active session to paused.
func (m *Manager) PauseSession(ctx context.Context, sessionID string) (domain.CreativeSession, error) {
	now := m.now().UTC()
	session, err := m.sessions.SetStatus(ctx, sessionID, domain.SessionStatusPaused, now)
	if err != nil {
		return domain.CreativeSession{}, err
	}
	m.bus.Publish(event.SessionPaused{At: now, SessionID: session.ID})
	m.logger.Info("session paused", "session_id", session.ID)
	return session, nil
}

// ResumeSession moves a paused session back to active. Fails with
// repo.ErrActiveSessionExists if another session is active.
func (m *Manager) ResumeSession(ctx context.Context, sessionID string) (domain.CreativeSession, error) {
	now := m.now().UTC()
	session, err := m.sessions.SetStatus(ctx, sessionID, domain.SessionStatusActive, now)
	if err != nil {
		return domain.CreativeSession{}, err
	}
	m.bus.Publish(event.SessionResumed{At: now, SessionID: session.ID})
	m.logger.Info("session resumed", "session_id", session.ID)
	return session, nil
}

// CompleteSession moves a session to its terminal state and returns the
// final session together with its summary.
func (m *Manager) CompleteSession(ctx context.Context, sessionID string) (domain.CreativeSession, domain.SessionSummary, error) {
	now := m.now().UTC()
	session, err := m.sessions.SetStatus(ctx, sessionID, domain.SessionStatusComplete, now)
	if err != nil {
		return domain.CreativeSession{}, domain.SessionSummary{}, err
	}

	summary := summarize(session, now)
	m.bus.Publish(event.SessionCompleted{At: now, Session: session, Summary: summary})
	m.logger.Info("session completed",
		"session_id", session.ID,
		"assets_created", summary.AssetsCreated,
		"prompts_used", summary.PromptsUsed,
		"duration", summary.DurationHuman)
	return session, summary, nil
}

// GetSession looks a session up by id. An absent id is not an error.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (domain.CreativeSession, bool, error) {
	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.CreativeSession{}, false, nil
		}
		return domain.CreativeSession{}, false, err
	}
	return session, true, nil
}

// GetActiveSession returns the currently active session, if any.
func (m *Manager) GetActiveSession(ctx context.Context) (domain.CreativeSession, bool, error) {
	return m.sessions.Active(ctx)
}

// ListSessions returns sessions matching the filter in creation order.
func (m *Manager) ListSessions(ctx context.Context, filter repo.SessionFilter) ([]domain.CreativeSession, error) {
	return m.sessions.List(ctx, filter)
}

// SessionStats aggregates counts across all sessions.
func (m *Manager) SessionStats(ctx context.Context) (Stats, error) {
	sessions, err := m.sessions.List(ctx, repo.SessionFilter{})
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Total:    len(sessions),
		ByStatus: make(map[domain.SessionStatus]int),
	}
	for _, s := range sessions {
		stats.ByStatus[s.Status]++
		stats.AssetsTouched += len(s.AssetIDs)
		stats.PromptsUsed += len(s.PromptIDs)
	}
	return stats, nil
}

func summarize(s domain.CreativeSession, fallbackEnd time.Time) domain.SessionSummary {
	end := fallbackEnd
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}
	d := end.Sub(s.StartedAt)
	return domain.SessionSummary{
		SessionID:     s.ID,
		AssetsCreated: len(s.AssetIDs),
		PromptsUsed:   len(s.PromptIDs),
		Duration:      d,
		DurationHuman: domain.FormatDuration(d),
	}
}
