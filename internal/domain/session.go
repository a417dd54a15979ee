package domain

import (
	"fmt"
	"time"
)

// SessionStatus is the lifecycle state of a creative session.
type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusPaused   SessionStatus = "paused"
	SessionStatusComplete SessionStatus = "complete"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusActive, SessionStatusPaused, SessionStatusComplete:
		return true
	}
	return false
}

// CreativeSession bounds creative work. At most one session system-wide may
// be active at any instant; complete is terminal.
type CreativeSession struct {
	ID          string
	GuardianID  string
	Gate        string
	Element     Element
	Status      SessionStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	AssetIDs    []string
	PromptIDs   []string
}

func (s CreativeSession) Clone() CreativeSession {
	out := s
	if s.AssetIDs != nil {
		out.AssetIDs = append([]string(nil), s.AssetIDs...)
	}
	if s.PromptIDs != nil {
		out.PromptIDs = append([]string(nil), s.PromptIDs...)
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// SessionSummary is the roll-up returned when a session completes.
type SessionSummary struct {
	SessionID     string
	AssetsCreated int
	PromptsUsed   int
	Duration      time.Duration
	DurationHuman string
}

// FormatDuration renders a duration as a compact human string, e.g. "1h 3m 5s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
