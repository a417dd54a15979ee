package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition marks an illegal session state transition. Callers
// match it with errors.Is.
var ErrInvalidTransition = errors.New("invalid session transition")

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusActive:   {SessionStatusPaused, SessionStatusComplete},
	SessionStatusPaused:   {SessionStatusActive, SessionStatusComplete},
	SessionStatusComplete: {},
}

// CanTransitionSession returns true when a session transition is allowed.
func CanTransitionSession(from, to SessionStatus) bool {
	allowed, ok := sessionTransitions[from]
	if !ok {
		return false
	}
	for _, candidate := range allowed {
		if candidate == to {
			return true
		}
	}
	return false
}

// ValidateSessionTransition ensures a session status transition is valid.
func ValidateSessionTransition(from, to SessionStatus) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: unknown status", ErrInvalidTransition)
	}
	if !CanTransitionSession(from, to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return nil
}

// SessionMutable reports whether asset/prompt ids may still be recorded
// against the session. Paused sessions stay mutable; complete is terminal.
func SessionMutable(status SessionStatus) bool {
	return status == SessionStatusActive || status == SessionStatusPaused
}
