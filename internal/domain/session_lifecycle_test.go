package domain

import (
	"errors"
	"testing"
)

func TestCanTransitionSession(t *testing.T) {
	cases := []struct {
		from, to SessionStatus
		want     bool
	}{
		{SessionStatusActive, SessionStatusPaused, true},
		{SessionStatusActive, SessionStatusComplete, true},
		{SessionStatusPaused, SessionStatusActive, true},
		{SessionStatusPaused, SessionStatusComplete, true},
		{SessionStatusComplete, SessionStatusActive, false},
		{SessionStatusComplete, SessionStatusPaused, false},
		{SessionStatusComplete, SessionStatusComplete, false},
		{SessionStatusActive, SessionStatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransitionSession(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransitionSession(%q, %q)=%v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidateSessionTransition_Invalid(t *testing.T) {
	err := ValidateSessionTransition(SessionStatusComplete, SessionStatusActive)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err=%v, want ErrInvalidTransition", err)
	}
	if err := ValidateSessionTransition("bogus", SessionStatusActive); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err=%v, want ErrInvalidTransition", err)
	}
}

func TestSessionMutable(t *testing.T) {
	if !SessionMutable(SessionStatusActive) || !SessionMutable(SessionStatusPaused) {
		t.Fatalf("active and paused sessions must be mutable")
	}
	if SessionMutable(SessionStatusComplete) {
		t.Fatalf("complete sessions must not be mutable")
	}
}
