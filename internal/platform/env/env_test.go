package env

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("ATELIER_TEST_STRING", "forge")
	if got := String("ATELIER_TEST_STRING", "fallback"); got != "forge" {
		t.Fatalf("String()=%q, want forge", got)
	}
	if got := String("ATELIER_TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("String()=%q, want fallback", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("ATELIER_TEST_DURATION", "90s")
	got, err := Duration("ATELIER_TEST_DURATION", time.Second)
	if err != nil {
		t.Fatalf("Duration() err=%v", err)
	}
	if got != 90*time.Second {
		t.Fatalf("Duration()=%v, want 90s", got)
	}

	t.Setenv("ATELIER_TEST_DURATION", "ninety")
	if _, err := Duration("ATELIER_TEST_DURATION", time.Second); err == nil {
		t.Fatalf("invalid duration accepted")
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("ATELIER_TEST_BOOL", "true")
	b, err := Bool("ATELIER_TEST_BOOL", false)
	if err != nil || !b {
		t.Fatalf("Bool()=%v err=%v", b, err)
	}

	t.Setenv("ATELIER_TEST_INT", "42")
	i, err := Int("ATELIER_TEST_INT", 0)
	if err != nil || i != 42 {
		t.Fatalf("Int()=%v err=%v", i, err)
	}

	t.Setenv("ATELIER_TEST_INT", "many")
	if _, err := Int("ATELIER_TEST_INT", 0); err == nil {
		t.Fatalf("invalid int accepted")
	}
}
