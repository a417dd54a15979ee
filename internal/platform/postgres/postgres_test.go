package postgres

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}

	bad := cfg
	bad.URL = ""
	if err := bad.Validate(); err == nil {
		t.Fatalf("empty URL accepted")
	}

	bad = cfg
	bad.MaxIdleConns = cfg.MaxOpenConns + 1
	if err := bad.Validate(); err == nil {
		t.Fatalf("idle > open accepted")
	}

	bad = cfg
	bad.PingTimeout = -time.Second
	if err := bad.Validate(); err == nil {
		t.Fatalf("negative ping timeout accepted")
	}
}
