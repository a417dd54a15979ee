// Package eventlog persists the studio's domain-event stream to Postgres.
// Each row carries a SHA-256 over its canonical JSON form so exported
// streams can be integrity-checked downstream.
package eventlog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-labs/atelier-go/internal/platform/event"
)

type Record struct {
	OccurredAt time.Time
	Kind       string
	SubjectID  string
	Payload    any
}

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r Record) Validate() error {
	if r.OccurredAt.IsZero() {
		return errors.New("OccurredAt is required")
	}
	if strings.TrimSpace(r.Kind) == "" {
		return errors.New("Kind is required")
	}
	if strings.TrimSpace(r.SubjectID) == "" {
		return errors.New("SubjectID is required")
	}
	return nil
}

// EnsureSchema creates the creative_events table when it does not exist.
// The studio runs against a single Postgres database, so a bootstrap DDL
// beats a standalone migration tool here.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("db is required")
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS creative_events (
			event_id         BIGSERIAL PRIMARY KEY,
			occurred_at      TIMESTAMPTZ NOT NULL,
			kind             TEXT NOT NULL,
			subject_id       TEXT NOT NULL,
			payload          JSONB NOT NULL,
			integrity_sha256 TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure creative_events: %w", err)
	}
	return nil
}

func Insert(ctx context.Context, q QueryRower, record Record) (int64, error) {
	if q == nil {
		return 0, errors.New("queryer is required")
	}
	if err := record.Validate(); err != nil {
		return 0, err
	}

	payload := record.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	integrity, err := ComputeIntegritySHA256(record, payloadJSON)
	if err != nil {
		return 0, err
	}

	var id int64
	err = q.QueryRowContext(
		ctx,
		`INSERT INTO creative_events (
			occurred_at,
			kind,
			subject_id,
			payload,
			integrity_sha256
		) VALUES ($1,$2,$3,$4,$5)
		RETURNING event_id`,
		record.OccurredAt.UTC(),
		strings.TrimSpace(record.Kind),
		strings.TrimSpace(record.SubjectID),
		payloadJSON,
		integrity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert creative event: %w", err)
	}
	return id, nil
}

func ComputeIntegritySHA256(record Record, payloadJSON []byte) (string, error) {
	type integrityInput struct {
		OccurredAt time.Time       `json:"occurred_at"`
		Kind       string          `json:"kind"`
		SubjectID  string          `json:"subject_id"`
		Payload    json.RawMessage `json:"payload"`
	}

	in := integrityInput{
		OccurredAt: record.OccurredAt.UTC(),
		Kind:       strings.TrimSpace(record.Kind),
		SubjectID:  strings.TrimSpace(record.SubjectID),
		Payload:    payloadJSON,
	}

	blob, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal integrity: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}

// RecordFromEvent flattens a bus event into a persistable record. The event
// variant itself becomes the payload.
func RecordFromEvent(e event.Event) Record {
	return Record{
		OccurredAt: e.OccurredAt(),
		Kind:       string(e.Kind()),
		SubjectID:  e.SubjectID(),
		Payload:    e,
	}
}
