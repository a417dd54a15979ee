package eventlog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/atelier-labs/atelier-go/internal/platform/event"
)

// Sink subscribes to the event bus and writes each event to Postgres. Bus
// dispatch is synchronous, so each insert runs with its own short timeout;
// a failed insert is logged and dropped rather than failing the operation
// that emitted the event.
type Sink struct {
	db      *sql.DB
	logger  *slog.Logger
	timeout time.Duration
}

func NewSink(db *sql.DB, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{db: db, logger: logger, timeout: 5 * time.Second}
}

func (s *Sink) HandleEvent(e event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := Insert(ctx, s.db, RecordFromEvent(e)); err != nil {
		s.logger.Error("event log insert failed",
			"kind", string(e.Kind()),
			"subject_id", e.SubjectID(),
			"error", err)
	}
}
