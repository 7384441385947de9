package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/avatarbot/bot/wizard"
	"github.com/m3rciful/avatarbot/core/logger"

	"log/slog"
)

// Record is one finished wizard run persisted for the admin history view.
type Record struct {
	ID         int64     `db:"id"`
	ChatID     int64     `db:"chat_id"`
	Style      string    `db:"style"`
	Seed       string    `db:"seed"`
	Format     string    `db:"format"`
	Background string    `db:"background"`
	Color      *string   `db:"color"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store persists avatar request outcomes in Postgres.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Insert appends one record. CreatedAt defaults to now when unset.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO avatar_requests (chat_id, style, seed, format, background, color, status, created_at)
		VALUES (:chat_id, :style, :seed, :format, :background, :color, :status, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, q, rec); err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, chat_id, style, seed, format, background, color, status, created_at
		FROM avatar_requests
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	var rows []Record
	if err := s.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("history: select recent: %w", err)
	}
	return rows, nil
}

// Recorder adapts the store to the wizard's outcome hook. Persistence
// failures are logged and never surface into the chat flow.
type Recorder struct {
	store *Store
}

// NewRecorder builds an outcome recorder over the store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Record persists one wizard outcome.
func (r *Recorder) Record(ctx context.Context, out wizard.Outcome) {
	rec := Record{
		ChatID:     out.ChatID,
		Style:      out.Style,
		Seed:       out.Seed,
		Format:     out.Format,
		Background: out.Background,
		Status:     out.Status,
	}
	if out.Color != "" {
		color := out.Color
		rec.Color = &color
	}
	if err := r.store.Insert(ctx, rec); err != nil {
		logger.HIST.Error("record failed",
			slog.String("event", "record"),
			slog.String("status", "error"),
			slog.Int64("chat_id", out.ChatID),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.HIST.Debug("recorded",
		slog.String("event", "record"),
		slog.String("status", "ok"),
		slog.Int64("chat_id", out.ChatID),
		slog.String("style", out.Style),
	)
}
