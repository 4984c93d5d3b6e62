// Package sqlite persists the catalog and the sparse pair store in a single
// local database file.  The driver is pure Go (modernc.org/sqlite), so the
// binaries stay cgo-free.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
	"github.com/seistrack/famview/pkg/errors"
)

// Config holds store construction parameters.
type Config struct {
	Path        string
	BusyTimeout time.Duration
	ReadOnly    bool
}

// Store implements the catalog repositories and the similarity pair store
// over one SQLite file.
type Store struct {
	db      *sql.DB
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// Option customizes the store.
type Option func(*Store)

// WithMetrics enables pair-store operation metrics.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Open opens (creating if needed) the database at cfg.Path and applies the
// schema.
func Open(cfg Config, logger logging.Logger, opts ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New(errors.ErrCodeValidation, "catalog path is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "open catalog database")
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	if !cfg.ReadOnly {
		if err := s.migrate(); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info("catalog database opened",
		logging.String("path", cfg.Path), logging.Bool("read_only", cfg.ReadOnly))
	return s, nil
}

func dsn(cfg Config) string {
	q := url.Values{}
	if cfg.BusyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	if cfg.ReadOnly {
		q.Set("mode", "ro")
	}
	return "file:" + cfg.Path + "?" + q.Encode()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id         INTEGER PRIMARY KEY,
		uid        TEXT NOT NULL DEFAULT '',
		time       REAL NOT NULL,
		fi         REAL,
		amps       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);

	CREATE TABLE IF NOT EXISTS families (
		id         INTEGER PRIMARY KEY,
		core       INTEGER NOT NULL,
		start      REAL NOT NULL,
		longevity  REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS family_members (
		family_id  INTEGER NOT NULL,
		position   INTEGER NOT NULL,
		event_id   INTEGER NOT NULL,
		PRIMARY KEY (family_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_family_members_event ON family_members(event_id);

	CREATE TABLE IF NOT EXISTS triggers (
		time REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_triggers_time ON triggers(time);

	CREATE TABLE IF NOT EXISTS pairs (
		lo           INTEGER NOT NULL,
		hi           INTEGER NOT NULL,
		coefficient  REAL NOT NULL,
		lag          REAL NOT NULL DEFAULT 0,
		sample_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (lo, hi)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "apply catalog schema")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ─────────────────────────────── events ───────────────────────────────

// GetEvent implements catalog.EventRepository.
func (s *Store) GetEvent(ctx context.Context, id catalog.EventID) (*catalog.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, uid, time, fi, amps FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeEventNotFound,
			fmt.Sprintf("event %d not found", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "load event")
	}
	return ev, nil
}

// GetEvents implements catalog.EventRepository.
func (s *Store) GetEvents(ctx context.Context, ids []catalog.EventID) ([]*catalog.Event, error) {
	out := make([]*catalog.Event, 0, len(ids))
	for _, id := range ids {
		ev, err := s.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// ListEventTimes implements catalog.EventRepository.
func (s *Store) ListEventTimes(ctx context.Context) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT time FROM events ORDER BY time`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list event times")
	}
	defer rows.Close()

	var times []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan event time")
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// PutEvent implements catalog.EventRepository.
func (s *Store) PutEvent(ctx context.Context, ev *catalog.Event) error {
	amps, err := encodeAmps(ev.Amps)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, uid, time, fi, amps) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uid = excluded.uid,
			time = excluded.time,
			fi = excluded.fi,
			amps = excluded.amps`,
		ev.ID, ev.UID, ev.Time, encodeFI(ev.FI), amps)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "store event")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*catalog.Event, error) {
	var (
		ev   catalog.Event
		fi   sql.NullFloat64
		amps sql.NullString
	)
	if err := row.Scan(&ev.ID, &ev.UID, &ev.Time, &fi, &amps); err != nil {
		return nil, err
	}
	ev.FI = math.NaN()
	if fi.Valid {
		ev.FI = fi.Float64
	}
	if amps.Valid && amps.String != "" {
		if err := json.Unmarshal([]byte(amps.String), &ev.Amps); err != nil {
			return nil, err
		}
	}
	return &ev, nil
}

// encodeFI maps NaN (FI not computed) to NULL.
func encodeFI(fi float64) interface{} {
	if math.IsNaN(fi) {
		return nil
	}
	return fi
}

func encodeAmps(amps []float64) (interface{}, error) {
	if len(amps) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(amps)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode amplitudes")
	}
	return string(raw), nil
}

// ─────────────────────────────── families ───────────────────────────────

// GetFamily implements catalog.FamilyRepository.
func (s *Store) GetFamily(ctx context.Context, id catalog.FamilyID) (*catalog.Family, error) {
	fam := &catalog.Family{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT core, start, longevity FROM families WHERE id = ?`, id).
		Scan(&fam.Core, &fam.Start, &fam.Longevity)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeFamilyNotFound,
			fmt.Sprintf("family %d not found", id))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "load family")
	}

	fam.Members, err = s.familyMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return fam, nil
}

func (s *Store) familyMembers(ctx context.Context, id catalog.FamilyID) ([]catalog.EventID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id FROM family_members WHERE family_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "load family members")
	}
	defer rows.Close()

	var members []catalog.EventID
	for rows.Next() {
		var m catalog.EventID
		if err := rows.Scan(&m); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan family member")
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListFamilies implements catalog.FamilyRepository.
func (s *Store) ListFamilies(ctx context.Context) ([]*catalog.Family, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, core, start, longevity FROM families ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list families")
	}
	defer rows.Close()

	var fams []*catalog.Family
	for rows.Next() {
		fam := &catalog.Family{}
		if err := rows.Scan(&fam.ID, &fam.Core, &fam.Start, &fam.Longevity); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan family")
		}
		fams = append(fams, fam)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list families")
	}

	for _, fam := range fams {
		if fam.Members, err = s.familyMembers(ctx, fam.ID); err != nil {
			return nil, err
		}
	}
	return fams, nil
}

// PutFamily implements catalog.FamilyRepository.  The member list replaces
// any previous one atomically.
func (s *Store) PutFamily(ctx context.Context, fam *catalog.Family) error {
	if err := fam.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "begin family write")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO families (id, core, start, longevity) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			core = excluded.core,
			start = excluded.start,
			longevity = excluded.longevity`,
		fam.ID, fam.Core, fam.Start, fam.Longevity); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "store family")
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM family_members WHERE family_id = ?`, fam.ID); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "clear family members")
	}
	for pos, ev := range fam.Members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO family_members (family_id, position, event_id) VALUES (?, ?, ?)`,
			fam.ID, pos, ev); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "store family member")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "commit family write")
	}
	return nil
}

// ─────────────────────────────── triggers ───────────────────────────────

// ListTriggerTimes implements catalog.TriggerRepository.
func (s *Store) ListTriggerTimes(ctx context.Context) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT time FROM triggers ORDER BY time`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "list trigger times")
	}
	defer rows.Close()

	var times []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan trigger time")
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// PutTrigger implements catalog.TriggerRepository.
func (s *Store) PutTrigger(ctx context.Context, t float64) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO triggers (time) VALUES (?)`, t); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "store trigger")
	}
	return nil
}

// ─────────────────────────────── pair store ───────────────────────────────

// Lookup implements similarity.PairStore.
func (s *Store) Lookup(ctx context.Context, a, b catalog.EventID) (similarity.PairValue, bool, error) {
	started := time.Now()
	key := similarity.NewPairKey(a, b)

	var v similarity.PairValue
	err := s.db.QueryRowContext(ctx,
		`SELECT coefficient, lag, sample_count FROM pairs WHERE lo = ? AND hi = ?`,
		key.Lo, key.Hi).Scan(&v.Coefficient, &v.Lag, &v.SampleCount)
	if err == sql.ErrNoRows {
		prometheus.RecordPairStoreOp(s.metrics, "lookup", time.Since(started), nil)
		return similarity.PairValue{}, false, nil
	}
	prometheus.RecordPairStoreOp(s.metrics, "lookup", time.Since(started), err)
	if err != nil {
		return similarity.PairValue{}, false,
			errors.Wrap(err, errors.ErrCodeDatabaseError, "pair lookup")
	}
	return v, true, nil
}

// Insert implements similarity.PairStore, overwriting any stored value for
// the unordered pair.
func (s *Store) Insert(ctx context.Context, a, b catalog.EventID, v similarity.PairValue) error {
	started := time.Now()
	key := similarity.NewPairKey(a, b)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pairs (lo, hi, coefficient, lag, sample_count) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(lo, hi) DO UPDATE SET
			coefficient = excluded.coefficient,
			lag = excluded.lag,
			sample_count = excluded.sample_count`,
		key.Lo, key.Hi, v.Coefficient, v.Lag, v.SampleCount)
	prometheus.RecordPairStoreOp(s.metrics, "insert", time.Since(started), err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "pair insert")
	}
	return nil
}

// PairCount returns the number of stored pairs.
func (s *Store) PairCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pairs`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count pairs")
	}
	return n, nil
}

// Counts returns the catalog's family and event counts, used by the health
// and stats surfaces.
func (s *Store) Counts(ctx context.Context) (families, events int64, err error) {
	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM families`).Scan(&families); err != nil {
		return 0, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count families")
	}
	if err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events`).Scan(&events); err != nil {
		return 0, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count events")
	}
	return families, events, nil
}
