package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/pkg/logger"
	"github.com/okian/quiniela/pkg/metrics"
)

const (
	dateLayout           = "2006-01-02"
	defaultBusyTimeoutMS = 5000
	openBound            = "9999-12-31"
)

// schema keeps the football-data column names so the file stays readable by
// other tools working on the same seasons.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		Div      TEXT,
		Date     TEXT    NOT NULL,
		HomeTeam TEXT    NOT NULL,
		AwayTeam TEXT    NOT NULL,
		FTHG     INTEGER NOT NULL,
		FTAG     INTEGER NOT NULL,
		FTR      TEXT    NOT NULL,
		Season   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_home_team ON matches(HomeTeam)`,
	`CREATE INDEX IF NOT EXISTS idx_away_team ON matches(AwayTeam)`,
	`CREATE INDEX IF NOT EXISTS idx_date ON matches(Date)`,
}

const columns = `Div, Date, HomeTeam, AwayTeam, FTHG, FTAG, FTR, Season`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a single sqlite file.
type SQLiteStore struct {
	db            *sql.DB
	mu            sync.Mutex
	closed        bool
	busyTimeoutMS int
	logger        logger.Logger
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeoutMS: defaultBusyTimeoutMS}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(%d)", path, s.busyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}
	s.db = db

	n, err := s.Count(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info(ctx, "match store opened", logger.String("path", path), logger.Int("matches", n))
	return s, nil
}

// Save replaces the stored matches in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []model.MatchRecord) (err error) {
	defer observe("save", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("clear matches: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches (`+columns+`) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, m := range records {
		if _, err = stmt.ExecContext(ctx,
			m.Division,
			m.Date.UTC().Format(dateLayout),
			m.HomeTeam,
			m.AwayTeam,
			m.HomeGoals,
			m.AwayGoals,
			m.Result.Code(),
			m.Season,
		); err != nil {
			return fmt.Errorf("insert %s: %w", m.Key(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.logger.Info(ctx, "matches saved", logger.Int("matches", len(records)))
	return nil
}

// Load returns every stored match in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]model.MatchRecord, error) {
	defer observe("load", time.Now())
	return s.query(ctx, `SELECT `+columns+` FROM matches ORDER BY rowid`)
}

// TeamMatches uses the team and date indexes. A zero asOf means no date bound.
func (s *SQLiteStore) TeamMatches(ctx context.Context, team string, asOf time.Time, limit int) ([]model.MatchRecord, error) {
	defer observe("team_matches", time.Now())
	if limit <= 0 {
		limit = -1
	}
	bound := openBound
	if !asOf.IsZero() {
		bound = asOf.UTC().Format(dateLayout)
	}
	return s.query(ctx, `SELECT `+columns+` FROM matches
		WHERE (HomeTeam = ? OR AwayTeam = ?) AND Date < ?
		ORDER BY Date DESC, rowid ASC
		LIMIT ?`,
		team, team, bound, limit)
}

// Count returns the number of stored matches.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]model.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read matches: %w", err)
	}
	return out, nil
}

func scanMatch(rows *sql.Rows) (model.MatchRecord, error) {
	var (
		div, season sql.NullString
		date, code  string
		m           model.MatchRecord
	)
	if err := rows.Scan(&div, &date, &m.HomeTeam, &m.AwayTeam, &m.HomeGoals, &m.AwayGoals, &code, &season); err != nil {
		return model.MatchRecord{}, fmt.Errorf("scan match: %w", err)
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("%w: date %q", ErrCorruptRow, date)
	}
	r, err := model.ParseResult(code)
	if err != nil {
		return model.MatchRecord{}, fmt.Errorf("%w: %w", ErrCorruptRow, err)
	}
	m.Date, m.Result = d, r
	m.Division, m.Season = div.String, season.String
	return m, nil
}

func observe(op string, start time.Time) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1e3)
}
