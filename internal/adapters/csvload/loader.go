// Package csvload reads football-data.co.uk style season files into a corpus.
//
// Files are discovered as season-*.csv. Each row needs Date, HomeTeam and
// AwayTeam plus full-time goals; rows that cannot be used are skipped and
// counted, never fatal.
package csvload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/quiniela/internal/domain/dedupe"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/pkg/logger"
	"github.com/okian/quiniela/pkg/metrics"
)

// Column names.
const (
	colDiv       = "Div"
	colDate      = "Date"
	colHomeTeam  = "HomeTeam"
	colAwayTeam  = "AwayTeam"
	colHomeGoals = "FTHG"
	colAwayGoals = "FTAG"
	colResult    = "FTR"
)

// Row rejection reasons, used as metric labels.
const (
	ReasonMissingField = "missing_field"
	ReasonBadDate      = "bad_date"
	ReasonBadGoals     = "bad_goals"
	ReasonBadResult    = "bad_result"
	ReasonInvalid      = "invalid"
)

const (
	defaultPattern = "season-*.csv"
	seasonPrefix   = "season-"
	byteOrderMark  = "\ufeff"
)

// dateLayouts are tried in order.
var dateLayouts = []string{"02/01/06", "02/01/2006", "2006-01-02"}

// FileStats describes one loaded file.
type FileStats struct {
	Path     string
	Season   string
	Rows     int
	Loaded   int
	Rejected map[string]int
}

// Result is the merged output of LoadDir.
type Result struct {
	Records    []model.MatchRecord
	Files      []FileStats
	Duplicates int
}

// Rejected returns the total rejected rows across files.
func (r Result) Rejected() int {
	n := 0
	for _, f := range r.Files {
		for _, c := range f.Rejected {
			n += c
		}
	}
	return n
}

// Loader parses season files.
type Loader struct {
	normalizer *Normalizer
	deduper    dedupe.Deduper
	pattern    string
	logger     logger.Logger
}

// New creates a Loader with the built-in aliases and an unbounded deduper.
func New(opts ...Option) *Loader {
	l := &Loader{
		normalizer: NewNormalizer(nil),
		pattern:    defaultPattern,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.deduper == nil {
		l.deduper = dedupe.New()
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("csvload")
	}
	return l
}

// Discover returns the season files in dir, sorted by name.
func (l *Loader) Discover(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir loads every season file in dir and drops fixtures seen in an earlier
// file. Repeated calls start from an empty key set.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Result, error) {
	files, err := l.Discover(dir)
	if err != nil {
		return Result{}, err
	}

	var res Result
	var all []model.MatchRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		recs, stats, err := l.LoadFile(ctx, path)
		if err != nil {
			return Result{}, err
		}
		all = append(all, recs...)
		res.Files = append(res.Files, stats)
	}

	res.Records, res.Duplicates = dedupe.Unique(ctx, l.deduper, all)
	for i := 0; i < res.Duplicates; i++ {
		metrics.RecordDuplicateRow()
	}
	// keys are scoped to one load so the same Loader can reload dir later
	for _, m := range res.Records {
		l.deduper.Forget(ctx, m.Key())
	}

	l.logger.Info(ctx, "season files loaded",
		logger.String("dir", dir),
		logger.Int("files", len(files)),
		logger.Int("matches", len(res.Records)),
		logger.Int("rejected", res.Rejected()),
		logger.Int("duplicates", res.Duplicates),
	)
	return res, nil
}

// LoadFile parses one season file. The season label comes from the file name.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]model.MatchRecord, FileStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, FileStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	recs, stats, err := l.Parse(ctx, f, SeasonFromPath(path))
	stats.Path = path
	if err != nil {
		return nil, stats, fmt.Errorf("parse %s: %w", path, err)
	}
	return recs, stats, nil
}

// Parse reads CSV rows from r and tags each record with season.
func (l *Loader) Parse(ctx context.Context, r io.Reader, season string) ([]model.MatchRecord, FileStats, error) {
	stats := FileStats{Season: season, Rejected: map[string]int{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		l.logger.Warn(ctx, "empty season file", logger.String("season", season))
		return nil, stats, nil
	}
	if err != nil {
		return nil, stats, err
	}
	idx := columnIndex(header)
	for _, col := range []string{colDate, colHomeTeam, colAwayTeam} {
		if _, ok := idx[col]; !ok {
			return nil, stats, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var out []model.MatchRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", line, err)
		}
		if blank(row) {
			continue
		}
		stats.Rows++

		m, reason := l.parseRow(row, idx, season)
		if reason != "" {
			stats.Rejected[reason]++
			metrics.RecordRowRejected(reason)
			l.logger.Debug(ctx, "row skipped",
				logger.String("season", season),
				logger.Int("line", line),
				logger.String("reason", reason),
			)
			continue
		}
		out = append(out, m)
	}
	stats.Loaded = len(out)
	return out, stats, nil
}

func (l *Loader) parseRow(row []string, idx map[string]int, season string) (model.MatchRecord, string) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	home := l.normalizer.Normalize(get(colHomeTeam))
	away := l.normalizer.Normalize(get(colAwayTeam))
	rawDate := get(colDate)
	if home == "" || away == "" || rawDate == "" {
		return model.MatchRecord{}, ReasonMissingField
	}

	date, ok := ParseDate(rawDate)
	if !ok {
		return model.MatchRecord{}, ReasonBadDate
	}

	hg, errH := strconv.Atoi(get(colHomeGoals))
	ag, errA := strconv.Atoi(get(colAwayGoals))
	if errH != nil || errA != nil {
		return model.MatchRecord{}, ReasonBadGoals
	}

	result := model.ResultFromGoals(hg, ag)
	if code := get(colResult); code != "" {
		r, err := model.ParseResult(code)
		if err != nil {
			return model.MatchRecord{}, ReasonBadResult
		}
		result = r
	}

	m := model.MatchRecord{
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: hg,
		AwayGoals: ag,
		Result:    result,
		Season:    season,
		Division:  get(colDiv),
	}
	if err := m.Validate(); err != nil {
		return model.MatchRecord{}, ReasonInvalid
	}
	return m, ""
}

// ParseDate accepts dd/mm/yy, dd/mm/yyyy and yyyy-mm-dd.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SeasonFromPath returns "1516" for ".../season-1516.csv".
func SeasonFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, seasonPrefix)
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, byteOrderMark))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
