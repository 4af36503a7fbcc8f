package synth

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	model "github.com/okian/quiniela/internal/domain/model"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
	csvDateLayout       = "02/01/2006"
)

// Header is the football-data.co.uk column subset the loader understands.
var Header = []string{"Div", "Date", "HomeTeam", "AwayTeam", "FTHG", "FTAG", "FTR"} //nolint:gochecknoglobals // fixed CSV layout

// WriteSeasons writes one season-<label>.csv per season into dir and returns the
// paths in season order.
func WriteSeasons(dir string, records []model.MatchRecord) ([]string, error) {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	bySeason := make(map[string][]model.MatchRecord)
	for _, m := range records {
		bySeason[m.Season] = append(bySeason[m.Season], m)
	}
	seasons := make([]string, 0, len(bySeason))
	for s := range bySeason {
		seasons = append(seasons, s)
	}
	sort.Strings(seasons)

	paths := make([]string, 0, len(seasons))
	for _, s := range seasons {
		path := filepath.Join(dir, "season-"+s+".csv")
		if err := writeSeason(path, bySeason[s]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSeason(path string, records []model.MatchRecord) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range records {
		row := []string{
			m.Division,
			m.Date.Format(csvDateLayout),
			m.HomeTeam,
			m.AwayTeam,
			strconv.Itoa(m.HomeGoals),
			strconv.Itoa(m.AwayGoals),
			m.Result.Code(),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
