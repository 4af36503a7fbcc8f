package model

import (
	"sort"
	"time"
)

// Corpus is the read-only, ordered collection of match records the pipeline runs on.
// A nil *Corpus behaves as an empty corpus.
type Corpus struct {
	records   []MatchRecord
	byTeam    map[string][]int // indices into records, date descending
	teams     []string
	homeTeams []string
	latest    time.Time
}

// NewCorpus indexes records. The slice is copied; load order is preserved.
func NewCorpus(records []MatchRecord) *Corpus {
	c := &Corpus{
		records: append([]MatchRecord(nil), records...),
		byTeam:  make(map[string][]int),
	}

	home := make(map[string]struct{})
	for i, m := range c.records {
		c.byTeam[m.HomeTeam] = append(c.byTeam[m.HomeTeam], i)
		if m.AwayTeam != m.HomeTeam {
			c.byTeam[m.AwayTeam] = append(c.byTeam[m.AwayTeam], i)
		}
		home[m.HomeTeam] = struct{}{}
		if m.Date.After(c.latest) {
			c.latest = m.Date
		}
	}

	for team, idx := range c.byTeam {
		sort.SliceStable(idx, func(a, b int) bool {
			return c.records[idx[a]].Date.After(c.records[idx[b]].Date)
		})
		c.teams = append(c.teams, team)
	}
	for team := range home {
		c.homeTeams = append(c.homeTeams, team)
	}
	sort.Strings(c.teams)
	sort.Strings(c.homeTeams)

	return c
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the i-th record in load order.
func (c *Corpus) At(i int) MatchRecord {
	return c.records[i]
}

// Records returns a copy of all records in load order.
func (c *Corpus) Records() []MatchRecord {
	if c == nil {
		return nil
	}
	return append([]MatchRecord(nil), c.records...)
}

// LatestDate returns the most recent match date, the dataset's own horizon.
func (c *Corpus) LatestDate() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.latest
}

// Teams returns every team name in the corpus, sorted.
func (c *Corpus) Teams() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.teams...)
}

// HomeTeams returns every team that played at least one home match, sorted.
func (c *Corpus) HomeTeams() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.homeTeams...)
}

// TeamMatches returns all matches involving team, most recent first.
// Matches on the same date keep load order.
func (c *Corpus) TeamMatches(team string) []MatchRecord {
	return c.TeamMatchesBefore(team, time.Time{}, 0)
}

// TeamMatchesBefore returns matches involving team strictly earlier than asOf,
// most recent first, at most limit of them. A zero asOf means no date bound and
// a non-positive limit means no count bound.
func (c *Corpus) TeamMatchesBefore(team string, asOf time.Time, limit int) []MatchRecord {
	if c == nil {
		return nil
	}
	idx := c.byTeam[team]

	start := 0
	if !asOf.IsZero() {
		start = sort.Search(len(idx), func(i int) bool {
			return c.records[idx[i]].Date.Before(asOf)
		})
	}
	end := len(idx)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := make([]MatchRecord, 0, end-start)
	for _, i := range idx[start:end] {
		out = append(out, c.records[i])
	}
	return out
}
