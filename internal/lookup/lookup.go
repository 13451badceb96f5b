// Package lookup answers "where did this work appear" over the master table:
// fuzzy work-name search and the per-work appearance history.
package lookup

import (
	"slices"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/normalize"
	"github.com/brogergvhs/kirarank/internal/table"
)

// DefaultLimit is the number of candidates a search returns.
const DefaultLimit = 10

type Match struct {
	Work  string `json:"work"`
	Score int    `json:"score"`
}

// Appearance is one master row as shown to a reader.
type Appearance struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	IssueID      string `json:"issue_id"`
	Magazine     string `json:"magazine"`
	MagazineName string `json:"magazine_name"`
	Rank         int    `json:"rank"`
	Cover        bool   `json:"cover"`
	Top          bool   `json:"top"`
	Center       bool   `json:"center"`
	URL          string `json:"url"`
}

// Index is an immutable snapshot of the master table.
type Index struct {
	works  []string
	keys   []string // normalized works, same order
	byWork map[string][]table.IssueRow
	reg    *magazine.Registry
	rows   int
}

func NewIndex(rows []table.IssueRow, reg *magazine.Registry) *Index {
	if reg == nil {
		reg = magazine.MustDefault()
	}

	idx := &Index{byWork: make(map[string][]table.IssueRow), reg: reg, rows: len(rows)}
	for _, r := range rows {
		if r.Work == "" {
			continue
		}
		idx.byWork[r.Work] = append(idx.byWork[r.Work], r)
	}

	for w, rs := range idx.byWork {
		sort.SliceStable(rs, func(i, j int) bool {
			a, b := rs[i], rs[j]
			if a.Year != b.Year {
				return a.Year < b.Year
			}
			if a.Month != b.Month {
				return a.Month < b.Month
			}
			if a.Magazine != b.Magazine {
				return a.Magazine < b.Magazine
			}
			return a.Rank < b.Rank
		})
		idx.works = append(idx.works, w)
	}
	sort.Strings(idx.works)

	idx.keys = make([]string, len(idx.works))
	for i, w := range idx.works {
		idx.keys[i] = normalize.Normalize(w)
	}
	return idx
}

// Works is the number of distinct works.
func (idx *Index) Works() int { return len(idx.works) }

// Rows is the size of the snapshot.
func (idx *Index) Rows() int { return idx.rows }

// Search ranks the distinct works against q and returns the best limit of
// them, best first. A work containing the query scores 100.
func (idx *Index) Search(q string, limit int) []Match {
	q = normalize.Normalize(q)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]Match, 0, len(idx.works))
	for i, w := range idx.works {
		if score := Score(q, idx.keys[i]); score > 0 {
			out = append(out, Match{Work: w, Score: score})
		}
	}

	slices.SortStableFunc(out, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return strings.Compare(a.Work, b.Work)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Score rates a normalized query against a normalized work name from 0 to
// 100 by token-set ratio. A key containing the query scores 100.
func Score(q, key string) int {
	if q != "" && strings.Contains(key, q) {
		return 100
	}
	return fuzzy.TokenSetRatio(q, key)
}

// Appearances returns the history of an exact work name ordered by issue
// month, or nil when the work is unknown.
func (idx *Index) Appearances(work string) []Appearance {
	rows := idx.byWork[work]
	if len(rows) == 0 {
		return nil
	}

	out := make([]Appearance, len(rows))
	for i, r := range rows {
		out[i] = Appearance{
			Year:         r.Year,
			Month:        r.Month,
			IssueID:      r.IssueID(),
			Magazine:     r.Magazine,
			MagazineName: idx.displayName(r.Magazine),
			Rank:         r.Rank,
			Cover:        r.IsCover,
			Top:          r.IsTop,
			Center:       r.IsCenter,
			URL:          r.URL,
		}
	}
	return out
}

func (idx *Index) displayName(slug string) string {
	if m, ok := idx.reg.Lookup(slug); ok && m.Name != "" {
		return m.Name
	}
	return slug
}
