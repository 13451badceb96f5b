// Package merge folds freshly scraped rows into the raw stores and builds the
// master table: alias canonicalization, human overrides and duplicate color
// cleanup.
package merge

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/brogergvhs/kirarank/internal/normalize"
	"github.com/brogergvhs/kirarank/internal/table"
)

// ErrBadOverride marks an acknowledged override row that cannot be applied.
var ErrBadOverride = errors.New("bad override")

// OverrideError points at the offending row of the override table. Line is
// the 1-based line in the CSV file, header included.
type OverrideError struct {
	Line    int
	IssueID string
	Field   string
	Reason  string
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("override line %d (issue %q, field %q): %s", e.Line, e.IssueID, e.Field, e.Reason)
}

func (e *OverrideError) Unwrap() error { return ErrBadOverride }

// MergeRaw appends fresh to existing and drops every row whose natural key
// was already seen, so rows already stored win over re-scraped ones.
func MergeRaw(existing, fresh []table.IssueRow) []table.IssueRow {
	seen := make(map[table.RowKey]bool, len(existing)+len(fresh))
	out := make([]table.IssueRow, 0, len(existing)+len(fresh))

	for _, rows := range [][]table.IssueRow{existing, fresh} {
		for _, r := range rows {
			k := r.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, r)
		}
	}

	return out
}

// AliasMap maps normalized alias titles to normalized canonical titles.
type AliasMap map[string]string

func NewAliasMap(entries []table.AliasEntry) AliasMap {
	m := make(AliasMap, len(entries))
	for _, e := range entries {
		a := normalize.Normalize(e.Alias)
		if a == "" {
			continue
		}
		m[a] = normalize.Normalize(e.Canonical)
	}
	return m
}

// Canonical returns the canonical title for work, or work normalized.
func (m AliasMap) Canonical(work string) string {
	w := normalize.Normalize(work)
	if c, ok := m[w]; ok {
		return c
	}
	return w
}

// BuildMaster regenerates the master table from all raw tables, keyed by
// store key (the magazine slug). Only acknowledged overrides are applied, in
// table order. The result is sorted by magazine, year, month and rank.
func BuildMaster(raw map[string][]table.IssueRow, aliases []table.AliasEntry, overrides []table.OverrideEntry) ([]table.IssueRow, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	am := NewAliasMap(aliases)

	var rows []table.IssueRow
	for _, k := range keys {
		for _, r := range raw[k] {
			if r.Magazine == "" {
				r.Magazine = k
			}
			r.Work = am.Canonical(r.Work)
			rows = append(rows, r)
		}
	}

	rows, err := applyOverrides(rows, overrides, am)
	if err != nil {
		return nil, err
	}
	dedupeColors(rows)

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Magazine != b.Magazine {
			return a.Magazine < b.Magazine
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Rank < b.Rank
	})

	return rows, nil
}

func applyOverrides(rows []table.IssueRow, overrides []table.OverrideEntry, am AliasMap) ([]table.IssueRow, error) {
	for i, o := range overrides {
		if !o.Acknowledged() {
			continue
		}

		field := strings.ToLower(strings.TrimSpace(o.Field))
		issueID := strings.TrimSpace(o.IssueID)
		value := strings.TrimSpace(o.Value)
		bad := func(reason string) error {
			return &OverrideError{Line: i + 2, IssueID: issueID, Field: field, Reason: reason}
		}

		if field == "" {
			if strings.TrimSpace(o.Type) != "" {
				continue // acknowledgement of a warning only
			}
			return nil, bad("no field and no warning type")
		}
		if issueID == "" {
			return nil, bad("missing issue_id")
		}

		work := ""
		if w := strings.TrimSpace(o.Work); w != "" {
			work = am.Canonical(w)
		}
		mag := strings.TrimSpace(o.Magazine)
		match := func(r table.IssueRow) bool {
			return r.IssueID() == issueID &&
				(work == "" || r.Work == work) &&
				(mag == "" || r.Magazine == mag)
		}

		switch field {
		case table.FieldDelete:
			rank, byRank := 0, value != ""
			if byRank {
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, bad(fmt.Sprintf("delete rank %q is not a number", value))
				}
				rank = n
			}
			rows = slices.DeleteFunc(rows, func(r table.IssueRow) bool {
				return match(r) && (!byRank || r.Rank == rank)
			})

		case table.FieldIsCover, table.FieldIsTop, table.FieldIsCenter:
			var set bool
			switch {
			case strings.EqualFold(value, "true"):
				set = true
			case strings.EqualFold(value, "false"):
			default:
				return nil, bad(fmt.Sprintf("flag value %q is not true/false", value))
			}
			for j := range rows {
				if !match(rows[j]) {
					continue
				}
				switch field {
				case table.FieldIsCover:
					rows[j].IsCover = set
				case table.FieldIsTop:
					rows[j].IsTop = set
				default:
					rows[j].IsCenter = set
				}
			}

		case table.FieldRank:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, bad(fmt.Sprintf("rank %q is not a number", value))
			}
			for j := range rows {
				if match(rows[j]) {
					rows[j].Rank = n
				}
			}

		default:
			return nil, bad("unknown field")
		}
	}

	return rows, nil
}

// dedupeColors handles a work printed twice in one issue (two episodes):
// within each (issue, work) group the lowest rank keeps is_top and
// is_center. Covers are left alone.
func dedupeColors(rows []table.IssueRow) {
	type groupKey struct{ issue, work string }
	groups := make(map[groupKey][]int)
	for i, r := range rows {
		k := groupKey{r.IssueID(), r.Work}
		groups[k] = append(groups[k], i)
	}

	keepLowest := func(idx []int, get func(*table.IssueRow) *bool) {
		best := -1
		for _, i := range idx {
			if !*get(&rows[i]) {
				continue
			}
			if best < 0 || rows[i].Rank < rows[best].Rank {
				best = i
			}
		}
		for _, i := range idx {
			if i != best {
				*get(&rows[i]) = false
			}
		}
	}

	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		keepLowest(idx, func(r *table.IssueRow) *bool { return &r.IsTop })
		keepLowest(idx, func(r *table.IssueRow) *bool { return &r.IsCenter })
	}
}
