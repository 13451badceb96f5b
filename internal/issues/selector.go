// Package issues selects which entries of the URL list a scrape visits.
package issues

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brogergvhs/kirarank/internal/table"
)

// Selection narrows the URL list. Zero values select everything.
type Selection struct {
	Issue string // single issue id, e.g. kirara-2024-05
	Start int    // first year, inclusive
	End   int    // last year, inclusive
	Slugs []string
}

func Filter(all []table.URLEntry, sel Selection) []table.URLEntry {
	out := all
	if sel.Issue != "" {
		out = FilterByIssue(out, sel.Issue)
	}
	if sel.Start != 0 || sel.End != 0 {
		out = FilterYearRange(out, sel.Start, sel.End)
	}
	if len(sel.Slugs) > 0 {
		out = FilterSlugs(out, sel.Slugs)
	}
	return out
}

func FilterByIssue(all []table.URLEntry, issueID string) []table.URLEntry {
	var out []table.URLEntry
	for _, e := range all {
		if table.IssueID(e.Magazine, e.Year, e.Month) == issueID {
			out = append(out, e)
		}
	}
	return out
}

// FilterYearRange keeps start <= year <= end; a zero bound is open.
func FilterYearRange(all []table.URLEntry, start, end int) []table.URLEntry {
	var out []table.URLEntry
	for _, e := range all {
		if start != 0 && e.Year < start {
			continue
		}
		if end != 0 && e.Year > end {
			continue
		}
		out = append(out, e)
	}
	return out
}

func FilterSlugs(all []table.URLEntry, slugs []string) []table.URLEntry {
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}

	var out []table.URLEntry
	for _, e := range all {
		if want[e.Magazine] {
			out = append(out, e)
		}
	}
	return out
}

// ParseYearRange reads "2013-2025", "2013-", "-2020" or "2024".
func ParseYearRange(rng string) (start, end int, err error) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return 0, 0, nil
	}

	lo, hi, isRange := strings.Cut(rng, "-")
	if !isRange {
		hi = lo
	}
	if start, err = atoiOpen(lo); err != nil {
		return 0, 0, fmt.Errorf("year range %q: %w", rng, err)
	}
	if end, err = atoiOpen(hi); err != nil {
		return 0, 0, fmt.Errorf("year range %q: %w", rng, err)
	}
	if start != 0 && end != 0 && start > end {
		return 0, 0, fmt.Errorf("year range %q: start after end", rng)
	}
	return start, end, nil
}

// ParseList splits a comma-separated list, dropping blanks.
func ParseList(list string) []string {
	var out []string
	for p := range strings.SplitSeq(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiOpen(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
