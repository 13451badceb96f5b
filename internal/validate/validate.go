// Package validate checks every issue of the master table against the
// expected color-page counts of its magazine.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/table"
)

type ackKey struct{ magazine, issueID, typ string }

// AckSet holds the warnings a human has acknowledged with fixed=OK.
type AckSet struct {
	exact map[ackKey]bool
	// override rows without a magazine; issue_id already names it
	anyMag map[ackKey]bool
}

// NewAckSet collects acknowledged override rows that carry a warning type.
func NewAckSet(overrides []table.OverrideEntry) AckSet {
	s := AckSet{exact: map[ackKey]bool{}, anyMag: map[ackKey]bool{}}
	for _, o := range overrides {
		typ := strings.TrimSpace(o.Type)
		if !o.Acknowledged() || typ == "" {
			continue
		}
		id := strings.TrimSpace(o.IssueID)
		if mag := strings.TrimSpace(o.Magazine); mag != "" {
			s.exact[ackKey{mag, id, typ}] = true
		} else {
			s.anyMag[ackKey{"", id, typ}] = true
		}
	}
	return s
}

func (s AckSet) Has(mag, issueID, typ string) bool {
	return s.exact[ackKey{mag, issueID, typ}] || s.anyMag[ackKey{"", issueID, typ}]
}

func (s AckSet) Len() int { return len(s.exact) + len(s.anyMag) }

type issueKey struct {
	magazine    string
	year, month int
}

// Validate groups rows by issue and reports every count that differs from
// the magazine's profile, minus acknowledged ones. Warnings come out ordered
// by magazine, year and month.
func Validate(rows []table.IssueRow, reg *magazine.Registry, ack AckSet) []table.ValidationWarning {
	groups := make(map[issueKey][]table.IssueRow)
	for _, r := range rows {
		k := issueKey{r.Magazine, r.Year, r.Month}
		groups[k] = append(groups[k], r)
	}

	keys := make([]issueKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.magazine != b.magazine {
			return a.magazine < b.magazine
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return a.month < b.month
	})

	var out []table.ValidationWarning
	for _, k := range keys {
		out = append(out, checkIssue(k, groups[k], reg.Profile(k.magazine), ack)...)
	}
	return out
}

func checkIssue(k issueKey, rows []table.IssueRow, p magazine.Profile, ack AckSet) []table.ValidationWarning {
	id := table.IssueID(k.magazine, k.year, k.month)

	var out []table.ValidationWarning
	warn := func(typ, detail string) {
		if ack.Has(k.magazine, id, typ) {
			return
		}
		out = append(out, table.ValidationWarning{Magazine: k.magazine, IssueID: id, Type: typ, Detail: detail})
	}

	covers, centers := 0, 0
	var tops []table.IssueRow
	for _, r := range rows {
		if r.IsCover {
			covers++
		}
		if r.IsTop {
			tops = append(tops, r)
		}
		if r.IsCenter {
			centers++
		}
	}

	if covers != p.Cover {
		warn(table.WarnCoverCount, fmt.Sprintf("%d 作", covers))
	}

	switch {
	case len(tops) != p.Top:
		warn(table.WarnTopCount, fmt.Sprintf("%d 作", len(tops)))
	case len(tops) == 1 && tops[0].Rank != 1:
		warn(table.WarnTopNotRank1, fmt.Sprintf("rank=%d", tops[0].Rank))
	}

	if p.Center != nil && centers != *p.Center {
		warn(table.WarnCenterCount, fmt.Sprintf("%d 作", centers))
	}

	return out
}
