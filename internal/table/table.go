// Package table defines the tabular records exchanged between pipeline stages
// and the CSV codec used to persist them.
package table

import (
	"fmt"
	"strings"
)

// URLEntry is one issue page discovered on a yearly index page. The headers
// are the ones the URL list has always been written with.
type URLEntry struct {
	Magazine string `csv:"種別" db:"magazine"`
	Year     int    `csv:"年" db:"issue_year"`
	Month    int    `csv:"月" db:"issue_month"`
	URL      string `csv:"URL" db:"url"`
}

// Heuristic markers stored in IssueRow.Heuristic.
const (
	HeuristicCoverFromTop = "cover_from_top"
	HeuristicTopFromRank1 = "top_from_rank1"
)

// IssueRow is one work's appearance in one issue.
// Natural key: (Magazine, Year, Month, Work, Rank).
type IssueRow struct {
	Magazine  string `csv:"magazine" db:"magazine"`
	Year      int    `csv:"year" db:"issue_year"`
	Month     int    `csv:"month" db:"issue_month"`
	URL       string `csv:"url" db:"url"`
	Work      string `csv:"work" db:"work"`
	Rank      int    `csv:"rank" db:"work_rank"`
	IsCover   bool   `csv:"is_cover" db:"is_cover"`
	IsTop     bool   `csv:"is_top" db:"is_top"`
	IsCenter  bool   `csv:"is_center" db:"is_center"`
	Heuristic string `csv:"heuristic" db:"heuristic"`
}

// IssueID returns magazine-year-MM.
func IssueID(magazine string, year, month int) string {
	return fmt.Sprintf("%s-%d-%02d", magazine, year, month)
}

func (r IssueRow) IssueID() string {
	return IssueID(r.Magazine, r.Year, r.Month)
}

// Key is the natural key used for raw-store dedupe.
func (r IssueRow) Key() RowKey {
	return RowKey{r.Magazine, r.Year, r.Month, r.Work, r.Rank}
}

type RowKey struct {
	Magazine string
	Year     int
	Month    int
	Work     string
	Rank     int
}

// AddHeuristic records that a fallback rule assigned one of the flags.
func (r *IssueRow) AddHeuristic(h string) {
	if r.Heuristic == "" {
		r.Heuristic = h
		return
	}
	for _, p := range strings.Split(r.Heuristic, "+") {
		if p == h {
			return
		}
	}
	r.Heuristic += "+" + h
}

// MasterRow is the master-table layout: IssueRow plus the derived issue_id.
type MasterRow struct {
	IssueRow
	IssueID string `csv:"issue_id" db:"issue_id"`
}

func ToMaster(rows []IssueRow) []MasterRow {
	out := make([]MasterRow, len(rows))
	for i, r := range rows {
		out[i] = MasterRow{IssueRow: r, IssueID: r.IssueID()}
	}
	return out
}

func FromMaster(rows []MasterRow) []IssueRow {
	out := make([]IssueRow, len(rows))
	for i, r := range rows {
		out[i] = r.IssueRow
	}
	return out
}

type AliasEntry struct {
	Alias     string `csv:"alias"`
	Canonical string `csv:"canonical"`
}

// Override fields.
const (
	FieldDelete   = "delete"
	FieldIsCover  = "is_cover"
	FieldIsTop    = "is_top"
	FieldIsCenter = "is_center"
	FieldRank     = "rank"
)

// OverrideEntry is one human-maintained correction or acknowledgement.
// Rows appended by the TODO generator carry Type and Detail and leave the
// action columns blank.
type OverrideEntry struct {
	IssueID  string `csv:"issue_id"`
	Magazine string `csv:"magazine"`
	Work     string `csv:"work"`
	Field    string `csv:"field"`
	Value    string `csv:"value"`
	Type     string `csv:"type"`
	Detail   string `csv:"detail"`
	Fixed    string `csv:"fixed"`
}

// Acknowledged reports fixed=OK, case-insensitively.
func (o OverrideEntry) Acknowledged() bool {
	return strings.EqualFold(strings.TrimSpace(o.Fixed), "OK")
}

// Warning types produced by the validator.
const (
	WarnCoverCount  = "cover_count"
	WarnTopCount    = "top_count"
	WarnTopNotRank1 = "top_not_rank1"
	WarnCenterCount = "center_count"
)

type ValidationWarning struct {
	Magazine string `csv:"magazine"`
	IssueID  string `csv:"issue_id"`
	Type     string `csv:"type"`
	Detail   string `csv:"detail"`
}
