// Package extract turns one issue page into IssueRows: the serialization
// lineup in order, with cover, frontispiece and center-color flags. Color
// announcements are read by a layout-specific strategy; gaps are filled by
// ordered heuristics that record what they assigned.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/normalize"
	"github.com/brogergvhs/kirarank/internal/table"
	"github.com/brogergvhs/kirarank/internal/ui"
	"github.com/brogergvhs/kirarank/internal/util"
)

var issueDateRe = regexp.MustCompile(`/(\d{4})/(\d{2})/`)

type Options struct {
	Registry *magazine.Registry
	Fixes    magazine.MonthFixes
	Cutover  Cutover
	Throttle *util.Throttle
	Attempts int
	Backoff  time.Duration
	Log      *ui.Logger
}

type Extractor struct {
	client   *http.Client
	registry *magazine.Registry
	fixes    magazine.MonthFixes
	cutover  Cutover
	throttle *util.Throttle
	attempts int
	backoff  time.Duration
	log      *ui.Logger
}

func New(c *http.Client, opts Options) *Extractor {
	e := &Extractor{
		client:   c,
		registry: opts.Registry,
		fixes:    opts.Fixes,
		cutover:  opts.Cutover,
		throttle: opts.Throttle,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		log:      opts.Log,
	}
	if e.registry == nil {
		e.registry = magazine.MustDefault()
	}
	if e.cutover == (Cutover{}) {
		e.cutover = DefaultCutover
	}
	if e.attempts < 1 {
		e.attempts = 3
	}
	if e.backoff <= 0 {
		e.backoff = 500 * time.Millisecond
	}
	if e.log == nil {
		e.log = ui.Discard()
	}
	return e
}

// Issue is the result of one page.
type Issue struct {
	URL      string
	Era      Era
	Strategy string
	Rows     []table.IssueRow
	Bytes    int64
}

// ParseIssue fetches an issue page and extracts its rows. It waits on the
// shared throttle before fetching.
func (e *Extractor) ParseIssue(ctx context.Context, url, slug string) (*Issue, error) {
	if err := e.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	page, err := util.FetchPage(ctx, e.client, url, e.attempts, e.backoff)
	if err != nil {
		return nil, err
	}
	if page.Status != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, page.Status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	issue, err := e.ParseDocument(doc, url, slug)
	if err != nil {
		return nil, err
	}
	issue.Bytes = int64(len(page.Body))

	return issue, nil
}

// ParseDocument is the network-free core of ParseIssue.
func (e *Extractor) ParseDocument(doc *goquery.Document, url, slug string) (*Issue, error) {
	m := issueDateRe.FindStringSubmatch(url)
	if m == nil {
		return nil, fmt.Errorf("no year/month in issue url %q", url)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	month = e.fixes.Apply(url, month)

	era := EraOf(year, month, e.cutover)
	strategy := StrategyFor(e.registry.Style(slug), era)

	works := extractLineup(doc)
	labels := strategy.Extract(doc)
	e.log.Debugf("%s: era=%s strategy=%s works=%d labels=%d", url, era, strategy.Name, len(works), len(labels))

	rows := make([]table.IssueRow, 0, len(works))
	for i, w := range works {
		rows = append(rows, table.IssueRow{
			Magazine: slug,
			Year:     year,
			Month:    month,
			URL:      url,
			Work:     w,
			Rank:     i + 1,
			IsCover:  hasLabel(labels, w, KindCover),
			IsTop:    hasLabel(labels, w, KindTop),
			IsCenter: hasLabel(labels, w, KindCenter),
		})
	}
	applyHeuristics(rows)

	return &Issue{URL: url, Era: era, Strategy: strategy.Name, Rows: rows}, nil
}

// hasLabel reports whether some label of kind names work. Announcements
// often carry a subtitle, so the label title only has to contain the work.
func hasLabel(labels []Label, work string, kind LabelKind) bool {
	for _, l := range labels {
		if l.Kind == kind && normalize.Contains(l.Title, work) {
			return true
		}
	}
	return false
}

type heuristic struct {
	name  string
	apply func(rows []table.IssueRow) []int
}

// heuristics run in order; each returns the rows it changed.
var heuristics = []heuristic{
	{table.HeuristicCoverFromTop, coverFromTop},
	{table.HeuristicTopFromRank1, topFromRank1},
}

func applyHeuristics(rows []table.IssueRow) {
	if len(rows) == 0 {
		return
	}
	for _, h := range heuristics {
		for _, i := range h.apply(rows) {
			rows[i].AddHeuristic(h.name)
		}
	}
}

// coverFromTop: an issue with no cover announced gets its frontispiece
// works as cover.
func coverFromTop(rows []table.IssueRow) []int {
	for _, r := range rows {
		if r.IsCover {
			return nil
		}
	}

	var changed []int
	for i := range rows {
		if rows[i].IsTop {
			rows[i].IsCover = true
			changed = append(changed, i)
		}
	}
	return changed
}

// topFromRank1: an issue with no frontispiece gets the first lineup entry.
func topFromRank1(rows []table.IssueRow) []int {
	for _, r := range rows {
		if r.IsTop {
			return nil
		}
	}

	rows[0].IsTop = true
	return []int{0}
}
