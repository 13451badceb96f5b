package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/brogergvhs/kirarank/internal/issues"
	"github.com/brogergvhs/kirarank/internal/merge"
	"github.com/brogergvhs/kirarank/internal/table"
	"github.com/brogergvhs/kirarank/internal/ui"
)

type ScrapeResult struct {
	Stats ui.Stats
	// Stored is the raw table size per magazine after the merge.
	Stored map[string]int
}

// Scrape extracts every selected issue and merges the rows into the raw
// store of each magazine. A failing issue is logged and skipped. On
// cancellation the rows collected so far are still saved and the context
// error is returned.
func (p *Pipeline) Scrape(ctx context.Context, sel issues.Selection) (*ScrapeResult, error) {
	all, err := p.Store.LoadURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load urls: %w", err)
	}
	targets := issues.Filter(all, sel)
	p.log.Infof("scraping %d of %d issues with %d workers", len(targets), len(all), p.Workers)

	res := &ScrapeResult{Stored: map[string]int{}}
	if len(targets) == 0 {
		return res, nil
	}

	pm := ui.NewProgressManager(p.Progress)
	handles := make(map[string]*ui.ProgressHandle)
	counts := make(map[string]int)
	for _, t := range targets {
		counts[t.Magazine]++
	}
	for _, slug := range sortedKeys(counts) {
		h := pm.Register(slug)
		h.SetTotal(counts[slug])
		handles[slug] = h
	}

	// one slot per target keeps the output in URL-list order
	results := make([][]table.IssueRow, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(p.Workers)
	for i, t := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			issue, err := p.Extractor.ParseIssue(ctx, t.URL, t.Magazine)
			if err != nil {
				res.Stats.Failed.Add(1)
				handles[t.Magazine].Advance(0)
				p.log.Errorf("%s: %v", t.URL, err)
				return nil
			}

			results[i] = issue.Rows
			res.Stats.Issues.Add(1)
			res.Stats.Rows.Add(int64(len(issue.Rows)))
			res.Stats.Bytes.Add(issue.Bytes)
			handles[t.Magazine].Advance(issue.Bytes)
			p.log.Debugf("%s: %d rows (%s layout, %s)", t.URL, len(issue.Rows), issue.Era, issue.Strategy)
			return nil
		})
	}
	_ = g.Wait()

	for _, h := range handles {
		h.MarkDone()
	}
	pm.Close()

	fresh := make(map[string][]table.IssueRow)
	for i, rows := range results {
		slug := targets[i].Magazine
		fresh[slug] = append(fresh[slug], rows...)
	}

	saveCtx := context.WithoutCancel(ctx)
	for _, slug := range sortedKeys(fresh) {
		if len(fresh[slug]) == 0 {
			continue
		}
		existing, err := p.Store.LoadRaw(saveCtx, slug)
		if err != nil {
			return res, fmt.Errorf("load raw %s: %w", slug, err)
		}
		merged := merge.MergeRaw(existing, fresh[slug])
		if err := p.Store.SaveRaw(saveCtx, slug, merged); err != nil {
			return res, fmt.Errorf("save raw %s: %w", slug, err)
		}
		res.Stored[slug] = len(merged)
		p.log.Infof("%s: %d rows after merge (%d scraped)", slug, len(merged), len(fresh[slug]))
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
