// Package harvest discovers issue page URLs from the publisher's yearly
// index pages.
package harvest

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/table"
	"github.com/brogergvhs/kirarank/internal/ui"
	"github.com/brogergvhs/kirarank/internal/util"
)

// DefaultBaseURL is the publisher site.
const DefaultBaseURL = "https://www.dokidokivisual.com"

// FirstYear is the oldest year with index pages on the site.
const FirstYear = 2007

type Options struct {
	BaseURL  string
	Fixes    magazine.MonthFixes
	Throttle *util.Throttle
	Attempts int
	Backoff  time.Duration
	Log      *ui.Logger
}

type Harvester struct {
	client   *http.Client
	base     string
	fixes    magazine.MonthFixes
	throttle *util.Throttle
	attempts int
	backoff  time.Duration
	log      *ui.Logger
}

func New(c *http.Client, opts Options) *Harvester {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	log := opts.Log
	if log == nil {
		log = ui.Discard()
	}
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 3
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Harvester{
		client:   c,
		base:     base,
		fixes:    opts.Fixes,
		throttle: opts.Throttle,
		attempts: attempts,
		backoff:  backoff,
		log:      log,
	}
}

func issuePattern(slug string) *regexp.Regexp {
	return regexp.MustCompile(`/magazine/` + regexp.QuoteMeta(slug) + `/(\d{4})/(\d{2})/(\d+)/`)
}

// IndexURL is the yearly index page for a magazine.
func (h *Harvester) IndexURL(slug string, year int) string {
	return fmt.Sprintf("%s/magazine/%s/%d/", h.base, slug, year)
}

// Harvest returns the issues linked from one yearly index page. A missing
// page or a transport failure yields no entries; it is logged, not returned.
func (h *Harvester) Harvest(ctx context.Context, slug string, year int) []table.URLEntry {
	if err := h.throttle.Wait(ctx); err != nil {
		return nil
	}

	index := h.IndexURL(slug, year)
	page, err := util.FetchPage(ctx, h.client, index, h.attempts, h.backoff)
	if err != nil {
		h.log.Warnf("harvest %s %d: %v", slug, year, err)
		return nil
	}
	if page.Status != http.StatusOK {
		h.log.Debugf("harvest %s %d: HTTP %d", slug, year, page.Status)
		return nil
	}

	return h.parseIndex(slug, string(page.Body))
}

func (h *Harvester) parseIndex(slug, body string) []table.URLEntry {
	seen := make(map[string]bool)
	var out []table.URLEntry

	for _, m := range issuePattern(slug).FindAllStringSubmatch(body, -1) {
		full := fmt.Sprintf("%s/magazine/%s/%s/%s/%s/", h.base, slug, m[1], m[2], m[3])
		if seen[full] {
			continue
		}
		seen[full] = true

		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		out = append(out, table.URLEntry{
			Magazine: slug,
			Year:     y,
			Month:    h.fixes.Apply(full, mo),
			URL:      full,
		})
	}

	return out
}

// HarvestRange walks every (slug, year) pair. Each pair fails on its own; a
// cancelled context stops the walk and returns what was collected so far.
func (h *Harvester) HarvestRange(ctx context.Context, slugs []string, years []int) []table.URLEntry {
	var out []table.URLEntry
	for _, slug := range slugs {
		for _, y := range years {
			if ctx.Err() != nil {
				return out
			}
			found := h.Harvest(ctx, slug, y)
			h.log.Debugf("harvest %s %d: %d issues", slug, y, len(found))
			out = append(out, found...)
		}
	}
	return out
}

// YearWindow lists first..year(now + 30 days * monthAhead), so issues
// released ahead of their cover date are picked up near year end.
func YearWindow(first, monthAhead int, now time.Time) []int {
	last := now.AddDate(0, 0, 30*monthAhead).Year()

	var years []int
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// MergeURLs unions two URL lists by URL. Entries already in the existing
// list keep their values, month corrections are applied again, and the
// result is ordered by magazine, year, month and URL.
func MergeURLs(existing, fresh []table.URLEntry, fixes magazine.MonthFixes) []table.URLEntry {
	byURL := make(map[string]table.URLEntry, len(existing)+len(fresh))
	for _, e := range fresh {
		byURL[e.URL] = e
	}
	for _, e := range existing {
		byURL[e.URL] = e
	}

	out := make([]table.URLEntry, 0, len(byURL))
	for _, e := range byURL {
		e.Month = fixes.Apply(e.URL, e.Month)
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Magazine != b.Magazine {
			return a.Magazine < b.Magazine
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.URL < b.URL
	})

	return out
}
