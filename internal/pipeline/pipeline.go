// Package pipeline wires the stages together: URL discovery, scraping into
// the raw stores, master build, validation and TODO generation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/brogergvhs/kirarank/internal/extract"
	"github.com/brogergvhs/kirarank/internal/harvest"
	"github.com/brogergvhs/kirarank/internal/issues"
	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/merge"
	"github.com/brogergvhs/kirarank/internal/store"
	"github.com/brogergvhs/kirarank/internal/table"
	"github.com/brogergvhs/kirarank/internal/todo"
	"github.com/brogergvhs/kirarank/internal/ui"
	"github.com/brogergvhs/kirarank/internal/validate"
)

// ErrValidationFailed is returned when the master table has unacknowledged
// warnings.
var ErrValidationFailed = errors.New("validation failed")

type Deps struct {
	Store     store.Store
	Harvester *harvest.Harvester
	Extractor *extract.Extractor
	Registry  *magazine.Registry
	Fixes     magazine.MonthFixes

	AliasFile    string
	OverrideFile string

	Workers   int
	FirstYear int
	Now       func() time.Time

	Log *ui.Logger
	// Progress receives the scrape progress bars; nil hides them.
	Progress io.Writer
}

type Pipeline struct {
	Deps
	RunID string
	log   *ui.Logger
}

func New(d Deps) *Pipeline {
	if d.Registry == nil {
		d.Registry = magazine.MustDefault()
	}
	if d.Workers < 1 {
		d.Workers = 1
	}
	if d.FirstYear == 0 {
		d.FirstYear = harvest.FirstYear
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = ui.Discard()
	}

	id := uuid.NewString()
	return &Pipeline{Deps: d, RunID: id, log: d.Log.With("run_id", id)}
}

// UpdateURLs harvests the yearly index pages of slugs (all registered
// magazines when empty) and merges the result into the URL store.
func (p *Pipeline) UpdateURLs(ctx context.Context, slugs []string) ([]table.URLEntry, error) {
	if len(slugs) == 0 {
		slugs = p.Registry.Slugs()
	}
	if unknown := p.Registry.Unknown(slugs); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown magazines: %v", unknown)
	}

	existing, err := p.Store.LoadURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load urls: %w", err)
	}

	var fresh []table.URLEntry
	for _, slug := range slugs {
		years := harvest.YearWindow(p.FirstYear, p.Registry.MonthAhead(slug), p.Now())
		found := p.Harvester.HarvestRange(ctx, []string{slug}, years)
		p.log.Infof("%s: %d issue urls on %d index pages", slug, len(found), len(years))
		fresh = append(fresh, found...)
	}

	merged := harvest.MergeURLs(existing, fresh, p.Fixes)
	if err := p.Store.SaveURLs(context.WithoutCancel(ctx), merged); err != nil {
		return nil, fmt.Errorf("save urls: %w", err)
	}
	p.log.Infof("url list: %d entries (%d before)", len(merged), len(existing))

	if err := ctx.Err(); err != nil {
		return merged, err
	}
	return merged, nil
}

// Build regenerates the master table from every raw table.
func (p *Pipeline) Build(ctx context.Context) ([]table.IssueRow, error) {
	keys, err := p.Store.RawMagazines(ctx)
	if err != nil {
		return nil, err
	}
	if unknown := p.Registry.Unknown(keys); len(unknown) > 0 {
		p.log.Warnf("raw tables for unregistered magazines: %v (default profile applies)", unknown)
	}

	raw := make(map[string][]table.IssueRow, len(keys))
	for _, k := range keys {
		rows, err := p.Store.LoadRaw(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("load raw %s: %w", k, err)
		}
		raw[k] = rows
	}

	aliases, err := table.ReadFileIfExists[table.AliasEntry](p.AliasFile)
	if err != nil {
		return nil, err
	}
	overrides, err := p.LoadOverrides()
	if err != nil {
		return nil, err
	}

	master, err := merge.BuildMaster(raw, aliases, overrides)
	if err != nil {
		return nil, err
	}
	if err := p.Store.SaveMaster(ctx, master); err != nil {
		return nil, fmt.Errorf("save master: %w", err)
	}

	p.log.Infof("master updated: %d rows from %d raw tables (%d aliases, %d override rows)",
		len(master), len(keys), len(aliases), len(overrides))
	return master, nil
}

// Validate checks the stored master table.
func (p *Pipeline) Validate(ctx context.Context) ([]table.ValidationWarning, error) {
	master, err := p.Store.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}
	overrides, err := p.LoadOverrides()
	if err != nil {
		return nil, err
	}

	ack := validate.NewAckSet(overrides)
	warnings := validate.Validate(master, p.Registry, ack)
	p.log.Debugf("validated %d rows, %d acknowledged entries", len(master), ack.Len())

	return warnings, nil
}

// Todo appends rows for new warnings to the override table and returns them.
func (p *Pipeline) Todo(ctx context.Context) ([]table.OverrideEntry, error) {
	master, err := p.Store.LoadMaster(ctx)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}
	overrides, err := p.LoadOverrides()
	if err != nil {
		return nil, err
	}

	added := todo.Generate(master, overrides, p.Registry)
	if len(added) == 0 {
		return nil, nil
	}

	if err := p.SaveOverrides(append(overrides, added...)); err != nil {
		return nil, err
	}
	return added, nil
}

func (p *Pipeline) LoadOverrides() ([]table.OverrideEntry, error) {
	rows, err := table.ReadFileIfExists[table.OverrideEntry](p.OverrideFile)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return rows, nil
}

func (p *Pipeline) SaveOverrides(rows []table.OverrideEntry) error {
	if err := table.WriteFile(p.OverrideFile, rows); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	return nil
}

// Run is the scheduled batch: refresh the URL list, scrape the current
// year, rebuild the master table and validate it. Any unacknowledged warning
// ends the run with ErrValidationFailed.
func (p *Pipeline) Run(ctx context.Context) ([]table.ValidationWarning, error) {
	p.log.Infof("pipeline run started")

	if _, err := p.UpdateURLs(ctx, nil); err != nil {
		return nil, err
	}

	year := p.Now().Year()
	res, err := p.Scrape(ctx, issues.Selection{Start: year})
	if err != nil {
		return nil, err
	}
	p.log.Infof("scraped %s", res.Stats.String())

	if _, err := p.Build(ctx); err != nil {
		return nil, err
	}

	warnings, err := p.Validate(ctx)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		return warnings, fmt.Errorf("%w: %d warnings", ErrValidationFailed, len(warnings))
	}

	p.log.Infof("all pass")
	return nil, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
