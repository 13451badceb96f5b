package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brogergvhs/kirarank/internal/extract"
	"github.com/brogergvhs/kirarank/internal/harvest"
	"github.com/brogergvhs/kirarank/internal/issues"
	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/merge"
	"github.com/brogergvhs/kirarank/internal/store"
	"github.com/brogergvhs/kirarank/internal/table"
)

func issuePage(centers []string, lineup []string) string {
	var b strings.Builder
	b.WriteString("<html><body><h2>表紙・巻頭カラー</h2><p>『A』</p><h2>センターカラー</h2><p>")
	for _, c := range centers {
		fmt.Fprintf(&b, "『%s』", c)
	}
	b.WriteString("</p><h2>ラインナップ</h2><p>")
	for _, w := range lineup {
		fmt.Fprintf(&b, "『%s』<br>", w)
	}
	b.WriteString("</p></body></html>")
	return b.String()
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/magazine/kirara/2025/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/magazine/kirara/2025/":
			fmt.Fprint(w, `<a href="/magazine/kirara/2025/04/100/">4月号</a>
<a href="/magazine/kirara/2025/05/101/">5月号</a>
<a href="/magazine/kirara/2025/06/102/">6月号</a>`)
		case "/magazine/kirara/2025/04/100/":
			fmt.Fprint(w, issuePage([]string{"B", "C", "D", "E"}, []string{"A", "B", "C", "D", "E", "F"}))
		case "/magazine/kirara/2025/05/101/":
			fmt.Fprint(w, issuePage([]string{"B", "C", "D"}, []string{"A", "B", "C", "D", "E"}))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newPipeline(t *testing.T, srv *httptest.Server, st store.Store) *Pipeline {
	t.Helper()
	reg, err := magazine.NewRegistry([]magazine.Magazine{
		{Slug: "kirara", Style: magazine.StyleStandard, MonthAhead: 1},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	return New(Deps{
		Store:        st,
		Harvester:    harvest.New(srv.Client(), harvest.Options{BaseURL: srv.URL, Attempts: 1, Backoff: time.Millisecond}),
		Extractor:    extract.New(srv.Client(), extract.Options{Registry: reg, Attempts: 1, Backoff: time.Millisecond}),
		Registry:     reg,
		AliasFile:    filepath.Join(dir, "aliases.csv"),
		OverrideFile: filepath.Join(dir, "issues_fix.csv"),
		Workers:      3,
		FirstYear:    2025,
		Now:          func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) },
	})
}

func TestStagesEndToEnd(t *testing.T) {
	ctx := context.Background()
	srv := newSite(t)
	st := store.NewMemory()
	p := newPipeline(t, srv, st)

	urls, err := p.UpdateURLs(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 3 {
		t.Fatalf("urls = %+v", urls)
	}

	res, err := p.Scrape(ctx, issues.Selection{Start: 2025})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Issues.Load() != 2 || res.Stats.Failed.Load() != 1 || res.Stored["kirara"] != 11 {
		t.Errorf("scrape: %s, stored %v", res.Stats.String(), res.Stored)
	}

	// a second scrape finds the same rows and stores nothing new
	if res, err = p.Scrape(ctx, issues.Selection{}); err != nil || res.Stored["kirara"] != 11 {
		t.Errorf("rescrape stored %v, %v", res.Stored, err)
	}

	master, err := p.Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(master) != 11 || master[0].IssueID() != "kirara-2025-04" || !master[0].IsCover {
		t.Errorf("master = %+v", master)
	}

	warnings, err := p.Validate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || warnings[0].Type != table.WarnCenterCount || warnings[0].Detail != "3 作" {
		t.Fatalf("warnings = %+v", warnings)
	}

	added, err := p.Todo(ctx)
	if err != nil || len(added) != 1 {
		t.Fatalf("Todo = %+v, %v", added, err)
	}
	if again, _ := p.Todo(ctx); len(again) != 0 {
		t.Errorf("second Todo added %+v", again)
	}
}

func TestRunGatesOnValidation(t *testing.T) {
	ctx := context.Background()
	srv := newSite(t)
	p := newPipeline(t, srv, store.NewMemory())

	warnings, err := p.Run(ctx)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Run err = %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %+v", warnings)
	}

	// acknowledge the warning and run again
	if _, err := p.Todo(ctx); err != nil {
		t.Fatal(err)
	}
	ovs, err := p.LoadOverrides()
	if err != nil {
		t.Fatal(err)
	}
	for i := range ovs {
		ovs[i].Fixed = "OK"
	}
	if err := p.SaveOverrides(ovs); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Run(ctx); err != nil {
		t.Errorf("Run after ack: %v", err)
	}
}

func TestBuildStopsOnBadOverride(t *testing.T) {
	ctx := context.Background()
	srv := newSite(t)
	st := store.NewMemory()
	p := newPipeline(t, srv, st)

	if err := st.SaveRaw(ctx, "kirara", []table.IssueRow{{Year: 2025, Month: 4, Work: "A", Rank: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveMaster(ctx, []table.IssueRow{{Magazine: "kirara", Year: 2025, Month: 4, Work: "old", Rank: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := p.SaveOverrides([]table.OverrideEntry{{IssueID: "kirara-2025-04", Field: "colour", Fixed: "OK"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Build(ctx); !errors.Is(err, merge.ErrBadOverride) {
		t.Fatalf("Build err = %v", err)
	}

	// the previous master is left untouched
	master, _ := st.LoadMaster(ctx)
	if len(master) != 1 || master[0].Work != "old" {
		t.Errorf("master changed: %+v", master)
	}
}

func TestUpdateURLsRejectsUnknownMagazine(t *testing.T) {
	p := newPipeline(t, newSite(t), store.NewMemory())
	if _, err := p.UpdateURLs(context.Background(), []string{"kirara-ultra"}); err == nil {
		t.Error("expected error")
	}
}
