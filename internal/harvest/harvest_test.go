package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/brogergvhs/kirarank/internal/magazine"
	"github.com/brogergvhs/kirarank/internal/table"
)

const indexPage = `<html><body>
<a href="/magazine/kirara-max/2025/10/12600/">10月号</a>
<a href="https://www.dokidokivisual.com/magazine/kirara-max/2025/10/12600/">10月号</a>
<a href="/magazine/kirara-max/2025/12/12720/">11月号</a>
<a href="/magazine/kirara/2025/10/12601/">other magazine</a>
<a href="/magazine/kirara-max/2025/">index</a>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/magazine/kirara-max/2025/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, indexPage)
	})
	mux.HandleFunc("/magazine/kirara-max/2024/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHarvestExtractsAndFixesMonths(t *testing.T) {
	srv := newServer(t)
	fixes := magazine.NewMonthFixes([]magazine.MonthFix{
		{URL: srv.URL + "/magazine/kirara-max/2025/12/12720/", Month: 11},
	})
	h := New(srv.Client(), Options{BaseURL: srv.URL, Fixes: fixes, Backoff: time.Millisecond})

	got := h.Harvest(context.Background(), "kirara-max", 2025)
	want := []table.URLEntry{
		{Magazine: "kirara-max", Year: 2025, Month: 10, URL: srv.URL + "/magazine/kirara-max/2025/10/12600/"},
		{Magazine: "kirara-max", Year: 2025, Month: 11, URL: srv.URL + "/magazine/kirara-max/2025/12/12720/"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Harvest =\n%+v\nwant\n%+v", got, want)
	}
}

func TestHarvestSoftFails(t *testing.T) {
	srv := newServer(t)
	h := New(srv.Client(), Options{BaseURL: srv.URL, Attempts: 1, Backoff: time.Millisecond})

	if got := h.Harvest(context.Background(), "kirara-max", 2024); len(got) != 0 {
		t.Errorf("404 page gave %v", got)
	}

	dead := New(http.DefaultClient, Options{BaseURL: "http://127.0.0.1:1", Attempts: 1, Backoff: time.Millisecond})
	if got := dead.Harvest(context.Background(), "kirara", 2024); len(got) != 0 {
		t.Errorf("unreachable host gave %v", got)
	}
}

func TestHarvestRangeIsolatesFailures(t *testing.T) {
	srv := newServer(t)
	h := New(srv.Client(), Options{BaseURL: srv.URL, Attempts: 1, Backoff: time.Millisecond})

	got := h.HarvestRange(context.Background(), []string{"kirara-max"}, []int{2024, 2025})
	if len(got) != 2 {
		t.Errorf("HarvestRange returned %d entries, want 2", len(got))
	}
}

func TestYearWindow(t *testing.T) {
	now := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)

	if got := YearWindow(2023, 1, now); !reflect.DeepEqual(got, []int{2023, 2024, 2025}) {
		t.Errorf("month_ahead=1: %v", got)
	}
	if got := YearWindow(2023, 2, now); !reflect.DeepEqual(got, []int{2023, 2024, 2025, 2026}) {
		t.Errorf("month_ahead=2: %v", got)
	}
}

func TestMergeURLs(t *testing.T) {
	bad := "https://www.dokidokivisual.com/magazine/kirara-max/2025/12/12720/"
	existing := []table.URLEntry{
		{Magazine: "kirara", Year: 2024, Month: 2, URL: "u-b"},
		{Magazine: "kirara-max", Year: 2025, Month: 12, URL: bad},
	}
	fresh := []table.URLEntry{
		{Magazine: "kirara", Year: 2024, Month: 2, URL: "u-b"},
		{Magazine: "kirara", Year: 2024, Month: 1, URL: "u-a"},
		{Magazine: "kirara", Year: 2024, Month: 2, URL: "u-a2"},
	}

	got := MergeURLs(existing, fresh, magazine.DefaultMonthFixes())
	want := []table.URLEntry{
		{Magazine: "kirara", Year: 2024, Month: 1, URL: "u-a"},
		{Magazine: "kirara", Year: 2024, Month: 2, URL: "u-a2"},
		{Magazine: "kirara", Year: 2024, Month: 2, URL: "u-b"},
		{Magazine: "kirara-max", Year: 2025, Month: 11, URL: bad},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeURLs =\n%+v\nwant\n%+v", got, want)
	}

	// merging the result again changes nothing
	if again := MergeURLs(got, fresh, magazine.DefaultMonthFixes()); !reflect.DeepEqual(again, want) {
		t.Errorf("second merge = %+v", again)
	}
}
