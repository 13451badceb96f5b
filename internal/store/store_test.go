package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/brogergvhs/kirarank/internal/table"
)

func sampleRows() []table.IssueRow {
	return []table.IssueRow{
		{Magazine: "kirara", Year: 2024, Month: 5, URL: "u1", Work: "B", Rank: 2, IsCenter: true},
		{Magazine: "kirara", Year: 2024, Month: 5, URL: "u1", Work: "A", Rank: 1, IsCover: true, IsTop: true, Heuristic: table.HeuristicCoverFromTop},
	}
}

func sampleURLs() []table.URLEntry {
	return []table.URLEntry{
		{Magazine: "kirara", Year: 2024, Month: 5, URL: "https://example.com/magazine/kirara/2024/05/1/"},
		{Magazine: "kirara-max", Year: 2024, Month: 6, URL: "https://example.com/magazine/kirara-max/2024/06/2/"},
	}
}

// exercise runs the same round trips against any backend.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	urls, err := s.LoadURLs(ctx)
	if err != nil || len(urls) != 0 {
		t.Fatalf("empty LoadURLs = %v, %v", urls, err)
	}

	if err := s.SaveURLs(ctx, sampleURLs()); err != nil {
		t.Fatalf("SaveURLs: %v", err)
	}
	urls, err = s.LoadURLs(ctx)
	if err != nil {
		t.Fatalf("LoadURLs: %v", err)
	}
	if !reflect.DeepEqual(urls, sampleURLs()) {
		t.Errorf("urls = %+v", urls)
	}

	if err := s.SaveRaw(ctx, "kirara", sampleRows()); err != nil {
		t.Fatalf("SaveRaw: %v", err)
	}
	if err := s.SaveRaw(ctx, "kirara-max", nil); err != nil {
		t.Fatalf("SaveRaw empty: %v", err)
	}
	raw, err := s.LoadRaw(ctx, "kirara")
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if !reflect.DeepEqual(raw, sampleRows()) {
		t.Errorf("raw = %+v", raw)
	}

	// saving again replaces rather than appends
	if err := s.SaveRaw(ctx, "kirara", sampleRows()[:1]); err != nil {
		t.Fatalf("SaveRaw: %v", err)
	}
	raw, _ = s.LoadRaw(ctx, "kirara")
	if len(raw) != 1 {
		t.Errorf("raw after replace has %d rows", len(raw))
	}

	if err := s.SaveMaster(ctx, sampleRows()); err != nil {
		t.Fatalf("SaveMaster: %v", err)
	}
	master, err := s.LoadMaster(ctx)
	if err != nil {
		t.Fatalf("LoadMaster: %v", err)
	}
	if !reflect.DeepEqual(master, sampleRows()) {
		t.Errorf("master = %+v", master)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	exercise(t, s)

	mags, _ := s.RawMagazines(context.Background())
	if !reflect.DeepEqual(mags, []string{"kirara", "kirara-max"}) {
		t.Errorf("RawMagazines = %v", mags)
	}
}

func TestCSVStore(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(filepath.Join(dir, "urls.csv"), filepath.Join(dir, "raw"), filepath.Join(dir, "master.csv"))
	exercise(t, s)

	mags, err := s.RawMagazines(context.Background())
	if err != nil {
		t.Fatalf("RawMagazines: %v", err)
	}
	if !reflect.DeepEqual(mags, []string{"kirara", "kirara-max"}) {
		t.Errorf("RawMagazines = %v", mags)
	}

	if _, err := os.Stat(filepath.Join(dir, "raw", "kirara.csv")); err != nil {
		t.Errorf("raw file missing: %v", err)
	}
}

func TestCSVStoreMissingRawDir(t *testing.T) {
	s := NewCSV("", filepath.Join(t.TempDir(), "nope"), "")
	mags, err := s.RawMagazines(context.Background())
	if err != nil || mags != nil {
		t.Errorf("RawMagazines = %v, %v", mags, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Options{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "kirarank.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	exercise(t, s)

	mags, err := s.RawMagazines(ctx)
	if err != nil {
		t.Fatalf("RawMagazines: %v", err)
	}
	// an empty save leaves no rows behind for that key
	if !reflect.DeepEqual(mags, []string{"kirara"}) {
		t.Errorf("RawMagazines = %v", mags)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "mongo"}); err == nil {
		t.Error("expected error")
	}
}

func TestBindTypes(t *testing.T) {
	cases := map[string]int{
		DriverSQLite:   sqlx.QUESTION,
		DriverMySQL:    sqlx.QUESTION,
		DriverPostgres: sqlx.DOLLAR,
	}
	for driver, want := range cases {
		if got := sqlx.BindType(sqlDrivers[driver]); got != want {
			t.Errorf("%s bind type = %d, want %d", driver, got, want)
		}
	}

	q := sqlx.Rebind(sqlx.DOLLAR, "DELETE FROM raw_rows WHERE store_key = ? AND seq > ?")
	if q != "DELETE FROM raw_rows WHERE store_key = $1 AND seq > $2" {
		t.Errorf("postgres rebind = %q", q)
	}
}

func TestInsertQuery(t *testing.T) {
	got := insertQuery("issue_urls", "seq, magazine, issue_year, issue_month, url")
	want := "INSERT INTO issue_urls (seq, magazine, issue_year, issue_month, url) VALUES (:seq, :magazine, :issue_year, :issue_month, :url)"
	if got != want {
		t.Errorf("insertQuery = %q", got)
	}
}
