package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brogergvhs/kirarank/internal/table"
)

// CSVStore keeps each table in a UTF-8 (BOM) CSV file: the URL list, one
// <magazine>.csv per raw table under RawDir, and the master table.
type CSVStore struct {
	URLFile    string
	RawDir     string
	MasterFile string
}

var _ Store = (*CSVStore)(nil)

func NewCSV(urlFile, rawDir, masterFile string) *CSVStore {
	return &CSVStore{URLFile: urlFile, RawDir: rawDir, MasterFile: masterFile}
}

func (s *CSVStore) rawPath(magazine string) string {
	return filepath.Join(s.RawDir, magazine+".csv")
}

func (s *CSVStore) LoadURLs(_ context.Context) ([]table.URLEntry, error) {
	return table.ReadFileIfExists[table.URLEntry](s.URLFile)
}

func (s *CSVStore) SaveURLs(_ context.Context, urls []table.URLEntry) error {
	return table.WriteFile(s.URLFile, urls)
}

func (s *CSVStore) RawMagazines(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.RawDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read raw dir %s: %w", s.RawDir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(out)

	return out, nil
}

func (s *CSVStore) LoadRaw(_ context.Context, magazine string) ([]table.IssueRow, error) {
	return table.ReadFileIfExists[table.IssueRow](s.rawPath(magazine))
}

func (s *CSVStore) SaveRaw(_ context.Context, magazine string, rows []table.IssueRow) error {
	return table.WriteFile(s.rawPath(magazine), rows)
}

func (s *CSVStore) LoadMaster(_ context.Context) ([]table.IssueRow, error) {
	rows, err := table.ReadFileIfExists[table.MasterRow](s.MasterFile)
	if err != nil {
		return nil, err
	}
	return table.FromMaster(rows), nil
}

func (s *CSVStore) SaveMaster(_ context.Context, rows []table.IssueRow) error {
	return table.WriteFile(s.MasterFile, table.ToMaster(rows))
}

func (s *CSVStore) Close() error { return nil }
