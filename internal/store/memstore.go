package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/brogergvhs/kirarank/internal/table"
)

// MemoryStore keeps tables in process; every Load returns a copy.
type MemoryStore struct {
	mu     sync.Mutex
	urls   []table.URLEntry
	raw    map[string][]table.IssueRow
	master []table.IssueRow
}

var _ Store = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{raw: make(map[string][]table.IssueRow)}
}

func (m *MemoryStore) LoadURLs(_ context.Context) ([]table.URLEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.urls), nil
}

func (m *MemoryStore) SaveURLs(_ context.Context, urls []table.URLEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = slices.Clone(urls)
	return nil
}

func (m *MemoryStore) RawMagazines(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.raw))
	for k := range m.raw {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryStore) LoadRaw(_ context.Context, magazine string) ([]table.IssueRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.raw[magazine]), nil
}

func (m *MemoryStore) SaveRaw(_ context.Context, magazine string, rows []table.IssueRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw[magazine] = slices.Clone(rows)
	return nil
}

func (m *MemoryStore) LoadMaster(_ context.Context) ([]table.IssueRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.master), nil
}

func (m *MemoryStore) SaveMaster(_ context.Context, rows []table.IssueRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = slices.Clone(rows)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
