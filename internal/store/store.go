// Package store persists the machine-written tables of the pipeline: the
// issue URL list, one raw table per magazine and the master table. The
// merge and validation logic only sees the Store interface, so the same run
// can target CSV files, an embedded database or memory.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/brogergvhs/kirarank/internal/table"
)

type Store interface {
	LoadURLs(ctx context.Context) ([]table.URLEntry, error)
	SaveURLs(ctx context.Context, urls []table.URLEntry) error

	// RawMagazines lists the keys of the raw tables that exist, sorted.
	RawMagazines(ctx context.Context) ([]string, error)
	LoadRaw(ctx context.Context, magazine string) ([]table.IssueRow, error)
	SaveRaw(ctx context.Context, magazine string, rows []table.IssueRow) error

	LoadMaster(ctx context.Context) ([]table.IssueRow, error)
	SaveMaster(ctx context.Context, rows []table.IssueRow) error

	Close() error
}

// Drivers accepted by Open.
const (
	DriverCSV      = "csv"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver string
	DSN    string

	// csv driver paths
	URLFile    string
	RawDir     string
	MasterFile string
}

func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverCSV:
		return NewCSV(opts.URLFile, opts.RawDir, opts.MasterFile), nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, DriverMySQL, DriverPostgres:
		return OpenSQL(ctx, strings.ToLower(opts.Driver), opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
