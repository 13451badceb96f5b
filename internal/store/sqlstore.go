package store

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brogergvhs/kirarank/internal/table"
)

// SQLStore keeps the tables in sqlite, MySQL or PostgreSQL. Saves replace a
// whole table (or one magazine's raw rows) inside a transaction; a seq
// column preserves row order.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

var sqlDrivers = map[string]string{
	DriverSQLite:   "sqlite3",
	DriverMySQL:    "mysql",
	DriverPostgres: "pgx",
}

// rank is reserved in MySQL, hence work_rank. The names match the db tags
// on table.IssueRow.
const rowColumns = "magazine, issue_year, issue_month, url, work, work_rank, is_cover, is_top, is_center, heuristic"

// rawRecord and masterRecord are the insert shapes of the row tables.
type rawRecord struct {
	StoreKey string `db:"store_key"`
	Seq      int    `db:"seq"`
	table.IssueRow
}

type masterRecord struct {
	Seq int `db:"seq"`
	table.MasterRow
}

type urlRecord struct {
	Seq int `db:"seq"`
	table.URLEntry
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS issue_urls (
		seq INTEGER NOT NULL,
		magazine VARCHAR(64) NOT NULL,
		issue_year INTEGER NOT NULL,
		issue_month INTEGER NOT NULL,
		url VARCHAR(512) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS raw_rows (
		store_key VARCHAR(64) NOT NULL,
		seq INTEGER NOT NULL,
		magazine VARCHAR(64) NOT NULL,
		issue_year INTEGER NOT NULL,
		issue_month INTEGER NOT NULL,
		url VARCHAR(512) NOT NULL,
		work VARCHAR(255) NOT NULL,
		work_rank INTEGER NOT NULL,
		is_cover BOOLEAN NOT NULL,
		is_top BOOLEAN NOT NULL,
		is_center BOOLEAN NOT NULL,
		heuristic VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS master_rows (
		seq INTEGER NOT NULL,
		issue_id VARCHAR(96) NOT NULL,
		magazine VARCHAR(64) NOT NULL,
		issue_year INTEGER NOT NULL,
		issue_month INTEGER NOT NULL,
		url VARCHAR(512) NOT NULL,
		work VARCHAR(255) NOT NULL,
		work_rank INTEGER NOT NULL,
		is_cover BOOLEAN NOT NULL,
		is_top BOOLEAN NOT NULL,
		is_center BOOLEAN NOT NULL,
		heuristic VARCHAR(64) NOT NULL
	)`,
}

// OpenSQL connects with the given store driver name (sqlite, mysql,
// postgres) and creates the tables if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	name, ok := sqlDrivers[driver]
	if !ok {
		return nil, fmt.Errorf("unknown sql driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s store: empty dsn", driver)
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLStore{db: db}, nil
}

// namedValues turns a column list into the matching :name bind list.
func namedValues(cols string) string {
	names := strings.Split(cols, ", ")
	for i, n := range names {
		names[i] = ":" + n
	}
	return strings.Join(names, ", ")
}

func insertQuery(tbl, cols string) string {
	return "INSERT INTO " + tbl + " (" + cols + ") VALUES (" + namedValues(cols) + ")"
}

// replace clears a table (or part of it) and inserts records in one
// transaction. Queries use ? binds and are rebound for the driver.
func replace[T any](ctx context.Context, db *sqlx.DB, del string, delArgs []any, ins string, records []T) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(del), delArgs...); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, ins)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func (s *SQLStore) LoadURLs(ctx context.Context) ([]table.URLEntry, error) {
	var out []table.URLEntry
	err := s.db.SelectContext(ctx, &out,
		"SELECT magazine, issue_year, issue_month, url FROM issue_urls ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("load urls: %w", err)
	}
	return out, nil
}

func (s *SQLStore) SaveURLs(ctx context.Context, urls []table.URLEntry) error {
	recs := make([]urlRecord, len(urls))
	for i, u := range urls {
		recs[i] = urlRecord{Seq: i, URLEntry: u}
	}

	err := replace(ctx, s.db, "DELETE FROM issue_urls", nil,
		insertQuery("issue_urls", "seq, magazine, issue_year, issue_month, url"), recs)
	if err != nil {
		return fmt.Errorf("save urls: %w", err)
	}
	return nil
}

func (s *SQLStore) RawMagazines(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.db.SelectContext(ctx, &out, "SELECT DISTINCT store_key FROM raw_rows ORDER BY store_key"); err != nil {
		return nil, fmt.Errorf("list raw tables: %w", err)
	}
	return out, nil
}

func (s *SQLStore) LoadRaw(ctx context.Context, magazine string) ([]table.IssueRow, error) {
	var out []table.IssueRow
	err := s.db.SelectContext(ctx, &out,
		s.db.Rebind("SELECT "+rowColumns+" FROM raw_rows WHERE store_key = ? ORDER BY seq"), magazine)
	if err != nil {
		return nil, fmt.Errorf("load raw %s: %w", magazine, err)
	}
	return out, nil
}

func (s *SQLStore) SaveRaw(ctx context.Context, magazine string, rows []table.IssueRow) error {
	recs := make([]rawRecord, len(rows))
	for i, r := range rows {
		recs[i] = rawRecord{StoreKey: magazine, Seq: i, IssueRow: r}
	}

	err := replace(ctx, s.db, "DELETE FROM raw_rows WHERE store_key = ?", []any{magazine},
		insertQuery("raw_rows", "store_key, seq, "+rowColumns), recs)
	if err != nil {
		return fmt.Errorf("save raw %s: %w", magazine, err)
	}
	return nil
}

func (s *SQLStore) LoadMaster(ctx context.Context) ([]table.IssueRow, error) {
	var out []table.IssueRow
	if err := s.db.SelectContext(ctx, &out, "SELECT "+rowColumns+" FROM master_rows ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}
	return out, nil
}

func (s *SQLStore) SaveMaster(ctx context.Context, rows []table.IssueRow) error {
	recs := make([]masterRecord, len(rows))
	for i, r := range rows {
		recs[i] = masterRecord{Seq: i, MasterRow: table.MasterRow{IssueRow: r, IssueID: r.IssueID()}}
	}

	err := replace(ctx, s.db, "DELETE FROM master_rows", nil,
		insertQuery("master_rows", "seq, issue_id, "+rowColumns), recs)
	if err != nil {
		return fmt.Errorf("save master: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
