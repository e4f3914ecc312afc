package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fontrake/fontrake/internal/model"
)

// DB provides SQLite-based storage for discovery runs.
// It manages connection pooling and provides methods for saving and
// querying runs.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created. Otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, "fontrake.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY churn without hurting this workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *DB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *DB) createTables() error {
	schema := `
	-- Discovery runs store one scan's full result as JSON
	CREATE TABLE IF NOT EXISTS discovery_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		font_count INTEGER NOT NULL,
		family_count INTEGER NOT NULL,
		records_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON discovery_runs(site);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON discovery_runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one stored discovery run.
type Run struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Site is the scanned site reference.
	Site string

	// Timestamp is when the discovery was performed.
	Timestamp time.Time

	// FontCount is the number of records discovered.
	FontCount int

	// FamilyCount is the number of distinct families in the run.
	FamilyCount int

	// Records holds the discovered records. Only populated by GetRun;
	// listing queries leave it nil.
	Records []model.FontRecord
}

// SaveRun stores one discovery result and returns its database ID.
func (hdb *DB) SaveRun(ctx context.Context, site string, records []model.FontRecord, familyCount int) (int64, error) {
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize records: %w", err)
	}

	query := `
	INSERT INTO discovery_runs (site, font_count, family_count, records_json)
	VALUES (?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		site,
		len(records),
		familyCount,
		string(recordsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save discovery run: %w", err)
	}

	return result.LastInsertId()
}

// ListRuns returns run summaries, newest first. When site is non-empty
// only that site's runs are returned. Records are not loaded.
func (hdb *DB) ListRuns(ctx context.Context, site string, limit int) ([]Run, error) {
	query := `
	SELECT id, site, timestamp, font_count, family_count
	FROM discovery_runs
	`
	args := make([]any, 0, 2)

	if site != "" {
		query += " WHERE site = ?"
		args = append(args, site)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var timestamp string

		if err := rows.Scan(&run.ID, &run.Site, &timestamp, &run.FontCount, &run.FamilyCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Timestamp = parseTimestamp(timestamp)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves one run by ID, including its full record list.
// A missing run returns (nil, nil).
func (hdb *DB) GetRun(ctx context.Context, id int64) (*Run, error) {
	query := `
	SELECT id, site, timestamp, font_count, family_count, records_json
	FROM discovery_runs
	WHERE id = ?
	`

	var run Run
	var timestamp, recordsJSON string

	err := hdb.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Site,
		&timestamp,
		&run.FontCount,
		&run.FamilyCount,
		&recordsJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = parseTimestamp(timestamp)
	if err := json.Unmarshal([]byte(recordsJSON), &run.Records); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	return &run, nil
}

// ListSites returns every site with at least one stored run, sorted.
func (hdb *DB) ListSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT site FROM discovery_runs
	ORDER BY site
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
