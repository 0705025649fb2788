package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// migration is one versioned, forward-only schema change. Statements run
// inside a single transaction together with the tracking-row insert, so
// the schema change and its record commit or roll back together.
// Rollback of an applied migration is intentionally unsupported.
type migration struct {
	version int
	name    string
	stmts   string
}

// migrations is the ordered list of schema versions. Append only; never
// edit an entry that has shipped, since its checksum is recorded in
// every existing database.
var migrations = []migration{
	{
		version: 1,
		name:    "operation log",
		stmts: `
			CREATE TABLE operations (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				document_id    TEXT    NOT NULL,
				operation_type TEXT    NOT NULL,
				block_id       TEXT    NOT NULL,
				operation_data TEXT    NOT NULL,
				applied_at     INTEGER NOT NULL,
				source         TEXT    NOT NULL,
				user_id        TEXT,
				checksum       TEXT    NOT NULL,
				batch_id       TEXT,
				request_id     TEXT,
				origin_data    TEXT    NOT NULL
			);
			CREATE INDEX idx_operations_document ON operations(document_id, id);
		`,
	},
	{
		version: 2,
		name:    "snapshots",
		stmts: `
			CREATE TABLE snapshots (
				id              TEXT PRIMARY KEY,
				document_id     TEXT    NOT NULL,
				snapshot_data   BLOB    NOT NULL,
				created_at      INTEGER NOT NULL,
				operation_count INTEGER NOT NULL
			);
			CREATE INDEX idx_snapshots_document ON snapshots(document_id, created_at DESC);
		`,
	},
	{
		version: 3,
		name:    "document metadata",
		stmts: `
			CREATE TABLE documents (
				id          TEXT PRIMARY KEY,
				title       TEXT    NOT NULL DEFAULT '',
				created_at  INTEGER NOT NULL,
				updated_at  INTEGER NOT NULL,
				block_count INTEGER NOT NULL DEFAULT 0
			);
		`,
	},
	{
		version: 4,
		name:    "batch lookup index",
		stmts: `
			CREATE INDEX idx_operations_batch ON operations(batch_id) WHERE batch_id IS NOT NULL;
		`,
	},
}

// runMigrations applies every migration past the recorded version.
func runMigrations(db *sql.DB) error {
	applied, err := appliedVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= applied {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

// appliedVersion returns the highest recorded migration version, 0 for a
// fresh database.
func appliedVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// applyMigration runs one migration and its tracking insert in a single
// transaction.
func applyMigration(db *sql.DB, m migration) error {
	start := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(m.stmts); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO schema_migrations (version, checksum, applied_at, duration_ms)
		VALUES (?, ?, ?, ?)
	`,
		m.version,
		migrationChecksum(m),
		start.UnixMilli(),
		time.Since(start).Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// migrationChecksum computes the SHA-256 of a migration's statements,
// recorded so drift in shipped migration text is detectable by tooling.
func migrationChecksum(m migration) string {
	h := sha256.Sum256([]byte(m.stmts))
	return hex.EncodeToString(h[:])
}

// MigrationRecord is one row of the schema_migrations tracking table.
type MigrationRecord struct {
	Version    int
	Checksum   string
	AppliedAt  int64
	DurationMS int64
}

// Migrations returns the applied migration records in version order.
func (s *Store) Migrations() ([]MigrationRecord, error) {
	rows, err := s.db.Query(`
		SELECT version, checksum, applied_at, duration_ms
		FROM schema_migrations
		ORDER BY version ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var r MigrationRecord
		if err := rows.Scan(&r.Version, &r.Checksum, &r.AppliedAt, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migrations: %w", err)
	}

	return records, nil
}
