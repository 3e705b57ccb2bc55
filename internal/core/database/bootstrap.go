package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

// schemaVersion is recorded in contexta_meta once scripts/initdb.sql has been applied.
// Bump it whenever the script changes so existing databases pick the change up.
const schemaVersion = 1

// EnsureBootstrapped applies scripts/initdb.sql unless schemaVersion is already recorded.
func EnsureBootstrapped(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	applied, err := schemaApplied(ctx, db, schemaVersion)
	if err != nil {
		return err
	}
	if applied {
		slog.Debug("schema already bootstrapped", "version", schemaVersion)
		return nil
	}
	return applySchema(ctx, db, schemaVersion)
}

func schemaApplied(ctx context.Context, db *sql.DB, version int) (bool, error) {
	var metaExists bool
	if err := db.QueryRowContext(ctx,
		`SELECT to_regclass('contexta_meta') IS NOT NULL`).Scan(&metaExists); err != nil {
		return false, fmt.Errorf("meta table check: %w", err)
	}
	if !metaExists {
		return false, nil
	}

	var applied bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM contexta_meta WHERE version = $1)`, version).Scan(&applied); err != nil {
		return false, fmt.Errorf("meta version check: %w", err)
	}
	return applied, nil
}

// applySchema runs the script and records version in the same transaction.
func applySchema(ctx context.Context, db *sql.DB, version int) error {
	script, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("exec initdb.sql: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO contexta_meta (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`, version); err != nil {
		return fmt.Errorf("record schema version %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	slog.Info("schema bootstrapped", "version", version)
	return nil
}
