package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/contexta-ingest/internal/config"
	"github.com/markdave123-py/contexta-ingest/internal/models"
)

var (
	// ErrNamespaceNotFound is returned when writing into an index/namespace that was never created.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrDimensionMismatch is returned when a vector does not match its namespace's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

var _ DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends verify-ca SSL parameters when a root certificate is configured.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Upsert writes records in a single transaction, overwriting rows with the same ID.
func (c *DatabaseClient) Upsert(ctx context.Context, indexName, namespace string, records []models.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var dim int
	err = tx.QueryRowContext(ctx,
		`SELECT dimension FROM vector_namespaces WHERE index_name = $1 AND namespace = $2`,
		indexName, namespace).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNamespaceNotFound, indexName, namespace)
	}
	if err != nil {
		return fmt.Errorf("lookup namespace: %w", err)
	}
	if err := checkDimensions(records, dim); err != nil {
		return err
	}

	const q = `
		INSERT INTO vector_records (index_name, namespace, id, embedding, metadata, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, now())
		ON CONFLICT (index_name, namespace, id)
		DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, updated_at = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata for %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			indexName, namespace, rec.ID, pgvector.NewVector(rec.Vector), string(meta),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// checkDimensions enforces dim on every record; 0 means the namespace accepts any dimension.
func checkDimensions(records []models.IndexRecord, dim int) error {
	if dim <= 0 {
		return nil
	}
	for _, r := range records {
		if len(r.Vector) != dim {
			return fmt.Errorf("%w: %s has %d, namespace wants %d", ErrDimensionMismatch, r.ID, len(r.Vector), dim)
		}
	}
	return nil
}

func (c *DatabaseClient) CreateNamespace(ctx context.Context, indexName, namespace string, dimension int) error {
	if indexName == "" || namespace == "" {
		return errors.New("index name and namespace are required")
	}
	const q = `
		INSERT INTO vector_namespaces (index_name, namespace, dimension)
		VALUES ($1, $2, $3)
		ON CONFLICT (index_name, namespace) DO NOTHING
	`
	_, err := c.db.ExecContext(ctx, q, indexName, namespace, dimension)
	return err
}

func (c *DatabaseClient) ListNamespaces(ctx context.Context) ([]models.Namespace, error) {
	const q = `
		SELECT index_name, namespace, dimension, created_at
		FROM vector_namespaces
		ORDER BY index_name, namespace
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Namespace
	for rows.Next() {
		var ns models.Namespace
		if err := rows.Scan(&ns.IndexName, &ns.Namespace, &ns.Dimension, &ns.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CountRecords(ctx context.Context, indexName, namespace string) (int, error) {
	const q = `SELECT count(*) FROM vector_records WHERE index_name = $1 AND namespace = $2`
	var n int
	if err := c.db.QueryRowContext(ctx, q, indexName, namespace).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
