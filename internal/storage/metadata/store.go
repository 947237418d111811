// Package metadata implements the MetadataStore contract: the system of
// record for canonical declaration records, backed by Postgres via pgx.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtxml/declarations/internal/canonical"
)

var ErrRecordNotFound = errors.New("declaration record not found")

// Store is the MetadataStore contract used by the ingestion pipeline and the
// retrieval layer to persist and fetch canonical records.
type Store interface {
	SaveRecord(ctx context.Context, rec *canonical.CanonicalRecord) error
	GetRecord(ctx context.Context, declarationID string) (*canonical.CanonicalRecord, error)
	DeleteByDeclarationID(ctx context.Context, declarationID string) error
}

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection to dsn, pings it, and runs migrations.
func Connect(ctx context.Context, dsn string) (*PostgresStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("metadata: create connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		return nil, fmt.Errorf("metadata: ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping reports whether the database connection is reachable, used by the
// health endpoint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "create_declarations",
			sql: `CREATE TABLE IF NOT EXISTS declarations (
				declaration_id TEXT PRIMARY KEY,
				tenant_id TEXT NOT NULL,
				declaration_type TEXT NOT NULL,
				status TEXT NOT NULL,
				date_issued TIMESTAMPTZ,
				payload JSONB NOT NULL,
				created_at TIMESTAMPTZ DEFAULT now(),
				updated_at TIMESTAMPTZ DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_declarations_tenant_id ON declarations(tenant_id);
			CREATE INDEX IF NOT EXISTS idx_declarations_date_issued ON declarations(date_issued);`,
		},
	}

	for _, m := range migrations {
		if _, err := s.pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("metadata: migration %s failed: %w", m.name, err)
		}
	}
	return nil
}

// SaveRecord upserts the canonical record, keyed by DeclarationID.
func (s *PostgresStore) SaveRecord(ctx context.Context, rec *canonical.CanonicalRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("metadata: marshal record: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO declarations (declaration_id, tenant_id, declaration_type, status, date_issued, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (declaration_id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			declaration_type = EXCLUDED.declaration_type,
			status = EXCLUDED.status,
			date_issued = EXCLUDED.date_issued,
			payload = EXCLUDED.payload,
			updated_at = now()
	`, rec.DeclarationID, rec.TenantID, rec.DeclarationType, rec.Status, rec.DateIssued, payload)
	if err != nil {
		return fmt.Errorf("metadata: save record: %w", err)
	}
	return nil
}

// GetRecord fetches a canonical record by its declaration ID.
func (s *PostgresStore) GetRecord(ctx context.Context, declarationID string) (*canonical.CanonicalRecord, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM declarations WHERE declaration_id = $1`, declarationID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("metadata: get record: %w", err)
	}

	var rec canonical.CanonicalRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("metadata: unmarshal record: %w", err)
	}
	return &rec, nil
}

// DeleteByDeclarationID removes a declaration's metadata row.
func (s *PostgresStore) DeleteByDeclarationID(ctx context.Context, declarationID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM declarations WHERE declaration_id = $1`, declarationID)
	if err != nil {
		return fmt.Errorf("metadata: delete record: %w", err)
	}
	return nil
}
