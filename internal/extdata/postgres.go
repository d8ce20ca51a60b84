// Package extdata is the reference implementation of
// validate.ExternalDataSource: a Postgres-backed cache of GLEIF LEI
// status and national-registry lookups. The engine itself never
// performs network I/O (see spec §6.2); populating and refreshing these
// cache tables from GLEIF's Level 1 data and national registries is the
// caller's responsibility, run out-of-band from any engine call.
package extdata

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/omtsf-engine/internal/validate"
)

// PostgresSource caches external registry data in Postgres and serves
// validate.ExternalDataSource lookups from that cache. A miss is not an
// error: it means the engine's caller hasn't ingested that identifier
// yet, and L3 rules treat a not-found record as "cannot verify" rather
// than "verification failed".
type PostgresSource struct {
	pool *pgxpool.Pool
}

// Connect opens the connection pool backing a PostgresSource.
func Connect(ctx context.Context, connStr string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("extdata: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("extdata: ping: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql, creating the cache tables if
// they don't already exist.
func (s *PostgresSource) InitSchema(ctx context.Context) error {
	schemaBytes, err := os.ReadFile("internal/extdata/schema.sql")
	if err != nil {
		return fmt.Errorf("extdata: read schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("extdata: apply schema: %w", err)
	}
	return nil
}

// LEIStatus implements validate.ExternalDataSource.
func (s *PostgresSource) LEIStatus(ctx context.Context, lei string) (validate.LEIRecord, error) {
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT status FROM lei_registry_cache WHERE lei = $1`, lei,
	).Scan(&status)
	if err != nil {
		if isNoRows(err) {
			return validate.LEIRecord{Found: false}, nil
		}
		return validate.LEIRecord{}, fmt.Errorf("extdata: lei_status: %w", err)
	}
	return validate.LEIRecord{Found: true, Status: status}, nil
}

// NatRegLookup implements validate.ExternalDataSource.
func (s *PostgresSource) NatRegLookup(ctx context.Context, authority, value string) (validate.NatRegRecord, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT entity_name FROM nat_reg_cache WHERE authority = $1 AND registry_value = $2`,
		authority, value,
	).Scan(&name)
	if err != nil {
		if isNoRows(err) {
			return validate.NatRegRecord{Found: false}, nil
		}
		return validate.NatRegRecord{}, fmt.Errorf("extdata: nat_reg_lookup: %w", err)
	}
	return validate.NatRegRecord{Found: true, Name: name}, nil
}

// UpsertLEIStatus records or refreshes one cached GLEIF status, the
// write side of the cache an out-of-band ingestion job drives.
func (s *PostgresSource) UpsertLEIStatus(ctx context.Context, lei, status string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lei_registry_cache (lei, status, last_refreshed)
		VALUES ($1, $2, NOW())
		ON CONFLICT (lei) DO UPDATE
		SET status = EXCLUDED.status, last_refreshed = NOW()
	`, lei, status)
	if err != nil {
		return fmt.Errorf("extdata: upsert lei status: %w", err)
	}
	return nil
}

// UpsertNatRegRecord records or refreshes one cached national-registry
// entry.
func (s *PostgresSource) UpsertNatRegRecord(ctx context.Context, authority, value, entityName string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO nat_reg_cache (authority, registry_value, entity_name, last_refreshed)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (authority, registry_value) DO UPDATE
		SET entity_name = EXCLUDED.entity_name, last_refreshed = NOW()
	`, authority, value, entityName)
	if err != nil {
		return fmt.Errorf("extdata: upsert nat_reg record: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
