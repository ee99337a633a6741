/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package registry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

const createDevicesTable = `
CREATE TABLE IF NOT EXISTS devices (
    hostname        TEXT PRIMARY KEY,
    source_address  TEXT NOT NULL,
    last_seen_at    TIMESTAMPTZ NOT NULL
)`

// PGStore persists registry records in Postgres. The single-row upsert via
// ON CONFLICT gives the per-hostname atomicity the registry requires.
type PGStore struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewPGStore dials the configured database and ensures the schema exists.
func NewPGStore(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (*PGStore, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	connURL := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", cfg.Host, port),
		Path:     "/" + cfg.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}

	if cfg.Username != "" {
		if cfg.Password != "" {
			connURL.User = url.UserPassword(cfg.Username, cfg.Password)
		} else {
			connURL.User = url.User(cfg.Username)
		}
	}

	poolConfig, err := pgxpool.ParseConfig(connURL.String())
	if err != nil {
		return nil, fmt.Errorf("registry db: failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("registry db: failed to initialize pool: %w", err)
	}

	if _, err := pool.Exec(ctx, createDevicesTable); err != nil {
		pool.Close()

		return nil, fmt.Errorf("registry db: failed to ensure schema: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", port).
		Str("database", cfg.Database).
		Msg("connected to registry database")

	return &PGStore{pool: pool, logger: log}, nil
}

func (s *PGStore) Upsert(ctx context.Context, record *models.RegistryRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (hostname, source_address, last_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (hostname) DO UPDATE SET
			source_address = EXCLUDED.source_address,
			last_seen_at = EXCLUDED.last_seen_at`,
		record.Hostname, record.SourceAddress, record.LastSeenAt)
	if err != nil {
		return fmt.Errorf("registry db: upsert %s: %w", record.Hostname, err)
	}

	return nil
}

func (s *PGStore) Get(ctx context.Context, hostname string) (*models.RegistryRecord, error) {
	var record models.RegistryRecord

	err := s.pool.QueryRow(ctx, `
		SELECT hostname, source_address, last_seen_at
		FROM devices WHERE hostname = $1`, hostname).
		Scan(&record.Hostname, &record.SourceAddress, &record.LastSeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("registry db: get %s: %w", hostname, err)
	}

	return &record, nil
}

func (s *PGStore) List(ctx context.Context) ([]*models.RegistryRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT hostname, source_address, last_seen_at
		FROM devices
		ORDER BY last_seen_at DESC, hostname ASC`)
	if err != nil {
		return nil, fmt.Errorf("registry db: list: %w", err)
	}
	defer rows.Close()

	var records []*models.RegistryRecord

	for rows.Next() {
		var record models.RegistryRecord

		if err := rows.Scan(&record.Hostname, &record.SourceAddress, &record.LastSeenAt); err != nil {
			return nil, fmt.Errorf("registry db: list scan: %w", err)
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry db: list rows: %w", err)
	}

	return records, nil
}

// Sweep deletes stale and synthetic records in one statement so concurrent
// upserts never observe a partial sweep.
func (s *PGStore) Sweep(ctx context.Context, cutoff time.Time, syntheticPattern string) (int, error) {
	var (
		tag pgconn.CommandTag
		err error
	)

	if syntheticPattern != "" {
		tag, err = s.pool.Exec(ctx, `
			DELETE FROM devices
			WHERE last_seen_at < $1 OR hostname ~ $2`, cutoff, syntheticPattern)
	} else {
		tag, err = s.pool.Exec(ctx, `
			DELETE FROM devices WHERE last_seen_at < $1`, cutoff)
	}

	if err != nil {
		return 0, fmt.Errorf("registry db: sweep: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (s *PGStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM devices`); err != nil {
		return fmt.Errorf("registry db: reset: %w", err)
	}

	return nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}
