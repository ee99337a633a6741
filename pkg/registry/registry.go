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

// Package registry is the listener-side store of the most recent announcement
// per device. Ingest is last-write-wins keyed by hostname: the observed
// source address is trustworthy as of the moment of receipt, so there is no
// logical clock to compare against. That holds only while there is a single
// listener instance.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

const maxHostnameLength = 255

var (
	// ErrInvalidHostname indicates an announcement with an empty or malformed
	// hostname; the registry rejects it without touching any record.
	ErrInvalidHostname = errors.New("invalid hostname")

	// ErrStoreFailure indicates the backing store could not persist the
	// upsert; the ingest endpoint reports it as a failed attempt to the
	// announcer.
	ErrStoreFailure = errors.New("registry store failure")
)

// Config tunes record retention and the synthetic entry policy.
type Config struct {
	// Retention is how long a record may go unrefreshed before a sweep
	// removes it.
	Retention models.Duration `json:"retention"`

	// SweepInterval is the cadence of the background retention reaper. Zero
	// disables the background sweep; the admin command still works.
	SweepInterval models.Duration `json:"sweep_interval"`

	// SyntheticHostnamePattern is a regular expression naming hostnames that
	// are recognized as synthetic/test entries and purged by sweeps. Empty
	// disables the policy.
	SyntheticHostnamePattern string `json:"synthetic_hostname_pattern"`
}

const defaultRetention = 72 * time.Hour

// Validate fills defaults and compiles the synthetic pattern early, so a bad
// policy fails at startup rather than during the first sweep.
func (c *Config) Validate() error {
	if c.Retention <= 0 {
		c.Retention = models.Duration(defaultRetention)
	}

	if c.SyntheticHostnamePattern != "" {
		if _, err := regexp.Compile(c.SyntheticHostnamePattern); err != nil {
			return fmt.Errorf("synthetic_hostname_pattern: %w", err)
		}
	}

	return nil
}

// Registry validates, upserts, and expires announcement records.
type Registry struct {
	store  Store
	cfg    *Config
	events EventSink
	logger logger.Logger
	now    func() time.Time
}

func New(store Store, cfg *Config, events EventSink, log logger.Logger) *Registry {
	return &Registry{
		store:  store,
		cfg:    cfg,
		events: events,
		logger: log,
		now:    time.Now,
	}
}

// Ingest records one announcement. The observed source address comes from
// the peer connection, never from the payload; lastSeenAt is the local
// receipt time.
func (r *Registry) Ingest(ctx context.Context, observedSource string, announcement *models.Announcement) (*models.RegistryRecord, error) {
	hostname, err := normalizeHostname(announcement.Hostname)
	if err != nil {
		r.logger.Warn().
			Str("source", observedSource).
			Str("hostname", announcement.Hostname).
			Err(err).
			Msg("Rejected announcement")

		return nil, err
	}

	existing, err := r.store.Get(ctx, hostname)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	record := &models.RegistryRecord{
		Hostname:      hostname,
		SourceAddress: sourceHost(observedSource),
		LastSeenAt:    r.now(),
	}

	if err := r.store.Upsert(ctx, record); err != nil {
		r.logger.Error().Err(err).Str("hostname", hostname).Msg("Failed to persist announcement")

		return nil, errors.Join(ErrStoreFailure, err)
	}

	r.logger.Info().
		Str("hostname", record.Hostname).
		Str("source_address", record.SourceAddress).
		Bool("first_seen", existing == nil).
		Msg("Recorded announcement")

	if r.events != nil {
		r.events.DeviceSeen(ctx, record, existing == nil)
	}

	return record, nil
}

// List returns all records, most recently seen first.
func (r *Registry) List(ctx context.Context) ([]*models.RegistryRecord, error) {
	records, err := r.store.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	return records, nil
}

// Reset drops all records unconditionally.
func (r *Registry) Reset(ctx context.Context) error {
	if err := r.store.Reset(ctx); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	r.logger.Info().Msg("Registry reset, all records dropped")

	return nil
}

// Sweep removes records unrefreshed past the retention threshold along with
// entries matching the synthetic hostname policy. It returns the number of
// records removed.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	retention := time.Duration(r.cfg.Retention)
	cutoff := r.now().Add(-retention)

	removed, err := r.store.Sweep(ctx, cutoff, r.cfg.SyntheticHostnamePattern)
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}

	if removed > 0 {
		r.logger.Info().
			Int("removed", removed).
			Time("cutoff", cutoff).
			Msg("Retention sweep removed stale records")

		if r.events != nil {
			r.events.DevicesExpired(ctx, removed, retention)
		}
	}

	return removed, nil
}

// normalizeHostname trims whitespace and rejects empty or malformed names.
func normalizeHostname(hostname string) (string, error) {
	hostname = strings.TrimSpace(hostname)
	if hostname == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidHostname)
	}

	if len(hostname) > maxHostnameLength {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidHostname, maxHostnameLength)
	}

	for _, r := range hostname {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidHostname, hostname)
		}
	}

	return hostname, nil
}

// sourceHost strips the ephemeral peer port, keeping only the address an
// operator would connect to.
func sourceHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}

	return host
}
