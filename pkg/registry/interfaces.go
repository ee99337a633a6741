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
	"time"

	"github.com/carverauto/bootbeacon/pkg/models"
)

// Store owns registry record storage. Upsert must be atomic per hostname;
// Sweep and Reset must exclude concurrent upserts of the records they touch.
type Store interface {
	// Upsert inserts or overwrites the record keyed by its hostname.
	Upsert(ctx context.Context, record *models.RegistryRecord) error

	// Get returns the record for hostname, or nil when absent.
	Get(ctx context.Context, hostname string) (*models.RegistryRecord, error)

	// List returns all records ordered by LastSeenAt descending.
	List(ctx context.Context) ([]*models.RegistryRecord, error)

	// Sweep deletes records with LastSeenAt before cutoff, plus records whose
	// hostname matches the synthetic pattern (empty pattern matches nothing).
	// It returns the number of records removed.
	Sweep(ctx context.Context, cutoff time.Time, syntheticPattern string) (int, error)

	// Reset drops all records.
	Reset(ctx context.Context) error

	// Close releases any backing resources.
	Close()
}

// EventSink receives registry change notifications. Implementations must not
// block ingest; failures are the sink's problem to log.
type EventSink interface {
	DeviceSeen(ctx context.Context, record *models.RegistryRecord, firstSeen bool)
	DevicesExpired(ctx context.Context, removed int, retention time.Duration)
}
