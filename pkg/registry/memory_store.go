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
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/bootbeacon/pkg/models"
)

// MemoryStore keeps registry records in a mutex-guarded map. It is the
// default backing for a single-listener LAN deployment. Sweep and Reset hold
// the write lock for their whole pass, so concurrent ingests never observe a
// partial sweep or reset.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.RegistryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*models.RegistryRecord),
	}
}

func (s *MemoryStore) Upsert(_ context.Context, record *models.RegistryRecord) error {
	clone := *record

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[clone.Hostname] = &clone

	return nil
}

func (s *MemoryStore) Get(_ context.Context, hostname string) (*models.RegistryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[hostname]
	if !ok {
		return nil, nil
	}

	clone := *record

	return &clone, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.RegistryRecord, error) {
	s.mu.RLock()

	records := make([]*models.RegistryRecord, 0, len(s.records))

	for _, record := range s.records {
		clone := *record
		records = append(records, &clone)
	}

	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].LastSeenAt.Equal(records[j].LastSeenAt) {
			return records[i].LastSeenAt.After(records[j].LastSeenAt)
		}

		return records[i].Hostname < records[j].Hostname
	})

	return records, nil
}

func (s *MemoryStore) Sweep(_ context.Context, cutoff time.Time, syntheticPattern string) (int, error) {
	var synthetic *regexp.Regexp

	if syntheticPattern != "" {
		var err error

		synthetic, err = regexp.Compile(syntheticPattern)
		if err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for hostname, record := range s.records {
		if record.LastSeenAt.Before(cutoff) || (synthetic != nil && synthetic.MatchString(hostname)) {
			delete(s.records, hostname)
			removed++
		}
	}

	return removed, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*models.RegistryRecord)

	return nil
}

func (*MemoryStore) Close() {}
