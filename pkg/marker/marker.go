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

// Package marker implements the boot-scoped completion marker that keeps the
// announcer from running more than one announcement cycle per boot. Any
// backing storage works as long as it survives repeated invocations within a
// boot and is cleared by a reboot; the file store expects a tmpfs path such
// as /run for exactly that reason.
package marker

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrAlreadyExists is returned by Create when the marker was already written,
// either earlier in this boot or by a concurrently racing instance.
var ErrAlreadyExists = errors.New("completion marker already exists")

// Store is a boot-scoped flag store. Create must be atomic (create-if-absent)
// so two racing announcer instances cannot both believe they wrote first.
type Store interface {
	Exists() (bool, error)
	Create() error
}

// FileStore keeps the marker as a file. The configured path must live on
// storage cleared across reboots.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, fmt.Errorf("failed to stat marker %s: %w", s.path, err)
}

// Create writes the marker with O_EXCL so a second concurrent instance sees
// ErrAlreadyExists instead of silently clobbering the first write.
func (s *FileStore) Create() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return ErrAlreadyExists
		}

		return fmt.Errorf("failed to create marker %s: %w", s.path, err)
	}

	_, werr := fmt.Fprintf(f, "completed %s\n", time.Now().UTC().Format(time.RFC3339))

	if cerr := f.Close(); werr == nil {
		werr = cerr
	}

	if werr != nil {
		// Leave no partial marker behind that a later invocation would
		// mistake for a finished cycle.
		_ = os.Remove(s.path)

		return fmt.Errorf("failed to write marker %s: %w", s.path, werr)
	}

	return nil
}

// MemoryStore is an in-process marker store for tests and for hosts where
// process lifetime equals one boot.
type MemoryStore struct {
	mu  sync.Mutex
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Exists() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set, nil
}

func (s *MemoryStore) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set {
		return ErrAlreadyExists
	}

	s.set = true

	return nil
}
