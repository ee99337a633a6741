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

package marker

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreLifecycle(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "announce.done"))

	exists, err := store.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Create())

	exists, err = store.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	require.ErrorIs(t, store.Create(), ErrAlreadyExists)
}

func TestFileStoreCreateRace(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "announce.done"))

	const racers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)

	for i := 0; i < racers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := store.Create(); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, created, "exactly one racer should win the marker write")
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	exists, err := store.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Create())
	require.ErrorIs(t, store.Create(), ErrAlreadyExists)

	exists, err = store.Exists()
	require.NoError(t, err)
	assert.True(t, exists)
}
