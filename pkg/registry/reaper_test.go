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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

func TestReaperSweepsOnInterval(t *testing.T) {
	cfg := &Config{Retention: models.Duration(time.Hour)}
	r := newTestRegistry(t, cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, err := r.Ingest(ctx, "10.0.0.1:1", &models.Announcement{Hostname: "stale"})
	require.NoError(t, err)

	r.now = time.Now

	reaper := NewReaper(r, 10*time.Millisecond, logger.NewTestLogger())

	done := make(chan struct{})

	go func() {
		reaper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		records, lerr := r.List(context.Background())

		return lerr == nil && len(records) == 0
	}, time.Second, 10*time.Millisecond, "reaper should remove the stale record")

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after context cancellation")
	}
}
