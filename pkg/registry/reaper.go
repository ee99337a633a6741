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

	"github.com/carverauto/bootbeacon/pkg/logger"
)

// Reaper runs the retention sweep on an interval until the context ends.
type Reaper struct {
	registry *Registry
	interval time.Duration
	logger   logger.Logger
}

func NewReaper(registry *Registry, interval time.Duration, log logger.Logger) *Reaper {
	return &Reaper{
		registry: registry,
		interval: interval,
		logger:   log,
	}
}

// Start blocks until ctx is done. Call it from its own goroutine.
func (r *Reaper) Start(ctx context.Context) {
	r.logger.Info().
		Dur("interval", r.interval).
		Msg("Starting registry retention reaper")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Registry retention reaper stopping")
			return
		case <-ticker.C:
			if _, err := r.registry.Sweep(ctx); err != nil {
				r.logger.Error().Err(err).Msg("Retention sweep failed")
			}
		}
	}
}
