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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/bootbeacon/pkg/config"
	"github.com/carverauto/bootbeacon/pkg/events"
	"github.com/carverauto/bootbeacon/pkg/lifecycle"
	"github.com/carverauto/bootbeacon/pkg/listener"
	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/registry"
	"github.com/carverauto/bootbeacon/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/bootbeacon/listener.json", "Path to listener config file")
	flag.Parse()

	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	var cfg listener.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, "BOOTBEACON_", &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logr, err := lifecycle.CreateComponentLogger("listener", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	logr.Info().Str("version", version.GetFullVersion()).Msg("Starting bootbeacon listener")

	store, err := buildStore(ctx, &cfg, logr)
	if err != nil {
		return err
	}
	defer store.Close()

	var sink registry.EventSink

	if cfg.Events != nil && cfg.Events.Enabled {
		publisher, perr := events.NewPublisher(cfg.Events, logr)
		if perr != nil {
			return fmt.Errorf("failed to connect event feed: %w", perr)
		}
		defer publisher.Close()

		sink = publisher
	}

	reg := registry.New(store, cfg.Registry, sink, logr)

	if interval := time.Duration(cfg.Registry.SweepInterval); interval > 0 {
		reaper := registry.NewReaper(reg, interval, logr)
		go reaper.Start(ctx)
	}

	return listener.NewServer(&cfg, reg, logr).Start(ctx)
}

// buildStore picks the registry backing: Postgres when configured, the
// in-memory store otherwise.
func buildStore(ctx context.Context, cfg *listener.Config, logr logger.Logger) (registry.Store, error) {
	if cfg.Database == nil || cfg.Database.Host == "" {
		logr.Info().Msg("Using in-memory registry store")

		return registry.NewMemoryStore(), nil
	}

	store, err := registry.NewPGStore(ctx, cfg.Database, logr)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	return store, nil
}
