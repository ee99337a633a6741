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
	"errors"
	"flag"
	"log"
	"os"

	"github.com/carverauto/bootbeacon/pkg/announcer"
	"github.com/carverauto/bootbeacon/pkg/config"
	"github.com/carverauto/bootbeacon/pkg/lifecycle"
	"github.com/carverauto/bootbeacon/pkg/marker"
	"github.com/carverauto/bootbeacon/pkg/transport"
	"github.com/carverauto/bootbeacon/pkg/version"
)

// Exit codes keep the client error taxonomy visible to operational tooling.
// The packaged service unit uses Restart=no, so a nonzero exit never causes
// a restart loop.
const (
	exitOK = 0

	exitAddressMissing    = 2
	exitAddressUnreadable = 3
	exitLoggingSetup      = 4
	exitConnectionError   = 5
	exitTimeout           = 6
	exitProtocolError     = 7
	exitUnexpected        = 8
	exitMarkerFailure     = 9
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "/etc/bootbeacon/announcer.json", "Path to announcer config file")
	flag.Parse()

	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()

	var cfg announcer.Config

	cfgLoader := config.NewConfig(nil)
	if err := cfgLoader.LoadAndValidate(ctx, *configPath, "BOOTBEACON_", &cfg); err != nil {
		log.Printf("Failed to load config: %v", err)
		return exitUnexpected
	}

	logr, err := lifecycle.CreateComponentLogger("announcer", cfg.Logging)
	if err != nil {
		log.Printf("Failed to set up logging: %v", err)
		return exitLoggingSetup
	}

	logr.Info().Str("version", version.GetFullVersion()).Msg("Starting announcement cycle")

	a := announcer.New(
		&cfg,
		announcer.NewFileAddressSource(cfg.AddressFile),
		marker.NewFileStore(cfg.MarkerFile),
		transport.NewHTTPSender(),
		logr,
	)

	outcome, err := a.Run(ctx)
	if err != nil {
		return exitCodeForError(err)
	}

	if !outcome.Succeeded {
		return exitCodeForFailure(outcome.LastFailure)
	}

	return exitOK
}

func exitCodeForError(err error) int {
	switch {
	case errors.Is(err, announcer.ErrAddressMissing):
		return exitAddressMissing
	case errors.Is(err, announcer.ErrAddressUnreadable), errors.Is(err, announcer.ErrAddressInvalid):
		return exitAddressUnreadable
	case errors.Is(err, announcer.ErrMarkerStore):
		return exitMarkerFailure
	default:
		return exitUnexpected
	}
}

func exitCodeForFailure(err error) int {
	switch transport.KindOf(err) {
	case transport.KindUnreachable:
		return exitConnectionError
	case transport.KindTimedOut:
		return exitTimeout
	case transport.KindProtocolError:
		return exitProtocolError
	default:
		return exitUnexpected
	}
}
