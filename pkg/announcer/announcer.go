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

// Package announcer implements the device-side announcement cycle: a bounded
// retry state machine that reports the device hostname to a known listener
// once per boot.
package announcer

import (
	"context"
	"errors"
	"time"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/marker"
	"github.com/carverauto/bootbeacon/pkg/models"
	"github.com/carverauto/bootbeacon/pkg/transport"
)

// Sender delivers one announcement to the listener at target.
type Sender interface {
	Send(ctx context.Context, target string, announcement *models.Announcement) error
}

// Outcome summarizes one announcement cycle for the caller.
type Outcome struct {
	// Skipped is true when a completion marker from this boot was found and
	// no network attempt was made.
	Skipped bool

	// Attempts is the number of network attempts actually made.
	Attempts int

	// Succeeded is true when at least one attempt got an acknowledgment.
	Succeeded bool

	// LastFailure holds the final transport failure when no attempt
	// succeeded.
	LastFailure error
}

// Announcer runs the retry state machine. It is strictly sequential: one
// attempt at a time, with a blocking flat delay between attempts.
type Announcer struct {
	cfg     *Config
	source  AddressSource
	markers marker.Store
	sender  Sender
	sleep   func(ctx context.Context, d time.Duration) error
	logger  logger.Logger
}

func New(cfg *Config, source AddressSource, markers marker.Store, sender Sender, log logger.Logger) *Announcer {
	return &Announcer{
		cfg:     cfg,
		source:  source,
		markers: markers,
		sender:  sender,
		sleep:   sleepContext,
		logger:  log,
	}
}

// Run executes at most one announcement cycle. It returns a non-nil error
// only for configuration or environment failures (address source, marker
// storage, cancellation); exhausting the attempt budget without success is a
// normal outcome, recorded in the returned Outcome and in the log.
func (a *Announcer) Run(ctx context.Context) (*Outcome, error) {
	exists, err := a.markers.Exists()
	if err != nil {
		return nil, errors.Join(ErrMarkerStore, err)
	}

	if exists {
		a.logger.Info().Msg("Completion marker present, announcement cycle already ran this boot")

		return &Outcome{Skipped: true, Succeeded: true}, nil
	}

	target, err := a.source.Resolve()
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to resolve listener address")

		return nil, err
	}

	outcome := &Outcome{}
	announcement := &models.Announcement{Hostname: a.cfg.Hostname}

	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		outcome.Attempts = attempt

		a.logger.Info().
			Int("attempt", attempt).
			Int("max_attempts", a.cfg.MaxAttempts).
			Str("target", target).
			Str("hostname", announcement.Hostname).
			Msg("Sending announcement")

		if err := a.attempt(ctx, target, announcement); err != nil {
			outcome.LastFailure = err

			a.logger.Warn().
				Int("attempt", attempt).
				Str("failure_kind", string(transport.KindOf(err))).
				Err(err).
				Msg("Announcement attempt failed")

			if attempt < a.cfg.MaxAttempts {
				if err := a.sleep(ctx, time.Duration(a.cfg.RetryDelay)); err != nil {
					// Terminated mid-cycle: leave no marker so the next boot
					// invocation does not believe a full cycle ran.
					return outcome, err
				}
			}

			continue
		}

		outcome.Succeeded = true
		outcome.LastFailure = nil

		a.logger.Info().
			Int("attempt", attempt).
			Str("target", target).
			Msg("Announcement acknowledged")

		break
	}

	if err := a.writeMarker(); err != nil {
		return outcome, err
	}

	if !outcome.Succeeded {
		a.logger.Error().
			Int("attempts", outcome.Attempts).
			Err(outcome.LastFailure).
			Msg("Announcement cycle exhausted all attempts without success")
	}

	return outcome, nil
}

func (a *Announcer) attempt(ctx context.Context, target string, announcement *models.Announcement) error {
	attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.AttemptTimeout))
	defer cancel()

	return a.sender.Send(attemptCtx, target, announcement)
}

// writeMarker records cycle completion exactly once per boot. Losing the
// create race to a concurrent instance counts as completion.
func (a *Announcer) writeMarker() error {
	err := a.markers.Create()
	if err == nil {
		a.logger.Debug().Msg("Completion marker written")

		return nil
	}

	if errors.Is(err, marker.ErrAlreadyExists) {
		a.logger.Warn().Msg("Completion marker written by a concurrent instance")

		return nil
	}

	a.logger.Error().Err(err).Msg("Failed to write completion marker")

	return errors.Join(ErrMarkerStore, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
