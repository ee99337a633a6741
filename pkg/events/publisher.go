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

// Package events publishes registry changes to NATS as CloudEvents, so
// presentation layers and other consumers can react without polling the
// read API. Publishing is best-effort: a broken event feed never fails an
// ingest.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

const (
	eventSource       = "bootbeacon/listener"
	typeDeviceSeen    = "com.carverauto.bootbeacon.device.seen"
	typeDeviceExpired = "com.carverauto.bootbeacon.devices.expired"

	defaultSubjectPrefix = "events.bootbeacon"
)

// Publisher emits registry change events to NATS.
type Publisher struct {
	nc            *nats.Conn
	subjectPrefix string
	logger        logger.Logger
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg *models.EventsConfig, log logger.Logger) (*Publisher, error) {
	subjectPrefix := cfg.SubjectPrefix
	if subjectPrefix == "" {
		subjectPrefix = defaultSubjectPrefix
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("bootbeacon-listener"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.URL).Str("subject_prefix", subjectPrefix).Msg("connected to NATS event feed")

	return &Publisher{
		nc:            nc,
		subjectPrefix: subjectPrefix,
		logger:        log,
	}, nil
}

// DeviceSeen implements registry.EventSink.
func (p *Publisher) DeviceSeen(_ context.Context, record *models.RegistryRecord, firstSeen bool) {
	p.publish(typeDeviceSeen, p.subjectPrefix+".device.seen", models.DeviceSeenEventData{
		Hostname:      record.Hostname,
		SourceAddress: record.SourceAddress,
		LastSeenAt:    record.LastSeenAt,
		FirstSeen:     firstSeen,
	})
}

// DevicesExpired implements registry.EventSink.
func (p *Publisher) DevicesExpired(_ context.Context, removed int, retention time.Duration) {
	p.publish(typeDeviceExpired, p.subjectPrefix+".devices.expired", models.DevicesExpiredEventData{
		Removed:   removed,
		SweptAt:   time.Now().UTC(),
		Retention: models.Duration(retention),
	})
}

// Close flushes pending events and drops the connection.
func (p *Publisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to drain NATS connection")
	}
}

func (p *Publisher) publish(eventType, subject string, data interface{}) {
	event := newCloudEvent(eventType, subject, data)

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", eventType).Msg("Failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}

func newCloudEvent(eventType, subject string, data interface{}) models.CloudEvent {
	now := time.Now().UTC()

	return models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &now,
		Data:            data,
	}
}
