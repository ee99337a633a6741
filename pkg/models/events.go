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

package models

import "time"

// CloudEvent is the CloudEvents v1.0 envelope used on the NATS event feed.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// DeviceSeenEventData is the payload for a device.seen event, emitted after
// every successful registry upsert.
type DeviceSeenEventData struct {
	Hostname      string    `json:"hostname"`
	SourceAddress string    `json:"source_address"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	FirstSeen     bool      `json:"first_seen"`
}

// DevicesExpiredEventData is the payload for a devices.expired event, emitted
// after a retention sweep removed one or more records.
type DevicesExpiredEventData struct {
	Removed   int       `json:"removed"`
	SweptAt   time.Time `json:"swept_at"`
	Retention Duration  `json:"retention"`
}
