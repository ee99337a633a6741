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

// Package models contains the shared data types for bootbeacon.
package models

import "time"

// Announcement is the wire payload a device sends to the listener.
// Only the hostname travels on the wire; the source address is observed
// by the listener from the peer connection and is never self-reported.
type Announcement struct {
	Hostname string `json:"hostname"`
}

// RegistryRecord is the listener's view of the most recent announcement
// from one device. Hostname is the natural key; a later announcement from
// the same hostname overwrites the address and timestamp in place.
type RegistryRecord struct {
	Hostname      string    `json:"hostname"`
	SourceAddress string    `json:"source_address"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}
