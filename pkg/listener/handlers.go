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

package listener

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/carverauto/bootbeacon/pkg/models"
	"github.com/carverauto/bootbeacon/pkg/registry"
	"github.com/carverauto/bootbeacon/pkg/version"
)

// deviceView is the read-API representation of one registry record.
type deviceView struct {
	Hostname      string `json:"hostname"`
	SourceAddress string `json:"source_address"`
	LastSeen      string `json:"last_seen"`
}

// handleAnnounce ingests one announcement.
// POST /announce
func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, "malformed form body", http.StatusBadRequest)
		return
	}

	announcement := &models.Announcement{Hostname: r.PostFormValue("hostname")}

	record, err := s.registry.Ingest(r.Context(), r.RemoteAddr, announcement)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidHostname) {
			writeError(w, "hostname is required", http.StatusBadRequest)
			return
		}

		// Storage failure: report it so the announcer's attempt fails and
		// retries instead of silently losing the announcement.
		writeError(w, "failed to record announcement", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"hostname": record.Hostname,
	})
}

// handleListDevices returns all records, most recently seen first.
// GET /api/devices
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	records, err := s.registry.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list devices")
		writeError(w, "failed to list devices", http.StatusInternalServerError)

		return
	}

	views := make([]deviceView, 0, len(records))
	for _, record := range records {
		views = append(views, deviceView{
			Hostname:      record.Hostname,
			SourceAddress: record.SourceAddress,
			LastSeen:      record.LastSeenAt.Format(time.RFC3339),
		})
	}

	s.writeJSON(w, http.StatusOK, views)
}

// handleReset drops all records.
// POST /api/admin/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Reset(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reset registry")
		writeError(w, "failed to reset registry", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleSweep runs a retention sweep immediately.
// POST /api/admin/sweep
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	removed, err := s.registry.Sweep(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sweep registry")
		writeError(w, "failed to sweep registry", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleHealth reports liveness.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
