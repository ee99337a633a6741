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
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
	"github.com/carverauto/bootbeacon/pkg/registry"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &Config{APIKey: "sekrit"}
	require.NoError(t, cfg.Validate())

	reg := registry.New(registry.NewMemoryStore(), cfg.Registry, nil, logger.NewTestLogger())

	return NewServer(cfg, reg, logger.NewTestLogger())
}

func announce(t *testing.T, s *Server, hostname, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("hostname", hostname)

	req := httptest.NewRequest(http.MethodPost, "/announce", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remoteAddr

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	return rec
}

func listDevices(t *testing.T, s *Server) []deviceView {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var views []deviceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))

	return views
}

func TestAnnounceAndList(t *testing.T) {
	s := newTestServer(t)

	rec := announce(t, s, "speedy", "192.168.1.23:51234")
	require.Equal(t, http.StatusOK, rec.Code)

	views := listDevices(t, s)
	require.Len(t, views, 1)
	assert.Equal(t, "speedy", views[0].Hostname)
	assert.Equal(t, "192.168.1.23", views[0].SourceAddress, "source must come from the peer, not the payload")

	_, err := time.Parse(time.RFC3339, views[0].LastSeen)
	require.NoError(t, err)
}

func TestAnnounceRebootOverwrites(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, announce(t, s, "speedy", "192.168.1.23:1111").Code)
	require.Equal(t, http.StatusOK, announce(t, s, "speedy", "10.20.30.40:2222").Code)

	views := listDevices(t, s)
	require.Len(t, views, 1, "a re-announcing device must not create a second row")
	assert.Equal(t, "10.20.30.40", views[0].SourceAddress)
}

func TestAnnounceRejectsEmptyHostname(t *testing.T) {
	s := newTestServer(t)

	rec := announce(t, s, "", "192.168.1.23:1111")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, listDevices(t, s))
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminReset(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, announce(t, s, "speedy", "192.168.1.23:1111").Code)
	require.Equal(t, http.StatusOK, announce(t, s, "zippy", "192.168.1.24:1112").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
	req.Header.Set("X-API-Key", "sekrit")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, listDevices(t, s))
}

func TestAdminSweep(t *testing.T) {
	cfg := &Config{
		APIKey: "sekrit",
		Registry: &registry.Config{
			Retention:                models.Duration(time.Hour),
			SyntheticHostnamePattern: `^test-`,
		},
	}
	require.NoError(t, cfg.Validate())

	reg := registry.New(registry.NewMemoryStore(), cfg.Registry, nil, logger.NewTestLogger())
	s := NewServer(cfg, reg, logger.NewTestLogger())

	require.Equal(t, http.StatusOK, announce(t, s, "test-rig", "192.168.1.23:1111").Code)
	require.Equal(t, http.StatusOK, announce(t, s, "speedy", "192.168.1.24:1112").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/sweep", nil)
	req.Header.Set("X-API-Key", "sekrit")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result["removed"])

	views := listDevices(t, s)
	require.Len(t, views, 1)
	assert.Equal(t, "speedy", views[0].Hostname)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListOrderingMostRecentFirst(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, announce(t, s, "first", "10.0.0.1:1").Code)
	require.Equal(t, http.StatusOK, announce(t, s, "second", "10.0.0.2:2").Code)

	views := listDevices(t, s)
	require.Len(t, views, 2)

	firstSeen, err := time.Parse(time.RFC3339, views[0].LastSeen)
	require.NoError(t, err)

	secondSeen, err := time.Parse(time.RFC3339, views[1].LastSeen)
	require.NoError(t, err)

	assert.False(t, firstSeen.Before(secondSeen), "list must be most recently seen first")
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	require.NotNil(t, cfg.Registry)
}
