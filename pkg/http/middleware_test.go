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

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

func TestCommonMiddlewarePassesThrough(t *testing.T) {
	called := false

	handler := CommonMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}), models.CORSConfig{}, logger.NewTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCommonMiddlewareCORS(t *testing.T) {
	handler := CommonMiddleware(http.NotFoundHandler(), models.CORSConfig{
		AllowedOrigins: []string{"http://operator.local"},
	}, logger.NewTestLogger())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/devices", nil)
		req.Header.Set("Origin", "http://operator.local")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://operator.local", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("denied origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
		req.Header.Set("Origin", "http://evil.example")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	protected := APIKeyMiddleware("sekrit", logger.NewTestLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	t.Run("valid header key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
		req.Header.Set("X-API-Key", "sekrit")

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid query key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/reset?api_key=sekrit", nil)

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
		req.Header.Set("X-API-Key", "guess")

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty configured key denies", func(t *testing.T) {
		open := APIKeyMiddleware("", logger.NewTestLogger())(http.NotFoundHandler())

		rec := httptest.NewRecorder()
		open.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
