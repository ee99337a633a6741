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

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bootbeacon/pkg/models"
)

func TestSendSuccess(t *testing.T) {
	var gotHostname string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/announce", r.URL.Path)
		require.NoError(t, r.ParseForm())

		gotHostname = r.PostFormValue("hostname")

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewHTTPSender()
	target := strings.TrimPrefix(srv.URL, "http://")

	err := sender.Send(context.Background(), target, &models.Announcement{Hostname: "speedy"})
	require.NoError(t, err)
	assert.Equal(t, "speedy", gotHostname)
}

func TestSendProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad hostname", http.StatusBadRequest)
	}))
	defer srv.Close()

	sender := NewHTTPSender()
	target := strings.TrimPrefix(srv.URL, "http://")

	err := sender.Send(context.Background(), target, &models.Announcement{Hostname: "speedy"})
	require.Error(t, err)
	assert.Equal(t, KindProtocolError, KindOf(err))

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadRequest, terr.Status)
}

func TestSendUnreachable(t *testing.T) {
	// Bind then immediately close to get a port nothing listens on.
	srv := httptest.NewServer(http.NotFoundHandler())
	target := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	sender := NewHTTPSender()

	err := sender.Send(context.Background(), target, &models.Announcement{Hostname: "speedy"})
	require.Error(t, err)
	assert.Equal(t, KindUnreachable, KindOf(err))
}

func TestSendTimedOut(t *testing.T) {
	blocked := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	sender := NewHTTPSender()
	target := strings.TrimPrefix(srv.URL, "http://")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := sender.Send(ctx, target, &models.Announcement{Hostname: "speedy"})
	require.Error(t, err)
	assert.Equal(t, KindTimedOut, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindOther, KindOf(context.Canceled))
}
