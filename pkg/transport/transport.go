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

// Package transport sends announcements to the listener over HTTP. One
// request per attempt, form-encoded, with the per-attempt deadline supplied
// by the caller's context.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/carverauto/bootbeacon/pkg/models"
)

// FailureKind classifies a transport failure. All kinds consume one
// announcement attempt; the announcer logs them distinctly.
type FailureKind string

const (
	KindUnreachable   FailureKind = "unreachable"
	KindTimedOut      FailureKind = "timed_out"
	KindProtocolError FailureKind = "protocol_error"
	KindOther         FailureKind = "other"
)

// Error is a classified transport failure.
type Error struct {
	Kind   FailureKind
	Status int // HTTP status for KindProtocolError, zero otherwise
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindProtocolError {
		return fmt.Sprintf("transport %s: status %d", e.Kind, e.Status)
	}

	return fmt.Sprintf("transport %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an error returned by Send.
func KindOf(err error) FailureKind {
	var terr *Error
	if errors.As(err, &terr) {
		return terr.Kind
	}

	return KindOther
}

// HTTPSender posts announcements to the listener's announce endpoint.
type HTTPSender struct {
	client *http.Client
}

// NewHTTPSender creates a sender. Deadlines come from the per-call context,
// not the client, so the announcer stays in control of attempt timing.
func NewHTTPSender() *HTTPSender {
	return &HTTPSender{client: &http.Client{}}
}

// Send posts the announcement to target ("host:port"). A 2xx response is
// success; anything else is returned as a classified *Error.
func (s *HTTPSender) Send(ctx context.Context, target string, announcement *models.Announcement) error {
	endpoint := url.URL{
		Scheme: "http",
		Host:   target,
		Path:   "/announce",
	}

	form := url.Values{}
	form.Set("hostname", announcement.Hostname)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Kind: KindOther, Err: err}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return classify(err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindProtocolError, Status: resp.StatusCode}
	}

	return nil
}

func classify(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimedOut, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimedOut, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &Error{Kind: KindUnreachable, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: KindUnreachable, Err: err}
	}

	return &Error{Kind: KindOther, Err: err}
}
