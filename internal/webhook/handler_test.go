// Copyright (c) 2026 Soliton Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/pipeline"
)

const testClientState = "s3cret-state"

type recordingProcessor struct {
	mu  sync.Mutex
	ids []string
}

func (p *recordingProcessor) Process(_ context.Context, messageID string) pipeline.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, messageID)
	return pipeline.Report{MessageID: messageID}
}

func (p *recordingProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ids...)
}

func serve(h *Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

// TestValidationProbe verifies the token is echoed as plain text.
func TestValidationProbe(t *testing.T) {
	proc := &recordingProcessor{}
	h := NewHandler(proc, testClientState)

	rec := serve(h, http.MethodPost, "/email-notification?validationToken=abc%2B123", "")
	h.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "abc+123", rec.Body.String())
	assert.Empty(t, proc.processed())
}

// TestNotificationProcessesFirstEntry verifies only value[0] is processed.
func TestNotificationProcessesFirstEntry(t *testing.T) {
	proc := &recordingProcessor{}
	h := NewHandler(proc, testClientState)

	rec := serve(h, http.MethodPost, "/email-notification",
		`{"value":[{"changeType":"created","clientState":"s3cret-state","resourceData":{"id":"AAMk-1"}},`+
			`{"clientState":"s3cret-state","resourceData":{"id":"AAMk-2"}}]}`)
	h.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAMk-1"}, proc.processed())
}

// TestNotificationIgnoresBadInput verifies malformed requests are acknowledged.
func TestNotificationIgnoresBadInput(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
	}{
		{name: "invalid json", method: http.MethodPost, body: "not json"},
		{name: "empty value", method: http.MethodPost, body: `{"value":[]}`},
		{name: "missing id", method: http.MethodPost, body: `{"value":[{"clientState":"s3cret-state","resourceData":{}}]}`},
		{name: "wrong client state", method: http.MethodPost, body: `{"value":[{"clientState":"guess","resourceData":{"id":"AAMk-1"}}]}`},
		{name: "missing client state", method: http.MethodPost, body: `{"value":[{"resourceData":{"id":"AAMk-1"}}]}`},
		{name: "get", method: http.MethodGet, body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &recordingProcessor{}
			h := NewHandler(proc, testClientState)

			rec := serve(h, tt.method, "/email-notification", tt.body)
			h.Wait()

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, proc.processed())
		})
	}
}

// TestHealth verifies the health endpoint body.
func TestHealth(t *testing.T) {
	h := NewHandler(&recordingProcessor{}, testClientState)

	rec := serve(h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

// TestServe verifies the server binds and answers before shutdown.
func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHandler(&recordingProcessor{}, testClientState)
	ready, err := Serve(ctx, 0, TLSFiles{}, h)
	require.NoError(t, err)
	<-ready

	_, err = Serve(ctx, -1, TLSFiles{}, h)
	assert.Error(t, err)
}
