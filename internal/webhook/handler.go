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

// Package webhook receives Graph change notifications for the monitored
// mailbox. The notified message is handed to the leave pipeline in the
// background so Graph gets its acknowledgement immediately.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/pipeline"
)

// ResourceData identifies the resource a notification is about.
type ResourceData struct {
	ID string `json:"id"`
}

// ChangeNotification is a single Graph change notification.
type ChangeNotification struct {
	SubscriptionID string       `json:"subscriptionId"`
	ChangeType     string       `json:"changeType"`
	Resource       string       `json:"resource"`
	ClientState    string       `json:"clientState"`
	ResourceData   ResourceData `json:"resourceData"`
}

// NotificationPayload is the wrapper Graph sends.
type NotificationPayload struct {
	Value []ChangeNotification `json:"value"`
}

// Processor runs the leave pipeline for one message.
type Processor interface {
	Process(ctx context.Context, messageID string) pipeline.Report
}

// Handler serves the notification and health endpoints.
type Handler struct {
	proc        Processor
	clientState string
	wg          sync.WaitGroup
}

// NewHandler creates a notification handler. Notifications whose
// clientState differs from clientState are dropped.
func NewHandler(proc Processor, clientState string) *Handler {
	return &Handler{proc: proc, clientState: clientState}
}

// ServeNotification handles change notification webhook requests.
//
// Graph API validation flow:
//   - When creating a subscription, Graph sends a POST with ?validationToken=<token>
//   - We must respond 200 OK with the token in plain text
//
// Normal notification flow:
//   - Graph POSTs {"value":[{"resourceData":{"id":...}}]}
//   - We respond 200 immediately and process the first entry in the background
func (h *Handler) ServeNotification(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("validationToken"); token != "" {
		slog.Info("subscription validation probe received")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(token))
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read notification body", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	var payload NotificationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Info("notification body not valid JSON, ignoring", "body_len", len(body))
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)

	if len(payload.Value) == 0 || payload.Value[0].ResourceData.ID == "" {
		slog.Warn("notification without a message id, ignoring")
		return
	}
	first := payload.Value[0]
	if h.clientState != "" && first.ClientState != h.clientState {
		slog.Warn("clientState mismatch, possible spoofed notification",
			"subscription_id", first.SubscriptionID,
			"message_id", first.ResourceData.ID,
		)
		return
	}
	if len(payload.Value) > 1 {
		slog.Info("notification batch received, processing first entry only",
			"entries", len(payload.Value),
		)
	}

	messageID := first.ResourceData.ID
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.process(context.Background(), messageID)
	}()
}

func (h *Handler) process(ctx context.Context, messageID string) {
	rep := h.proc.Process(ctx, messageID)
	switch {
	case rep.Skipped != "":
		slog.Info("notification skipped", "message_id", messageID, "reason", rep.Skipped)
	case rep.Err != nil:
		slog.Error("notification processing failed", "message_id", messageID, "error", rep.Err)
	default:
		slog.Info("notification processed",
			"message_id", messageID,
			"outcome", rep.Outcome.Kind.String(),
		)
	}
}

// ServeHealth reports liveness.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// Wait blocks until every background pipeline run has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Routes returns the mux serving the bot endpoints.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/email-notification", h.ServeNotification)
	mux.HandleFunc("GET /health", h.ServeHealth)
	return mux
}

// TLSFiles enables HTTPS when both paths are set.
type TLSFiles struct {
	CertPath string
	KeyPath  string
}

func (t TLSFiles) enabled() bool {
	return t.CertPath != "" && t.KeyPath != ""
}

// Serve starts the webhook HTTP server on the given port.
// It binds the port immediately and signals readiness via the returned channel
// before starting to accept connections. When ctx is done the server stops
// accepting requests; callers use Handler.Wait for in-flight runs.
func Serve(ctx context.Context, port int, tls TLSFiles, handler *Handler) (<-chan struct{}, error) {
	server := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind webhook port %d: %w", port, err)
	}

	ready := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("webhook server shutdown", "error", err)
		}
	}()

	go func() {
		slog.Info("webhook server listening", "port", port, "https", tls.enabled())
		close(ready)
		var err error
		if tls.enabled() {
			err = server.ServeTLS(ln, tls.CertPath, tls.KeyPath)
		} else {
			err = server.Serve(ln)
		}
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("webhook server error", "error", err)
		}
	}()

	return ready, nil
}
