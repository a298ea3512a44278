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

// Package logging builds the service's slog loggers: the process-wide JSON
// console logger and the per-run loggers that also write to a log file named
// after the requester and the day the email arrived.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a structured JSON logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

type ctxKey struct{}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9@._-]`)

// SanitizeEmail makes an address safe to use in a file name.
func SanitizeEmail(email string) string {
	return unsafeChars.ReplaceAllString(email, "_")
}

// LogPath returns {dir}/{yyyy}/{yyyy-mm-dd}_{email}.log, dated in UTC.
func LogPath(dir string, receivedAt time.Time, email string) string {
	receivedAt = receivedAt.UTC()
	return filepath.Join(dir,
		receivedAt.Format("2006"),
		fmt.Sprintf("%s_%s.log", receivedAt.Format("2006-01-02"), SanitizeEmail(email)),
	)
}

// RunLogs opens the file-backed logger for one pipeline run.
type RunLogs struct {
	dir     string
	level   slog.Level
	console slog.Handler
}

// NewRunLogs creates a factory writing under dir. Records are also sent to
// console, which is normally the application logger's handler.
func NewRunLogs(dir string, level slog.Level, console slog.Handler) *RunLogs {
	return &RunLogs{dir: dir, level: level, console: console}
}

// Open returns a logger tagged with a fresh run_id that writes to the
// console and appends to the requester's log file. The returned func closes
// the file.
func (r *RunLogs) Open(receivedAt time.Time, email string) (*slog.Logger, func() error, error) {
	path := LogPath(r.dir, receivedAt, email)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open run log %s: %w", path, err)
	}

	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: r.level})
	var h slog.Handler = file
	if r.console != nil {
		h = Tee(r.console, file)
	}

	l := slog.New(h).With("run_id", uuid.NewString())
	return l, f.Close, nil
}
