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

// Soliton Leaves Bot: webhook server
//
// Entry point for the leave-request bot. It:
//  1. Loads configuration from .env, config.yaml and the environment
//  2. Builds the extraction backend, connectors and optional Redis dedup
//  3. Serves POST /email-notification for Graph change notifications
//  4. Handles graceful shutdown on SIGTERM/SIGINT, waiting for in-flight runs
//
// Subscriptions are managed separately with cmd/subscribe.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/app"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/config"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/webhook"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	slog.Info("starting leaves bot")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger = logging.New(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"mailbox", cfg.MonitoredEmail,
		"llm_provider", cfg.LLMProvider,
		"manager_required", cfg.ManagerRequired,
		"resolve_thread_origin", cfg.ResolveThreadOrigin,
		"port", cfg.Port,
		"https", cfg.UseHTTPS,
	)
	if !strings.HasPrefix(cfg.PublicURL, "https://") {
		slog.Warn("PUBLIC_URL is not https; Graph will reject subscriptions to it",
			"public_url", cfg.PublicURL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger.Handler())
	if err != nil {
		slog.Error("failed to initialise bot", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var tls webhook.TLSFiles
	if cfg.UseHTTPS {
		tls = webhook.TLSFiles{CertPath: cfg.SSLCertPath, KeyPath: cfg.SSLKeyPath}
	}

	handler := webhook.NewHandler(a.Pipeline, cfg.ClientState)
	ready, err := webhook.Serve(ctx, cfg.Port, tls, handler)
	if err != nil {
		slog.Error("failed to start webhook server", "error", err)
		os.Exit(1)
	}
	<-ready

	slog.Info("leaves bot ready", "notification_url", cfg.NotificationURL())

	<-ctx.Done()
	slog.Info("shutdown signal received, waiting for in-flight runs")
	handler.Wait()
	slog.Info("leaves bot stopped")
}
