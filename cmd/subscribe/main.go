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

// Soliton Leaves Bot: Graph subscription management
//
// Creates, lists and deletes the Graph change notification subscription
// that delivers new mail in the monitored mailbox to the webhook server.
// Subscriptions expire after at most seven days and are not renewed
// automatically; re-run create before expiry.
//
// Usage:
//
//	go run ./cmd/subscribe/ create [--lifetime 144h] [--out logs/subscription/subscription.json]
//	go run ./cmd/subscribe/ list
//	go run ./cmd/subscribe/ delete
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/app"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/config"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/graph"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <create|list|delete> [flags]\n\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	slog.SetDefault(logging.New(os.Stdout, slog.LevelInfo))

	lifetimeFlag := flag.Duration("lifetime", 6*24*time.Hour, "Subscription lifetime (capped at the Graph maximum of 7 days)")
	outFlag := flag.String("out", filepath.Join("logs", "subscription", "subscription.json"), "Where create writes the Graph response")
	flag.Usage = usage

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if err := flag.CommandLine.Parse(os.Args[2:]); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := app.GraphConnector(cfg).Connect(ctx)
	if err != nil {
		slog.Error("graph authentication failed", "error", err)
		os.Exit(1)
	}

	switch cmd {
	case "create":
		err = create(ctx, client, cfg, *lifetimeFlag, *outFlag)
	case "list":
		err = list(ctx, client)
	case "delete":
		err = deleteAll(ctx, client)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("subscription command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func create(ctx context.Context, client *graph.Client, cfg *config.Config, lifetime time.Duration, out string) error {
	url := cfg.NotificationURL()
	if !strings.HasPrefix(url, "https://") {
		slog.Warn("notification URL is not https; Graph requires https", "url", url)
	}

	sub := graph.NewMailSubscription(cfg.MonitoredEmail, url, cfg.ClientState, time.Now(), lifetime)
	slog.Info("creating subscription",
		"resource", sub.Resource,
		"notification_url", sub.NotificationURL,
		"expires", sub.ExpirationDateTime,
	)

	created, err := client.CreateSubscription(ctx, sub)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(created, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	slog.Info("subscription created",
		"subscription_id", created.ID,
		"expires", created.ExpirationDateTime,
		"saved_to", out,
	)
	return nil
}

func list(ctx context.Context, client *graph.Client) error {
	subs, err := client.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		slog.Info("no active subscriptions")
		return nil
	}
	for _, s := range subs {
		slog.Info("subscription",
			"subscription_id", s.ID,
			"resource", s.Resource,
			"change_type", s.ChangeType,
			"notification_url", s.NotificationURL,
			"expires", s.ExpirationDateTime,
		)
	}
	return nil
}

func deleteAll(ctx context.Context, client *graph.Client) error {
	subs, err := client.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, s := range subs {
		if err := client.DeleteSubscription(ctx, s.ID); err != nil {
			slog.Error("delete subscription failed", "subscription_id", s.ID, "error", err)
			failed++
			continue
		}
		slog.Info("subscription deleted", "subscription_id", s.ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d subscriptions could not be deleted", failed, len(subs))
	}
	return nil
}
