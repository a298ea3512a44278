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

// Soliton Leaves Bot: notification replay
//
// Runs the full leave pipeline for a single message, exactly as if Graph had
// delivered a notification for it. Intended for recovering from a missed
// notification or re-running after a backend outage. The duplicate check is
// bypassed, so messages the server already handled are processed again.
//
// Usage:
//
//	go run ./cmd/replay/ --message <graph message id> [--timeout 5m]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/app"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/config"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/pipeline"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	messageFlag := flag.String("message", "", "Graph message ID to process (required)")
	timeoutFlag := flag.Duration("timeout", 5*time.Minute, "Give up after this long")
	flag.Parse()

	if *messageFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: --message is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	a, err := app.Build(ctx, cfg, logger.Handler())
	if err != nil {
		slog.Error("failed to initialise bot", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	slog.Info("replaying message", "message_id", *messageFlag)
	rep := a.Pipeline.ProcessWith(ctx, *messageFlag, pipeline.ProcessOptions{Force: true})

	switch {
	case rep.Skipped != "":
		slog.Info("message skipped", "reason", rep.Skipped)
	case rep.Err != nil:
		slog.Error("replay failed", "error", rep.Err)
		os.Exit(1)
	default:
		var failed int
		for _, r := range rep.Results {
			if !r.OK() {
				failed++
			}
		}
		slog.Info("replay complete",
			"outcome", rep.Outcome.Kind.String(),
			"requests", len(rep.Results),
			"failed", failed,
		)
	}
}
