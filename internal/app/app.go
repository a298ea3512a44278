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

// Package app wires configuration into a ready-to-run leave pipeline. It is
// shared by the webhook server and the operator CLIs.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/config"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/dedup"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/extract"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/graph"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/llm"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/pipeline"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/policy"
)

// App holds the long-lived components built from a Config.
type App struct {
	Pipeline *pipeline.Pipeline
	Graph    *graph.Connector
	GreytHR  *greythr.Connector

	rdb *redis.Client
}

// GraphConnector builds the Graph connector for cfg.
func GraphConnector(cfg *config.Config) *graph.Connector {
	return graph.NewConnector(graph.ConnectorConfig{
		TenantID:     cfg.TenantID,
		ClientID:     cfg.BotAppID,
		ClientSecret: cfg.BotAppSecret,
		BaseURL:      cfg.GraphBaseURL,
	})
}

// Build creates the pipeline and its collaborators. console is the handler
// per-run loggers tee their records to; it may be nil.
func Build(ctx context.Context, cfg *config.Config, console slog.Handler) (*App, error) {
	gen, err := llm.New(ctx, llm.Options{
		Provider:      cfg.LLMProvider,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create extraction backend: %w", err)
	}
	slog.Info("extraction backend ready", "backend", gen.Name())

	a := &App{
		Graph: GraphConnector(cfg),
		GreytHR: greythr.NewConnector(greythr.ConnectorConfig{
			APIURL:   cfg.GreytHRAPIURL,
			AuthURL:  cfg.GreytHRAuthURL,
			Domain:   cfg.GreytHRDomain,
			Username: cfg.GreytHRUsername,
			Password: cfg.GreytHRPassword,
		}),
	}

	var dd pipeline.Deduper
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.rdb = redis.NewClient(opt)

		filter := dedup.NewFilter(a.rdb, cfg.DedupTTL)
		if err := filter.Ping(ctx); err != nil {
			a.rdb.Close()
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}
		slog.Info("notification dedup enabled", "ttl", cfg.DedupTTL)
		dd = filter
	}

	a.Pipeline = pipeline.New(pipeline.Config{
		Mailbox:             cfg.MonitoredEmail,
		ResolveThreadOrigin: cfg.ResolveThreadOrigin,
		ConnectMail:         pipeline.ConnectGraph(a.Graph),
		ConnectHR:           pipeline.ConnectGreytHR(a.GreytHR),
		Extractor:           extract.New(gen, cfg.DefaultLeaveType),
		Gate:                policy.NewManagerGate(cfg.ManagerRequired),
		Dedup:               dd,
		RunLogs:             logging.NewRunLogs(cfg.LogDir, logging.ParseLevel(cfg.LogLevel), console),
	})
	return a, nil
}

// Close releases the Redis connection if one was opened.
func (a *App) Close() error {
	if a.rdb == nil {
		return nil
	}
	return a.rdb.Close()
}
