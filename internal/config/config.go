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

// Package config loads the bot's settings from a .env file, an optional
// config.yaml and the process environment, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the leaves bot.
type Config struct {
	// Microsoft Graph app registration
	BotAppID     string `yaml:"bot_app_id" env:"BOT_APP_ID" validate:"required"`
	BotAppSecret string `yaml:"bot_app_secret" env:"BOT_APP_SECRET" validate:"required"`
	TenantID     string `yaml:"tenant_id" env:"TENANT_ID" validate:"required"`
	GraphBaseURL string `yaml:"graph_base_url" env:"GRAPH_BASE_URL" validate:"required,url"`

	// Extraction backend
	LLMProvider   string `yaml:"llm_provider" env:"LLM_PROVIDER" validate:"oneof=openai gemini"`
	OpenAIAPIKey  string `yaml:"openai_api_key" env:"OPENAI_API_KEY" validate:"required_if=LLMProvider openai"`
	OpenAIModel   string `yaml:"openai_model" env:"OPENAI_MODEL"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" validate:"required_if=LLMProvider openai"`
	GeminiAPIKey  string `yaml:"gemini_api_key" env:"GEMINI_API_KEY" validate:"required_if=LLMProvider gemini"`
	GeminiModel   string `yaml:"gemini_model" env:"GEMINI_MODEL"`

	// Webhook server
	PublicURL   string `yaml:"public_url" env:"PUBLIC_URL" validate:"required"`
	ClientState string `yaml:"client_state" env:"CLIENT_STATE" validate:"required"`
	Port        int    `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	UseHTTPS    bool   `yaml:"use_https" env:"USE_HTTPS"`
	SSLCertPath string `yaml:"ssl_cert_path" env:"SSL_CERT_PATH" validate:"required_if=UseHTTPS true"`
	SSLKeyPath  string `yaml:"ssl_key_path" env:"SSL_KEY_PATH" validate:"required_if=UseHTTPS true"`

	// Leave policy
	MonitoredEmail      string `yaml:"monitored_email" env:"MONITORED_EMAIL" validate:"required"`
	DefaultLeaveType    string `yaml:"default_leave_type" env:"DEFAULT_LEAVE_TYPE"`
	ManagerRequired     bool   `yaml:"manager_required" env:"MANAGER_REQUIRED"`
	ResolveThreadOrigin bool   `yaml:"resolve_thread_origin" env:"RESOLVE_THREAD_ORIGIN"`

	// greytHR
	GreytHRAPIURL   string `yaml:"greythr_api_url" env:"GREYTHR_API_URL" validate:"required"`
	GreytHRAuthURL  string `yaml:"greythr_auth_url" env:"GREYTHR_AUTH_URL" validate:"required"`
	GreytHRDomain   string `yaml:"greythr_domain" env:"GREYTHR_DOMAIN" validate:"required"`
	GreytHRUsername string `yaml:"greythr_username" env:"GREYTHR_USERNAME" validate:"required"`
	GreytHRPassword string `yaml:"greythr_password" env:"GREYTHR_PASSWORD" validate:"required"`

	// Logging
	LogDir   string `yaml:"log_dir" env:"LOG_DIR"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Notification dedup (optional)
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	DedupTTL time.Duration `yaml:"dedup_ttl" env:"DEDUP_TTL"`
}

// Defaults returns a Config holding every default value.
func Defaults() *Config {
	return &Config{
		GraphBaseURL:     "https://graph.microsoft.com/v1.0",
		LLMProvider:      "openai",
		OpenAIModel:      "gpt-5-nano",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		GeminiModel:      "gemini-2.5-flash",
		Port:             3978,
		DefaultLeaveType: "Sick Leave",
		GreytHRAPIURL:    "https://api.greythr.com/",
		LogDir:           "logs",
		LogLevel:         "info",
		DedupTTL:         24 * time.Hour,
	}
}

// Load reads .env (DOTENV_PATH, default ".env"), then the YAML file named by
// CONFIG_PATH if set (with ${VAR} expansion), then environment variables,
// and validates the result. Every missing required key is reported.
func Load() (*Config, error) {
	dotenvPath := envOrDefault("DOTENV_PATH", ".env")
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.BotAppID = envOrDefault("BOT_APP_ID", c.BotAppID)
	c.BotAppSecret = envOrDefault("BOT_APP_SECRET", c.BotAppSecret)
	c.TenantID = envOrDefault("TENANT_ID", c.TenantID)
	c.GraphBaseURL = envOrDefault("GRAPH_BASE_URL", c.GraphBaseURL)

	c.LLMProvider = strings.ToLower(envOrDefault("LLM_PROVIDER", c.LLMProvider))
	c.OpenAIAPIKey = envOrDefault("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIModel = envOrDefault("OPENAI_MODEL", c.OpenAIModel)
	c.OpenAIBaseURL = envOrDefault("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.GeminiAPIKey = envOrDefault("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = envOrDefault("GEMINI_MODEL", c.GeminiModel)

	c.PublicURL = strings.TrimRight(envOrDefault("PUBLIC_URL", c.PublicURL), "/")
	c.ClientState = envOrDefault("CLIENT_STATE", c.ClientState)
	c.Port = envOrDefaultInt("PORT", c.Port)
	c.UseHTTPS = envOrDefaultBool("USE_HTTPS", c.UseHTTPS)
	c.SSLCertPath = envOrDefault("SSL_CERT_PATH", c.SSLCertPath)
	c.SSLKeyPath = envOrDefault("SSL_KEY_PATH", c.SSLKeyPath)

	c.MonitoredEmail = envOrDefault("MONITORED_EMAIL", c.MonitoredEmail)
	c.DefaultLeaveType = envOrDefault("DEFAULT_LEAVE_TYPE", c.DefaultLeaveType)
	c.ManagerRequired = envOrDefaultBool("MANAGER_REQUIRED", c.ManagerRequired)
	c.ResolveThreadOrigin = envOrDefaultBool("RESOLVE_THREAD_ORIGIN", c.ResolveThreadOrigin)

	c.GreytHRAPIURL = envOrDefault("GREYTHR_API_URL", c.GreytHRAPIURL)
	c.GreytHRAuthURL = envOrDefault("GREYTHR_AUTH_URL", c.GreytHRAuthURL)
	c.GreytHRDomain = envOrDefault("GREYTHR_DOMAIN", c.GreytHRDomain)
	c.GreytHRUsername = envOrDefault("GREYTHR_USERNAME", c.GreytHRUsername)
	c.GreytHRPassword = envOrDefault("GREYTHR_PASSWORD", c.GreytHRPassword)

	c.LogDir = envOrDefault("LOG_DIR", c.LogDir)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)

	c.RedisURL = envOrDefault("REDIS_URL", c.RedisURL)
	c.DedupTTL = envOrDefaultDuration("DEDUP_TTL", c.DedupTTL)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("env")
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks required keys and value ranges. Missing keys are listed
// by their environment variable names.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			missing = append(missing, fe.Field())
		default:
			invalid = append(invalid, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}

	var msgs []string
	if len(missing) > 0 {
		msgs = append(msgs, "missing required configuration: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		msgs = append(msgs, "invalid configuration: "+strings.Join(invalid, ", "))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// NotificationURL is the webhook address Graph subscriptions deliver to.
func (c *Config) NotificationURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/email-notification"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
