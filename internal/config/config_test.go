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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"BOT_APP_ID", "BOT_APP_SECRET", "TENANT_ID", "GRAPH_BASE_URL",
	"LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "GEMINI_API_KEY", "GEMINI_MODEL",
	"PUBLIC_URL", "CLIENT_STATE", "PORT", "USE_HTTPS", "SSL_CERT_PATH", "SSL_KEY_PATH",
	"MONITORED_EMAIL", "DEFAULT_LEAVE_TYPE", "MANAGER_REQUIRED", "RESOLVE_THREAD_ORIGIN",
	"GREYTHR_API_URL", "GREYTHR_AUTH_URL", "GREYTHR_DOMAIN", "GREYTHR_USERNAME", "GREYTHR_PASSWORD",
	"LOG_DIR", "LOG_LEVEL", "REDIS_URL", "DEDUP_TTL", "CONFIG_PATH",
}

// clearEnv unsets every config key for the test and points DOTENV_PATH at
// a file that does not exist.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
}

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"BOT_APP_ID":       "app-id",
		"BOT_APP_SECRET":   "app-secret",
		"TENANT_ID":        "tenant",
		"OPENAI_API_KEY":   "sk-test",
		"PUBLIC_URL":       "https://bot.example.com/",
		"CLIENT_STATE":     "s3cret-state",
		"MONITORED_EMAIL":  "leaves@corp.com",
		"GREYTHR_AUTH_URL": "https://corp.greythr.com",
		"GREYTHR_DOMAIN":   "corp.greythr.com",
		"GREYTHR_USERNAME": "api-user",
		"GREYTHR_PASSWORD": "api-pass",
	} {
		t.Setenv(k, v)
	}
}

// TestLoad_ReportsEveryMissingKey verifies the startup failure message.
func TestLoad_ReportsEveryMissingKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t,
		"missing required configuration: BOT_APP_ID, BOT_APP_SECRET, TENANT_ID, OPENAI_API_KEY, PUBLIC_URL, "+
			"CLIENT_STATE, MONITORED_EMAIL, GREYTHR_AUTH_URL, GREYTHR_DOMAIN, GREYTHR_USERNAME, GREYTHR_PASSWORD",
		err.Error())
}

// TestLoad_Defaults verifies defaults when only required keys are set.
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-5-nano", cfg.OpenAIModel)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 3978, cfg.Port)
	assert.False(t, cfg.UseHTTPS)
	assert.Equal(t, "Sick Leave", cfg.DefaultLeaveType)
	assert.False(t, cfg.ManagerRequired)
	assert.Equal(t, "https://api.greythr.com/", cfg.GreytHRAPIURL)
	assert.Equal(t, "https://graph.microsoft.com/v1.0", cfg.GraphBaseURL)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, 24*time.Hour, cfg.DedupTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "https://bot.example.com/email-notification", cfg.NotificationURL())
}

// TestLoad_ConditionalKeys verifies provider and TLS dependent requirements.
func TestLoad_ConditionalKeys(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("USE_HTTPS", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, "missing required configuration: GEMINI_API_KEY, SSL_CERT_PATH, SSL_KEY_PATH", err.Error())

	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("SSL_CERT_PATH", "/certs/tls.crt")
	t.Setenv("SSL_KEY_PATH", "/certs/tls.key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.True(t, cfg.UseHTTPS)
}

// TestLoad_InvalidProvider verifies enumerated values are checked.
func TestLoad_InvalidProvider(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("LLM_PROVIDER", "claude")

	_, err := Load()
	assert.EqualError(t, err, "invalid configuration: LLM_PROVIDER (oneof)")
}

// TestLoad_YAMLWithEnvOverride verifies YAML loading, ${VAR} expansion and
// environment precedence.
func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
manager_required: true
default_leave_type: Casual Leave
port: 8443
dedup_ttl: 2h
redis_url: ${TEST_REDIS_URL}
log_dir: /var/log/leaves
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TEST_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("LOG_DIR", "/tmp/leaves")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ManagerRequired)
	assert.Equal(t, "Casual Leave", cfg.DefaultLeaveType)
	assert.Equal(t, 8443, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.DedupTTL)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, "/tmp/leaves", cfg.LogDir)
}

// TestLoad_DotEnv verifies .env values are picked up.
func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("BOT_APP_ID", "")
	os.Unsetenv("BOT_APP_ID")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_APP_ID=from-dotenv\nMANAGER_REQUIRED=true\n"), 0o600))
	t.Setenv("DOTENV_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.BotAppID)
	assert.True(t, cfg.ManagerRequired)
}
