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

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenAI_OutputText verifies the convenience output_text field is used.
func TestOpenAI_OutputText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body responsesReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-5-nano", body.Model)
		assert.Equal(t, "extract this", body.Input)

		w.Write([]byte(`{"output_text": "[{\"fromDate\":\"2024-01-10\"}]"}`))
	}))
	defer srv.Close()

	c := NewOpenAI("sk-test", "gpt-5-nano", srv.URL+"/")
	text, err := c.Generate(context.Background(), "extract this")

	require.NoError(t, err)
	assert.Equal(t, `[{"fromDate":"2024-01-10"}]`, text)
	assert.Equal(t, "OpenAI:gpt-5-nano", c.Name())
}

// TestOpenAI_OutputItems verifies text is assembled from output content parts.
func TestOpenAI_OutputItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output": [
			{"type": "reasoning", "content": []},
			{"type": "message", "content": [{"type": "output_text", "text": "[1,"}, {"type": "output_text", "text": "2]"}]}
		]}`))
	}))
	defer srv.Close()

	text, err := NewOpenAI("k", "m", srv.URL).Generate(context.Background(), "p")

	require.NoError(t, err)
	assert.Equal(t, "[1,2]", text)
}

// TestOpenAI_BackendError verifies the backend message is passed through.
func TestOpenAI_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI("bad", "m", srv.URL).Generate(context.Background(), "p")

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnauthorized, be.Status)
	assert.Equal(t, "Incorrect API key provided", be.Message)
	assert.EqualError(t, err, "OpenAI API error: Incorrect API key provided")
}

// TestNew_UnknownProvider verifies provider selection rejects unknown names.
func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Options{Provider: "claude"})
	assert.Error(t, err)

	g, err := New(context.Background(), Options{Provider: ProviderOpenAI, OpenAIModel: "gpt-5-nano"})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI:gpt-5-nano", g.Name())
}
