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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAI calls the OpenAI Responses API.
type OpenAI struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewOpenAI creates a Responses API client. baseURL is the API root,
// e.g. https://api.openai.com/v1.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	return &OpenAI{
		http:    &http.Client{Timeout: 120 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (o *OpenAI) Name() string { return "OpenAI:" + o.model }

type responsesReq struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type responsesResp struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt as the sole input and returns the concatenated
// output text.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	b, err := json.Marshal(responsesReq{Model: o.model, Input: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal responses request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/responses", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build responses request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.http.Do(req)
	if err != nil {
		return "", &BackendError{Provider: "OpenAI", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read responses body: %w", err)
	}

	var out responsesResp
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		return "", &BackendError{Provider: "OpenAI", Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode responses body: %w", decodeErr)
	}

	if out.OutputText != "" {
		return out.OutputText, nil
	}

	var sb strings.Builder
	for _, item := range out.Output {
		for _, c := range item.Content {
			sb.WriteString(c.Text)
		}
	}
	return sb.String(), nil
}
