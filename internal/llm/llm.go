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

// Package llm wraps the text-generation backends used to read leave
// requests out of email. Each backend turns one prompt into one text
// completion and reports backend failures as *BackendError.
package llm

import (
	"context"
	"fmt"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// BackendError carries the backend's own error message. The message is
// shown to requesters verbatim.
type BackendError struct {
	Provider string
	Status   int
	Message  string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

// Options selects and configures a backend.
type Options struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
}

// New builds the Generator named by opts.Provider.
func New(ctx context.Context, opts Options) (Generator, error) {
	switch opts.Provider {
	case ProviderOpenAI, "":
		return NewOpenAI(opts.OpenAIAPIKey, opts.OpenAIModel, opts.OpenAIBaseURL), nil
	case ProviderGemini:
		return NewGemini(ctx, opts.GeminiAPIKey, opts.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
}
