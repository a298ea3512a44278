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

package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/leave"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/llm"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/models"
)

// ErrNoRequests means the model returned an empty list.
var ErrNoRequests = errors.New("no leave request found in the email")

// Extractor asks a language model for the leave requests in an email.
type Extractor struct {
	gen              llm.Generator
	defaultLeaveType string
}

// New creates an Extractor. defaultLeaveType is the leave type the model is
// told to assume when none is stated.
func New(gen llm.Generator, defaultLeaveType string) *Extractor {
	return &Extractor{gen: gen, defaultLeaveType: defaultLeaveType}
}

// Extract returns the coerced candidate requests in msg, in the order the
// model listed them. Backend failures come back as *llm.BackendError and
// unusable answers as *ResponseFormatError.
func (e *Extractor) Extract(ctx context.Context, msg *models.Message) ([]leave.Request, error) {
	log := logging.FromContext(ctx)

	content := EmailContent{
		From:    msg.Sender(),
		Subject: msg.Subject,
		Body:    Normalize(msg.Body.Content, msg.BodyPreview),
	}
	prompt := BuildPrompt(content, e.defaultLeaveType)

	log.Info("extracting leave requests",
		"backend", e.gen.Name(),
		"body_len", len(content.Body),
	)

	text, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	log.Debug("model response", "response", text)

	reqs, err := ParseResponse(text, content.From)
	if err != nil {
		log.Warn("model response was not JSON", "response", text)
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, ErrNoRequests
	}

	log.Info("leave requests extracted", "count", len(reqs))
	return reqs, nil
}

// Outcome runs Extract and validates the batch, folding every result into
// the tagged leave.Outcome the pipeline switches on.
func (e *Extractor) Outcome(ctx context.Context, msg *models.Message) leave.Outcome {
	reqs, err := e.Extract(ctx, msg)
	if err != nil {
		return leave.Failure(failureMessage(err))
	}

	res := leave.ValidateBatch(reqs)
	logging.FromContext(ctx).Info("leave batch validated",
		"valid", res.Valid,
		"missing_fields", res.MissingFields,
		"confidence", res.Confidence,
	)
	if !res.Valid {
		return leave.MissingFields(res.MissingFields)
	}
	return leave.OK(reqs)
}

// failureMessage picks the text shown to the requester.
func failureMessage(err error) string {
	var be *llm.BackendError
	var fe *ResponseFormatError
	switch {
	case errors.As(err, &be):
		return be.Error()
	case errors.As(err, &fe):
		return fe.Error()
	default:
		return err.Error()
	}
}
