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

package leave

// OutcomeKind tags the three results of extracting requests from an email.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeMissingFields
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeMissingFields:
		return "missing_fields"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is a tagged result. Only the fields belonging to Kind are set.
type Outcome struct {
	Kind     OutcomeKind
	Requests []Request
	Fields   []string
	Message  string
}

// OK wraps a validated batch.
func OK(reqs []Request) Outcome {
	return Outcome{Kind: OutcomeOK, Requests: reqs}
}

// MissingFields wraps the labels reported by ValidateBatch.
func MissingFields(fields []string) Outcome {
	return Outcome{Kind: OutcomeMissingFields, Fields: fields}
}

// Failure wraps a message safe to show the requester.
func Failure(msg string) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: msg}
}

// Classify validates a batch and picks the matching outcome.
func Classify(reqs []Request) Outcome {
	res := ValidateBatch(reqs)
	if !res.Valid {
		return MissingFields(res.MissingFields)
	}
	return OK(reqs)
}
