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

import (
	"fmt"
	"strings"
)

// Labels used when reporting missing fields back to the requester.
const (
	LabelFromDate    = "From Date"
	LabelToDate      = "To Date"
	LabelLeaveType   = "Leave Type"
	LabelTransaction = "Transaction Type (availed/cancelled)"
)

// ValidationResult describes whether a request or batch can be submitted.
type ValidationResult struct {
	Valid         bool       `json:"valid"`
	MissingFields []string   `json:"missingFields"`
	Confidence    Confidence `json:"confidence"`
}

// Validate checks a single request.
func Validate(r Request) ValidationResult {
	missing := r.missing()
	return ValidationResult{
		Valid:         len(missing) == 0,
		MissingFields: missing,
		Confidence:    r.Confidence,
	}
}

// ValidateBatch checks every request and fails the whole batch when any
// member is incomplete. With more than one request each label is prefixed
// with "Leave request k: " (1-indexed). The batch confidence is the lowest
// member confidence.
func ValidateBatch(reqs []Request) ValidationResult {
	res := ValidationResult{Valid: true, Confidence: ConfidenceLow}
	if len(reqs) == 0 {
		return res
	}

	res.Confidence = ConfidenceHigh
	for i, r := range reqs {
		if c := r.Confidence.orLow(); c.rank() < res.Confidence.rank() {
			res.Confidence = c
		}

		for _, label := range r.missing() {
			if len(reqs) > 1 {
				label = fmt.Sprintf("Leave request %d: %s", i+1, label)
			}
			res.MissingFields = append(res.MissingFields, label)
		}
	}

	res.Valid = len(res.MissingFields) == 0
	return res
}

// MissingFieldsError reports the labels a requester still has to supply.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}
