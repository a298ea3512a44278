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

// Package leave defines the leave request model extracted from email and
// the rules that decide whether a request is complete enough to submit.
package leave

// Transaction is the greytHR transaction type for a leave entry.
type Transaction string

const (
	Availed   Transaction = "availed"
	Cancelled Transaction = "cancelled"
)

// Confidence is the extractor's self-reported certainty. Advisory only.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// rank orders confidence levels so a batch can report its weakest member.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// orLow maps unknown values to ConfidenceLow.
func (c Confidence) orLow() Confidence {
	if c.rank() == 0 {
		return ConfidenceLow
	}
	return c
}

// Request is one leave entry. Empty strings stand for unknown values and
// nil sessions mean a full day at that endpoint.
type Request struct {
	FromEmail   string      `json:"fromEmail"`
	FromDate    string      `json:"fromDate"`
	ToDate      string      `json:"toDate"`
	LeaveType   string      `json:"leaveType"`
	Transaction Transaction `json:"transaction"`
	Reason      string      `json:"reason,omitempty"`
	Confidence  Confidence  `json:"confidence"`
	FromSession *int        `json:"fromSession,omitempty"`
	ToSession   *int        `json:"toSession,omitempty"`
}

// Session returns a pointer to s for use in Request literals.
func Session(s int) *int {
	return &s
}

// Complete reports whether every field required for submission is set.
func (r Request) Complete() bool {
	return len(r.missing()) == 0
}

// missing returns the user-facing labels of the unset required fields.
func (r Request) missing() []string {
	var out []string
	if r.FromDate == "" {
		out = append(out, LabelFromDate)
	}
	if r.ToDate == "" {
		out = append(out, LabelToDate)
	}
	if r.LeaveType == "" {
		out = append(out, LabelLeaveType)
	}
	if r.Transaction == "" {
		out = append(out, LabelTransaction)
	}
	return out
}
