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
	"testing"

	"github.com/stretchr/testify/assert"
)

func complete() Request {
	return Request{
		FromEmail:   "alice@corp.com",
		FromDate:    "2024-01-10",
		ToDate:      "2024-01-12",
		LeaveType:   "Sick Leave",
		Transaction: Availed,
		Confidence:  ConfidenceHigh,
	}
}

// TestValidate_Labels verifies each missing field maps to its label in order.
func TestValidate_Labels(t *testing.T) {
	res := Validate(Request{Confidence: ConfidenceMedium})

	assert.False(t, res.Valid)
	assert.Equal(t, []string{LabelFromDate, LabelToDate, LabelLeaveType, LabelTransaction}, res.MissingFields)
	assert.Equal(t, ConfidenceMedium, res.Confidence)
}

// TestValidate_CompleteRequest verifies a full request passes.
func TestValidate_CompleteRequest(t *testing.T) {
	res := Validate(complete())

	assert.True(t, res.Valid)
	assert.Empty(t, res.MissingFields)
	assert.True(t, complete().Complete())
}

// TestValidateBatch verifies all-or-nothing batch validation.
func TestValidateBatch(t *testing.T) {
	noType := complete()
	noType.LeaveType = ""
	noDates := complete()
	noDates.FromDate, noDates.ToDate = "", ""

	tests := []struct {
		name        string
		reqs        []Request
		wantValid   bool
		wantMissing []string
	}{
		{
			name:      "empty batch",
			reqs:      nil,
			wantValid: true,
		},
		{
			name:      "single complete",
			reqs:      []Request{complete()},
			wantValid: true,
		},
		{
			name:        "single incomplete has no prefix",
			reqs:        []Request{noType},
			wantMissing: []string{"Leave Type"},
		},
		{
			name:        "second of two missing leave type",
			reqs:        []Request{complete(), noType},
			wantMissing: []string{"Leave request 2: Leave Type"},
		},
		{
			name: "several incomplete members aggregate",
			reqs: []Request{noDates, complete(), noType},
			wantMissing: []string{
				"Leave request 1: From Date",
				"Leave request 1: To Date",
				"Leave request 3: Leave Type",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateBatch(tt.reqs)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantMissing, res.MissingFields)

			// A batch is invalid iff some member is invalid.
			anyInvalid := false
			for _, r := range tt.reqs {
				if !Validate(r).Valid {
					anyInvalid = true
				}
			}
			assert.Equal(t, anyInvalid, !res.Valid)
		})
	}
}

// TestValidateBatch_LowestConfidence verifies the batch reports its weakest member.
func TestValidateBatch_LowestConfidence(t *testing.T) {
	med := complete()
	med.Confidence = ConfidenceMedium
	unknown := complete()
	unknown.Confidence = ""

	assert.Equal(t, ConfidenceMedium, ValidateBatch([]Request{complete(), med}).Confidence)
	assert.Equal(t, ConfidenceLow, ValidateBatch([]Request{complete(), unknown}).Confidence)
	assert.Equal(t, ConfidenceHigh, ValidateBatch([]Request{complete()}).Confidence)
}

// TestClassify verifies the tagged outcome chosen for a batch.
func TestClassify(t *testing.T) {
	noType := complete()
	noType.LeaveType = ""

	ok := Classify([]Request{complete()})
	assert.Equal(t, OutcomeOK, ok.Kind)
	assert.Len(t, ok.Requests, 1)

	missing := Classify([]Request{complete(), noType})
	assert.Equal(t, OutcomeMissingFields, missing.Kind)
	assert.Equal(t, []string{"Leave request 2: Leave Type"}, missing.Fields)
	assert.Empty(t, missing.Requests)

	assert.Equal(t, "failure", Failure("boom").Kind.String())
}

// TestMissingFieldsError verifies the error text lists every field.
func TestMissingFieldsError(t *testing.T) {
	err := &MissingFieldsError{Fields: []string{"From Date", "Leave Type"}}
	assert.EqualError(t, err, "missing required fields: From Date, Leave Type")
}
