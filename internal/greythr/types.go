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

package greythr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a greytHR identifier. The API returns some IDs as numbers and some
// as strings, so both decode into the same string form.
type ID string

func (i *ID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*i = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*i = ID(v)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("greytHR id: %w", err)
		}
		*i = ID(n.String())
	}
	return nil
}

// Employee is the lookup view of a greytHR employee. EmployeeID is the
// internal key used in URLs; EmployeeNo is the organization's employee
// number used in leave transactions.
type Employee struct {
	EmployeeID ID     `json:"employeeId"`
	EmployeeNo ID     `json:"employeeNo"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// OrgTreeNode is one manager in an employee's reporting chain. Level 0 is
// the direct manager, negative levels are further up.
type OrgTreeNode struct {
	Manager Employee `json:"manager"`
	Level   int      `json:"level"`
}

// LeaveTransaction is the body of POST leave/v2/employee/transactions.
type LeaveTransaction struct {
	EmployeeNo                      string `json:"employeeNo"`
	FromDate                        string `json:"fromDate"`
	ToDate                          string `json:"toDate"`
	LeaveTypeDescription            string `json:"leaveTypeDescription"`
	LeaveTransactionTypeDescription string `json:"leaveTransactionTypeDescription"`
	Reason                          string `json:"reason"`
	FromSession                     *int   `json:"fromSession,omitempty"`
	ToSession                       *int   `json:"toSession,omitempty"`
}

// APIError is a non-2xx greytHR response.
type APIError struct {
	Method   string
	Endpoint string
	Status   int
	Body     string
}

// Error returns greytHR's own message when the body carries one.
func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return msg
	}
	return fmt.Sprintf("greytHR API returned HTTP %d for %s %s", e.Status, e.Method, e.Endpoint)
}

// Message extracts the error text from the common greytHR error shapes.
func (e *APIError) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return strings.TrimSpace(e.Body)
	}
	switch v := body.Error.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if m, ok := v["message"].(string); ok && m != "" {
			return m
		}
	}
	return body.Message
}
