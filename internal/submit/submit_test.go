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

package submit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/leave"
)

type fakeLeaveAPI struct {
	got   []greythr.LeaveTransaction
	reply json.RawMessage
	err   error
}

func (f *fakeLeaveAPI) ApplyLeave(_ context.Context, tx greythr.LeaveTransaction) (json.RawMessage, error) {
	f.got = append(f.got, tx)
	return f.reply, f.err
}

var alice = &greythr.Employee{EmployeeID: "1042", EmployeeNo: "SOL-0042", Name: "Alice", Email: "alice@corp.com"}

func sickLeave() leave.Request {
	return leave.Request{
		FromEmail:   "alice@corp.com",
		FromDate:    "2024-01-10",
		ToDate:      "2024-01-12",
		LeaveType:   "Sick Leave",
		Transaction: leave.Availed,
		Confidence:  leave.ConfidenceHigh,
	}
}

// TestBuildTransaction_Payload verifies the greytHR field mapping.
func TestBuildTransaction_Payload(t *testing.T) {
	tx, err := BuildTransaction(sickLeave(), alice)
	require.NoError(t, err)

	b, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"employeeNo": "SOL-0042",
		"fromDate": "2024-01-10",
		"toDate": "2024-01-12",
		"leaveTypeDescription": "Sick Leave",
		"leaveTransactionTypeDescription": "availed",
		"reason": "Leave request via email"
	}`, string(b))
}

// TestBuildTransaction_Sessions verifies sessions are included only when set.
func TestBuildTransaction_Sessions(t *testing.T) {
	req := sickLeave()
	req.Reason = "Fever"
	req.ToSession = leave.Session(1)

	tx, err := BuildTransaction(req, alice)
	require.NoError(t, err)

	var m map[string]any
	b, _ := json.Marshal(tx)
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "fromSession")
	assert.Equal(t, float64(1), m["toSession"])
	assert.Equal(t, "Fever", m["reason"])
}

// TestSubmit_Success verifies the success result.
func TestSubmit_Success(t *testing.T) {
	api := &fakeLeaveAPI{reply: json.RawMessage(`{"id":99}`)}

	res := Submit(context.Background(), api, sickLeave(), alice)

	require.True(t, res.OK())
	assert.Equal(t, greythr.ID("SOL-0042"), res.Employee.EmployeeNo)
	assert.Equal(t, "Alice", res.Employee.Name)
	assert.JSONEq(t, `{"id":99}`, string(res.Response))
	require.Len(t, api.got, 1)
}

// TestSubmit_MissingField verifies incomplete requests fail before any call.
func TestSubmit_MissingField(t *testing.T) {
	api := &fakeLeaveAPI{}
	req := sickLeave()
	req.LeaveType = ""

	res := Submit(context.Background(), api, req, alice)

	var mf *MissingRequiredFieldError
	require.True(t, errors.As(res.Err, &mf))
	assert.Equal(t, []string{leave.LabelLeaveType}, mf.Fields)
	assert.Empty(t, api.got)
	assert.Equal(t, "alice@corp.com", res.Employee.Email)
	assert.Empty(t, res.Employee.Name)
}

// TestSubmit_BackendError verifies the backend message is kept verbatim.
func TestSubmit_BackendError(t *testing.T) {
	api := &fakeLeaveAPI{err: &greythr.APIError{Status: 400, Body: `{"message":"Leave balance insufficient"}`}}

	res := Submit(context.Background(), api, sickLeave(), alice)

	assert.False(t, res.OK())
	assert.EqualError(t, res.Err, "Leave balance insufficient")
	assert.Equal(t, "alice@corp.com", res.Employee.Email)
}
