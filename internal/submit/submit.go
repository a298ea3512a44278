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

// Package submit maps validated leave requests onto greytHR leave
// transactions and posts them.
package submit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/leave"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
)

// DefaultReason is sent when the requester gave no reason.
const DefaultReason = "Leave request via email"

// LeaveAPI posts leave transactions.
type LeaveAPI interface {
	ApplyLeave(ctx context.Context, tx greythr.LeaveTransaction) (json.RawMessage, error)
}

// MissingRequiredFieldError means a request reached submission incomplete.
type MissingRequiredFieldError struct {
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return "missing required leave details: " + strings.Join(e.Fields, ", ")
}

// Result is the outcome of one submission. Err is nil on success. On
// failure Employee carries only the requester email.
type Result struct {
	Request  leave.Request
	Employee greythr.Employee
	Response json.RawMessage
	Err      error
}

// OK reports whether greytHR accepted the transaction.
func (r Result) OK() bool {
	return r.Err == nil
}

// BuildTransaction maps req to the greytHR payload for employee.
func BuildTransaction(req leave.Request, employee *greythr.Employee) (greythr.LeaveTransaction, error) {
	if missing := leave.Validate(req).MissingFields; len(missing) > 0 {
		return greythr.LeaveTransaction{}, &MissingRequiredFieldError{Fields: missing}
	}

	reason := req.Reason
	if reason == "" {
		reason = DefaultReason
	}

	return greythr.LeaveTransaction{
		EmployeeNo:                      string(employee.EmployeeNo),
		FromDate:                        req.FromDate,
		ToDate:                          req.ToDate,
		LeaveTypeDescription:            req.LeaveType,
		LeaveTransactionTypeDescription: string(req.Transaction),
		Reason:                          reason,
		FromSession:                     req.FromSession,
		ToSession:                       req.ToSession,
	}, nil
}

// Submit posts one request for employee. Failures are reported in the
// returned Result, not as an error.
func Submit(ctx context.Context, api LeaveAPI, req leave.Request, employee *greythr.Employee) Result {
	log := logging.FromContext(ctx)
	failed := func(err error) Result {
		log.Error("leave submission failed",
			"employee_email", req.FromEmail,
			"from_date", req.FromDate,
			"to_date", req.ToDate,
			"error", err,
		)
		return Result{Request: req, Employee: greythr.Employee{Email: req.FromEmail}, Err: err}
	}

	tx, err := BuildTransaction(req, employee)
	if err != nil {
		return failed(err)
	}

	log.Info("submitting leave transaction",
		"employee_no", tx.EmployeeNo,
		"leave_type", tx.LeaveTypeDescription,
		"transaction", tx.LeaveTransactionTypeDescription,
		"from_date", tx.FromDate,
		"to_date", tx.ToDate,
	)

	resp, err := api.ApplyLeave(ctx, tx)
	if err != nil {
		return failed(err)
	}

	log.Info("leave submitted",
		"employee_no", tx.EmployeeNo,
		"employee_name", employee.Name,
	)

	return Result{
		Request: req,
		Employee: greythr.Employee{
			EmployeeID: employee.EmployeeID,
			EmployeeNo: employee.EmployeeNo,
			Name:       employee.Name,
			Email:      req.FromEmail,
		},
		Response: resp,
	}
}
