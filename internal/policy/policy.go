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

// Package policy holds the organisational checks run before a leave is
// submitted: the manager-in-the-loop rule and the mailbox self-loop guard.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
)

// OrgDirectory is the part of greytHR the manager gate reads.
type OrgDirectory interface {
	OrgTree(ctx context.Context, id greythr.ID) ([]greythr.OrgTreeNode, error)
	GetEmployee(ctx context.Context, id greythr.ID) (*greythr.Employee, error)
}

// Decision is the manager gate verdict for one requester.
type Decision struct {
	Allowed      bool
	ManagerName  string
	ManagerEmail string
}

// ManagerGate requires the requester's direct manager to be on the email.
type ManagerGate struct {
	required bool
}

// NewManagerGate creates a gate. When required is false every check passes
// without touching greytHR.
func NewManagerGate(required bool) *ManagerGate {
	return &ManagerGate{required: required}
}

// Check looks up employee's level-0 manager and tests whether their address
// is among recipients. Missing org data passes with a warning; only a known
// manager who is absent from recipients is rejected.
func (g *ManagerGate) Check(ctx context.Context, dir OrgDirectory, employee *greythr.Employee, recipients []string) (Decision, error) {
	if !g.required {
		return Decision{Allowed: true}, nil
	}
	log := logging.FromContext(ctx)

	nodes, err := dir.OrgTree(ctx, employee.EmployeeID)
	if err != nil {
		return Decision{}, fmt.Errorf("org tree for %s: %w", employee.EmployeeID, err)
	}

	var direct *greythr.OrgTreeNode
	for i := range nodes {
		if nodes[i].Level == 0 {
			direct = &nodes[i]
			break
		}
	}
	if direct == nil {
		log.Warn("no direct manager in org tree, skipping approval check",
			"employee_id", employee.EmployeeID,
			"entries", len(nodes),
		)
		return Decision{Allowed: true}, nil
	}

	mgr := direct.Manager
	if mgr.Email == "" && mgr.EmployeeID != "" {
		full, err := dir.GetEmployee(ctx, mgr.EmployeeID)
		if err != nil {
			return Decision{}, fmt.Errorf("manager %s: %w", mgr.EmployeeID, err)
		}
		mgr = *full
	}
	if mgr.Email == "" {
		log.Warn("direct manager has no email, skipping approval check",
			"employee_id", employee.EmployeeID,
			"manager_id", mgr.EmployeeID,
		)
		return Decision{Allowed: true, ManagerName: mgr.Name}, nil
	}

	d := Decision{
		Allowed:      containsFold(recipients, mgr.Email),
		ManagerName:  mgr.Name,
		ManagerEmail: mgr.Email,
	}
	log.Info("manager approval checked",
		"employee_id", employee.EmployeeID,
		"manager_email", mgr.Email,
		"allowed", d.Allowed,
	)
	return d, nil
}

// IsSelfLoop reports whether a message was sent by the monitored mailbox
// itself, e.g. one of the bot's own replies.
func IsSelfLoop(sender, mailbox string) bool {
	return sender != "" && strings.EqualFold(strings.TrimSpace(sender), strings.TrimSpace(mailbox))
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
