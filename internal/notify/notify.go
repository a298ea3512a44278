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

// Package notify renders the reply emails sent back into a leave thread and
// delivers them through Graph. Rendering is pure; a failed send is logged
// and never escalated.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/leave"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/models"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/policy"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/submit"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Kind names a reply variant.
type Kind string

const (
	KindSuccess          Kind = "success"
	KindFailure          Kind = "failure"
	KindMissingFields    Kind = "missing_fields"
	KindError            Kind = "error"
	KindApprovalRequired Kind = "approval_required"
)

// Replier sends a reply in the thread of a message.
type Replier interface {
	Reply(ctx context.Context, mailbox, messageID string, reply models.ReplyMessage) error
}

// Notifier replies to leave emails on behalf of the monitored mailbox.
type Notifier struct {
	replier Replier
	mailbox string
}

// New creates a Notifier replying as mailbox.
func New(replier Replier, mailbox string) *Notifier {
	return &Notifier{replier: replier, mailbox: mailbox}
}

// Success confirms a submitted leave.
func (n *Notifier) Success(ctx context.Context, email *models.Message, to string, res submit.Result) {
	n.send(ctx, KindSuccess, email, to, res)
}

type failureData struct {
	Employee greythr.Employee
	Request  leave.Request
	Error    string
}

// Failure reports a rejected submission with greytHR's message.
func (n *Notifier) Failure(ctx context.Context, email *models.Message, to string, res submit.Result) {
	msg := "Unknown error"
	if res.Err != nil {
		msg = res.Err.Error()
	}
	n.send(ctx, KindFailure, email, to, failureData{Employee: res.Employee, Request: res.Request, Error: msg})
}

// MissingFields lists the fields the requester still has to give.
func (n *Notifier) MissingFields(ctx context.Context, email *models.Message, to string, fields []string) {
	n.send(ctx, KindMissingFields, email, to, struct{ Fields []string }{fields})
}

// Error reports a processing failure that is not tied to one submission.
func (n *Notifier) Error(ctx context.Context, email *models.Message, to, message string) {
	n.send(ctx, KindError, email, to, struct{ Message string }{message})
}

type approvalData struct {
	Employee     greythr.Employee
	ManagerName  string
	ManagerEmail string
}

// ApprovalRequired tells the requester their manager must be on the email.
func (n *Notifier) ApprovalRequired(ctx context.Context, email *models.Message, to string, employee *greythr.Employee, d policy.Decision) {
	n.send(ctx, KindApprovalRequired, email, to, approvalData{
		Employee:     *employee,
		ManagerName:  d.ManagerName,
		ManagerEmail: d.ManagerEmail,
	})
}

func (n *Notifier) send(ctx context.Context, kind Kind, email *models.Message, to string, data any) {
	log := logging.FromContext(ctx)

	reply, err := Build(kind, email, to, n.mailbox, data)
	if err != nil {
		log.Error("failed to render notification", "kind", kind, "error", err)
		return
	}

	if err := n.replier.Reply(ctx, n.mailbox, email.ID, reply); err != nil {
		log.Error("failed to send notification",
			"kind", kind,
			"to", to,
			"message_id", email.ID,
			"error", err,
		)
		return
	}

	log.Info("notification sent",
		"kind", kind,
		"to", to,
		"cc", len(reply.Message.CcRecipients),
	)
}

// Build renders a reply of the given kind to email, addressed to requester.
func Build(kind Kind, email *models.Message, requester, mailbox string, data any) (models.ReplyMessage, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind)+".html", data); err != nil {
		return models.ReplyMessage{}, fmt.Errorf("render %s: %w", kind, err)
	}

	return models.ReplyMessage{
		Message: models.ReplyContent{
			Subject:      "RE: " + email.Subject,
			Body:         models.ItemBody{ContentType: "HTML", Content: buf.String()},
			ToRecipients: models.Addresses(requester),
			CcRecipients: models.Addresses(CC(email, requester, mailbox)...),
		},
	}, nil
}

// CC returns every to and cc address of email except the monitored mailbox
// and the requester, compared case-insensitively and without duplicates.
func CC(email *models.Message, requester, mailbox string) []string {
	seen := map[string]bool{
		strings.ToLower(strings.TrimSpace(requester)): true,
		strings.ToLower(strings.TrimSpace(mailbox)):   true,
	}

	var out []string
	for _, addr := range email.Recipients() {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}
