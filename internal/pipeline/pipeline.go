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

// Package pipeline runs one leave email from notification to reply: fetch
// the message, drop the bot's own mail, extract and validate requests, check
// manager approval, submit each request to greytHR and reply in the thread.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/greythr"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/leave"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/models"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/notify"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/policy"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/submit"
)

// Mail is the Graph surface a run needs.
type Mail interface {
	GetMessage(ctx context.Context, mailbox, messageID string) (*models.Message, error)
	ListConversation(ctx context.Context, mailbox, conversationID string) ([]models.Message, error)
	notify.Replier
}

// HR is the greytHR surface a run needs.
type HR interface {
	LookupEmployee(ctx context.Context, email string) (*greythr.Employee, error)
	policy.OrgDirectory
	submit.LeaveAPI
}

// MailConnectFunc authenticates against Graph for one run.
type MailConnectFunc func(ctx context.Context) (Mail, error)

// HRConnectFunc authenticates against greytHR for one run.
type HRConnectFunc func(ctx context.Context) (HR, error)

// Extractor produces the tagged extraction outcome for an email.
type Extractor interface {
	Outcome(ctx context.Context, msg *models.Message) leave.Outcome
}

// Deduper remembers handled message IDs.
type Deduper interface {
	IsNew(ctx context.Context, messageID string) (bool, error)
}

// RunLogOpener opens the per-run file logger.
type RunLogOpener interface {
	Open(receivedAt time.Time, email string) (*slog.Logger, func() error, error)
}

// Skip reasons reported when a notification is dropped.
const (
	SkipSelfLoop  = "self_loop"
	SkipDuplicate = "duplicate"
)

// ErrManagerApprovalRequired marks requests blocked by the manager gate.
var ErrManagerApprovalRequired = errors.New("manager approval required")

// Config wires a Pipeline.
type Config struct {
	Mailbox             string
	ResolveThreadOrigin bool

	ConnectMail MailConnectFunc
	ConnectHR   HRConnectFunc
	Extractor   Extractor
	Gate        *policy.ManagerGate

	// Optional
	Dedup   Deduper
	RunLogs RunLogOpener
}

// Pipeline processes leave emails. It holds no per-run state and is safe
// for concurrent use.
type Pipeline struct {
	mailbox             string
	resolveThreadOrigin bool
	connectMail         MailConnectFunc
	connectHR           HRConnectFunc
	extractor           Extractor
	gate                *policy.ManagerGate
	dedup               Deduper
	runLogs             RunLogOpener
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	gate := cfg.Gate
	if gate == nil {
		gate = policy.NewManagerGate(false)
	}
	return &Pipeline{
		mailbox:             cfg.Mailbox,
		resolveThreadOrigin: cfg.ResolveThreadOrigin,
		connectMail:         cfg.ConnectMail,
		connectHR:           cfg.ConnectHR,
		extractor:           cfg.Extractor,
		gate:                gate,
		dedup:               cfg.Dedup,
		runLogs:             cfg.RunLogs,
	}
}

// Report summarises one run.
type Report struct {
	MessageID string
	Skipped   string
	Outcome   leave.Outcome
	Results   []submit.Result
	Err       error
}

// ProcessOptions adjusts a single run.
type ProcessOptions struct {
	// Force skips the duplicate check, for operator replays of messages a
	// notification already delivered.
	Force bool
}

// Process handles the message a notification pointed at. Every user-facing
// failure is answered by a reply in the thread; Report.Err is set only for
// failures that could not be reported that way or that aborted the run.
func (p *Pipeline) Process(ctx context.Context, messageID string) Report {
	return p.ProcessWith(ctx, messageID, ProcessOptions{})
}

// ProcessWith is Process with options.
func (p *Pipeline) ProcessWith(ctx context.Context, messageID string, opts ProcessOptions) Report {
	log := logging.FromContext(ctx).With("message_id", messageID)
	ctx = logging.WithLogger(ctx, log)
	rep := Report{MessageID: messageID}

	if p.dedup != nil && !opts.Force {
		isNew, err := p.dedup.IsNew(ctx, messageID)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if !isNew {
			log.Info("skipping already handled message")
			rep.Skipped = SkipDuplicate
			return rep
		}
	}

	mail, err := p.connectMail(ctx)
	if err != nil {
		log.Error("graph authentication failed", "error", err)
		rep.Err = err
		return rep
	}

	trigger, err := mail.GetMessage(ctx, p.mailbox, messageID)
	if err != nil {
		log.Error("failed to fetch notified message", "error", err)
		rep.Err = err
		return rep
	}

	if policy.IsSelfLoop(trigger.Sender(), p.mailbox) {
		log.Info("ignoring message sent by the monitored mailbox")
		rep.Skipped = SkipSelfLoop
		return rep
	}

	email := p.leaveEmail(ctx, mail, trigger)
	sender := email.Sender()

	ctx, closeLog := p.openRunLog(ctx, email, sender)
	defer closeLog()
	log = logging.FromContext(ctx)

	log.Info("processing leave email",
		"leave_email_id", email.ID,
		"sender", sender,
		"subject", email.Subject,
	)

	notifier := notify.New(mail, p.mailbox)

	rep.Outcome = p.extractor.Outcome(ctx, email)
	switch rep.Outcome.Kind {
	case leave.OutcomeFailure:
		notifier.Error(ctx, email, sender, rep.Outcome.Message)
		return rep
	case leave.OutcomeMissingFields:
		notifier.MissingFields(ctx, email, sender, rep.Outcome.Fields)
		return rep
	case leave.OutcomeOK:
	}

	hr, err := p.connectHR(ctx)
	if err != nil {
		log.Error("greytHR authentication failed", "error", err)
		notifier.Error(ctx, email, sender, err.Error())
		rep.Err = err
		return rep
	}

	employees, err := p.approveRequesters(ctx, hr, notifier, email, rep.Outcome.Requests)
	if err != nil {
		rep.Err = err
		return rep
	}

	rep.Results = p.submitAll(ctx, hr, notifier, email, rep.Outcome.Requests, employees)
	log.Info("leave email processed",
		"requests", len(rep.Results),
		"failed", countFailed(rep.Results),
	)
	return rep
}

// leaveEmail returns the message to extract from. With thread origin
// resolution on, that is the oldest message of the conversation.
func (p *Pipeline) leaveEmail(ctx context.Context, mail Mail, trigger *models.Message) *models.Message {
	if !p.resolveThreadOrigin || trigger.ConversationID == "" {
		return trigger
	}

	msgs, err := mail.ListConversation(ctx, p.mailbox, trigger.ConversationID)
	if err != nil {
		logging.FromContext(ctx).Warn("thread resolution failed, using notified message", "error", err)
		return trigger
	}
	for i := range msgs {
		if !policy.IsSelfLoop(msgs[i].Sender(), p.mailbox) {
			return &msgs[i]
		}
	}
	return trigger
}

func (p *Pipeline) openRunLog(ctx context.Context, email *models.Message, sender string) (context.Context, func()) {
	if p.runLogs == nil {
		return ctx, func() {}
	}

	l, closeFn, err := p.runLogs.Open(email.ReceivedAt(), sender)
	if err != nil {
		logging.FromContext(ctx).Warn("failed to open run log, using console only", "error", err)
		return ctx, func() {}
	}

	l = l.With("message_id", email.ID)
	return logging.WithLogger(ctx, l), func() {
		if err := closeFn(); err != nil {
			logging.FromContext(ctx).Warn("failed to close run log", "error", err)
		}
	}
}

// approveRequesters looks up each distinct requester once and runs the
// manager gate for them. Any failure aborts the whole email after replying.
func (p *Pipeline) approveRequesters(ctx context.Context, hr HR, n *notify.Notifier, email *models.Message, reqs []leave.Request) (map[string]*greythr.Employee, error) {
	log := logging.FromContext(ctx)
	sender := email.Sender()
	employees := make(map[string]*greythr.Employee)

	for _, req := range reqs {
		key := strings.ToLower(req.FromEmail)
		if _, ok := employees[key]; ok {
			continue
		}

		emp, err := hr.LookupEmployee(ctx, req.FromEmail)
		if err != nil {
			log.Error("employee lookup failed", "requester", req.FromEmail, "error", err)
			n.Error(ctx, email, sender, err.Error())
			return nil, err
		}
		log.Info("employee found",
			"requester", req.FromEmail,
			"employee_id", emp.EmployeeID,
			"employee_no", emp.EmployeeNo,
		)

		d, err := p.gate.Check(ctx, hr, emp, email.Recipients())
		if err != nil {
			log.Error("manager approval check failed", "requester", req.FromEmail, "error", err)
			n.Error(ctx, email, sender, err.Error())
			return nil, err
		}
		if !d.Allowed {
			log.Warn("manager not on the email, rejecting",
				"requester", req.FromEmail,
				"manager_email", d.ManagerEmail,
			)
			n.ApprovalRequired(ctx, email, req.FromEmail, emp, d)
			return nil, ErrManagerApprovalRequired
		}

		employees[key] = emp
	}
	return employees, nil
}

// submitAll submits each request in order. Outcomes are independent: one
// failure does not stop the rest.
func (p *Pipeline) submitAll(ctx context.Context, hr HR, n *notify.Notifier, email *models.Message, reqs []leave.Request, employees map[string]*greythr.Employee) []submit.Result {
	results := make([]submit.Result, 0, len(reqs))
	for _, req := range reqs {
		res := submit.Submit(ctx, hr, req, employees[strings.ToLower(req.FromEmail)])
		if res.OK() {
			n.Success(ctx, email, req.FromEmail, res)
		} else {
			n.Failure(ctx, email, req.FromEmail, res)
		}
		results = append(results, res)
	}
	return results
}

func countFailed(results []submit.Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
