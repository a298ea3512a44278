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

// Package models defines the Microsoft Graph mail shapes shared by the
// webhook, the pipeline and the notifier.
package models

import (
	"strings"
	"time"
)

// EmailAddress represents a sender or recipient with an address and optional name.
type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Recipient wraps an address the way Graph nests it.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// ItemBody represents the message body content.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Message is the subset of a Graph message resource the bot reads.
// It is never persisted.
type Message struct {
	ID               string      `json:"id"`
	Subject          string      `json:"subject"`
	From             Recipient   `json:"from"`
	ToRecipients     []Recipient `json:"toRecipients"`
	CcRecipients     []Recipient `json:"ccRecipients"`
	Body             ItemBody    `json:"body"`
	BodyPreview      string      `json:"bodyPreview"`
	ReceivedDateTime string      `json:"receivedDateTime"`
	ConversationID   string      `json:"conversationId"`
}

// Sender returns the envelope sender address.
func (m *Message) Sender() string {
	return strings.TrimSpace(m.From.EmailAddress.Address)
}

// Recipients returns every to and cc address in message order.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.ToRecipients)+len(m.CcRecipients))
	for _, r := range m.ToRecipients {
		out = append(out, r.EmailAddress.Address)
	}
	for _, r := range m.CcRecipients {
		out = append(out, r.EmailAddress.Address)
	}
	return out
}

// ReceivedAt parses receivedDateTime, falling back to now when Graph
// omitted it or sent something unparseable.
func (m *Message) ReceivedAt() time.Time {
	if t, err := time.Parse(time.RFC3339, m.ReceivedDateTime); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

// ReplyMessage is the body of a Graph reply call.
type ReplyMessage struct {
	Message ReplyContent `json:"message"`
}

// ReplyContent carries the rendered reply and its recipients.
type ReplyContent struct {
	Subject      string      `json:"subject"`
	Body         ItemBody    `json:"body"`
	ToRecipients []Recipient `json:"toRecipients"`
	CcRecipients []Recipient `json:"ccRecipients"`
}

// Addresses wraps plain addresses into Graph recipients.
func Addresses(addrs ...string) []Recipient {
	out := make([]Recipient, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, Recipient{EmailAddress: EmailAddress{Address: a}})
	}
	return out
}
