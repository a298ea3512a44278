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

package extract

import (
	"fmt"
	"strings"
)

// EmailContent is what the model sees of the leave email.
type EmailContent struct {
	From    string
	Subject string
	Body    string
}

// BuildPrompt renders the extraction instructions for one email.
func BuildPrompt(email EmailContent, defaultLeaveType string) string {
	var b strings.Builder

	b.WriteString("You read emails sent to an HR mailbox and extract leave requests from them.\n\n")
	b.WriteString("An email may contain one or more leave requests. For each one extract:\n")
	b.WriteString("1. fromEmail: email address of the employee taking the leave\n")
	b.WriteString("2. fromDate and toDate: first and last day of the leave as YYYY-MM-DD\n")
	b.WriteString("3. leaveType: e.g. Sick Leave, Casual Leave, Privilege Leave, Comp off\n")
	b.WriteString("4. transaction: \"availed\" when applying for leave, \"cancelled\" when cancelling one\n")
	b.WriteString("5. reason: the reason for the leave, if given\n")
	b.WriteString("6. fromSession: 1 or 2 when the first day is a half day, otherwise null\n")
	b.WriteString("7. toSession: 1 or 2 when the last day is a half day, otherwise null\n")
	b.WriteString("8. confidence: high, medium or low\n\n")

	b.WriteString("Email:\n")
	fmt.Fprintf(&b, "From: %s\n", email.From)
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "Body:\n%s\n\n", email.Body)

	b.WriteString("Respond ONLY with a JSON array, even when there is a single request:\n")
	b.WriteString(`[
  {
    "fromEmail": "employee@example.com",
    "fromDate": "YYYY-MM-DD",
    "toDate": "YYYY-MM-DD",
    "leaveType": "type of leave",
    "transaction": "availed",
    "reason": "reason or null",
    "fromSession": null,
    "toSession": null,
    "confidence": "high"
  }
]`)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- If the subject starts with Re:, Fwd: or FW:, or the body contains an embedded \"From:\" line, " +
		"the email was replied to or forwarded. Use the original sender from the embedded message as fromEmail for every request.\n")
	b.WriteString("- Otherwise fromEmail is the sender shown above.\n")
	b.WriteString("- transaction is \"availed\" unless the email asks to cancel or withdraw a leave.\n")
	fmt.Fprintf(&b, "- If the leave type is not stated, or is described as personal leave or personal work, use %q.\n", defaultLeaveType)
	b.WriteString("- Half days: \"first half\", \"forenoon\", \"morning\" or \"till lunch\" mean session 1; " +
		"\"second half\", \"afternoon\" or \"after lunch\" mean session 2. Set fromSession for the first day and toSession for the last day.\n")
	b.WriteString("- A single day leave has the same fromDate and toDate.\n")
	b.WriteString("- Use null for any field you cannot determine.\n")

	return b.String()
}
