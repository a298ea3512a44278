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
	"encoding/json"
	"strconv"
	"strings"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/leave"
)

// ResponseFormatError means the model answered without usable JSON.
type ResponseFormatError struct {
	Raw string
}

func (e *ResponseFormatError) Error() string {
	return "invalid response format"
}

// ParseResponse pulls the request list out of a model answer. The first
// position where a JSON array decodes wins; failing that, the first
// decodable object is taken as a single request. fallbackSender fills fromEmail when the model left it out.
func ParseResponse(text, fallbackSender string) ([]leave.Request, error) {
	items, ok := decodeArray(text)
	if !ok {
		items, ok = decodeObject(text)
	}
	if !ok {
		return nil, &ResponseFormatError{Raw: text}
	}

	reqs := make([]leave.Request, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, coerce(item, fallbackSender))
	}
	return reqs, nil
}

// decodeFirst decodes the first JSON value of type T that starts at an open
// byte. Text after the value is ignored.
func decodeFirst[T any](text string, open byte) (T, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		var v T
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&v); err == nil {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func decodeArray(text string) ([]map[string]any, bool) {
	return decodeFirst[[]map[string]any](text, '[')
}

func decodeObject(text string) ([]map[string]any, bool) {
	item, ok := decodeFirst[map[string]any](text, '{')
	if !ok {
		return nil, false
	}
	return []map[string]any{item}, true
}

func coerce(m map[string]any, fallbackSender string) leave.Request {
	return leave.Request{
		FromEmail:   firstNonEmpty(str(m["fromEmail"]), fallbackSender),
		FromDate:    str(m["fromDate"]),
		ToDate:      firstNonEmpty(str(m["toDate"]), str(m["endDate"])),
		LeaveType:   str(m["leaveType"]),
		Transaction: transaction(str(m["transaction"])),
		Reason:      str(m["reason"]),
		Confidence:  confidence(str(m["confidence"])),
		FromSession: session(m["fromSession"]),
		ToSession:   session(m["toSession"]),
	}
}

// str reads a JSON scalar as a trimmed string. JSON null and the literal
// string "null" both mean unset.
func str(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

func transaction(s string) leave.Transaction {
	if strings.HasPrefix(strings.ToLower(s), "cancel") {
		return leave.Cancelled
	}
	return leave.Availed
}

func confidence(s string) leave.Confidence {
	switch c := leave.Confidence(strings.ToLower(s)); c {
	case leave.ConfidenceHigh, leave.ConfidenceMedium, leave.ConfidenceLow:
		return c
	}
	return leave.ConfidenceLow
}

// session accepts 1 or 2 as a number or numeric string.
func session(v any) *int {
	var n int
	switch t := v.(type) {
	case float64:
		if t != 1 && t != 2 {
			return nil
		}
		n = int(t)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	if n != 1 && n != 2 {
		return nil
	}
	return leave.Session(n)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
