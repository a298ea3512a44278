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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMessage_DecodeGraphPayload verifies the Graph JSON field names.
func TestMessage_DecodeGraphPayload(t *testing.T) {
	raw := `{
		"id": "AAMk1",
		"subject": "Leave",
		"from": {"emailAddress": {"address": " alice@corp.com ", "name": "Alice"}},
		"toRecipients": [{"emailAddress": {"address": "leaves@corp.com"}}],
		"ccRecipients": [{"emailAddress": {"address": "bob@corp.com"}}],
		"body": {"contentType": "html", "content": "<p>hi</p>"},
		"bodyPreview": "hi",
		"receivedDateTime": "2024-01-09T08:30:00Z",
		"conversationId": "conv-1"
	}`

	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.Equal(t, "alice@corp.com", m.Sender())
	assert.Equal(t, []string{"leaves@corp.com", "bob@corp.com"}, m.Recipients())
	assert.Equal(t, "html", m.Body.ContentType)
	assert.Equal(t, "conv-1", m.ConversationID)
	assert.Equal(t, time.Date(2024, 1, 9, 8, 30, 0, 0, time.UTC), m.ReceivedAt())
}

// TestMessage_ReceivedAtFallback verifies a missing timestamp falls back to now.
func TestMessage_ReceivedAtFallback(t *testing.T) {
	m := Message{}
	assert.WithinDuration(t, time.Now(), m.ReceivedAt(), time.Minute)
}

// TestMessage_ReceivedAtOffset verifies offset timestamps are normalised to UTC.
func TestMessage_ReceivedAtOffset(t *testing.T) {
	m := Message{ReceivedDateTime: "2024-01-01T01:30:00+05:30"}

	got := m.ReceivedAt()
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2023, 12, 31, 20, 0, 0, 0, time.UTC), got)
}
