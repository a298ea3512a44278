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

package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsNew verifies first sight, repeat and Redis failure.
func TestIsNew(t *testing.T) {
	db, mock := redismock.NewClientMock()
	f := NewFilter(db, time.Hour)
	ctx := context.Background()

	mock.ExpectSetNX("leaves:seen:m1", 1, time.Hour).SetVal(true)
	mock.ExpectSetNX("leaves:seen:m1", 1, time.Hour).SetVal(false)
	mock.ExpectSetNX("leaves:seen:m2", 1, time.Hour).SetErr(errors.New("connection refused"))

	isNew, err := f.IsNew(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = f.IsNew(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, isNew)

	_, err = f.IsNew(ctx, "m2")
	assert.ErrorContains(t, err, "connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestNewFilter_DefaultTTL verifies the TTL fallback.
func TestNewFilter_DefaultTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	f := NewFilter(db, 0)

	mock.ExpectSetNX(Key("m1"), 1, DefaultTTL).SetVal(true)
	_, err := f.IsNew(context.Background(), "m1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPing verifies the health probe.
func TestPing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, NewFilter(db, time.Hour).Ping(context.Background()))
}
