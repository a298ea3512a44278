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

// Package dedup remembers which leave emails have already been handled so
// a notification Graph delivers twice does not submit the same leave twice.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long a handled message ID is remembered.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "leaves:seen:"
)

// Filter tracks handled message IDs in Redis.
type Filter struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewFilter creates a filter. A non-positive ttl means DefaultTTL.
func NewFilter(rdb redis.Cmdable, ttl time.Duration) *Filter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Filter{rdb: rdb, ttl: ttl}
}

// Key returns the Redis key for a message ID.
func Key(messageID string) string {
	return keyPrefix + messageID
}

// IsNew reports whether messageID has not been seen within the TTL and
// marks it seen in the same SETNX.
func (f *Filter) IsNew(ctx context.Context, messageID string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, Key(messageID), 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}

// Ping checks the Redis connection.
func (f *Filter) Ping(ctx context.Context) error {
	return f.rdb.Ping(ctx).Err()
}
