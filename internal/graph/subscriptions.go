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

package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// MaxMessageSubscriptionLifetime is the longest expiry Graph accepts for
// message subscriptions.
const MaxMessageSubscriptionLifetime = 10080 * time.Minute

// Subscription is a Graph change-notification subscription.
type Subscription struct {
	ID                 string `json:"id,omitempty"`
	ChangeType         string `json:"changeType"`
	NotificationURL    string `json:"notificationUrl"`
	Resource           string `json:"resource"`
	ExpirationDateTime string `json:"expirationDateTime"`
	ClientState        string `json:"clientState,omitempty"`
}

// NewMailSubscription describes a "created" subscription on mailbox's
// messages that delivers to notificationURL and expires after lifetime,
// capped at MaxMessageSubscriptionLifetime. Graph echoes clientState in
// every notification; an empty value gets a random one.
func NewMailSubscription(mailbox, notificationURL, clientState string, now time.Time, lifetime time.Duration) Subscription {
	if lifetime <= 0 || lifetime > MaxMessageSubscriptionLifetime {
		lifetime = MaxMessageSubscriptionLifetime
	}
	if clientState == "" {
		clientState = uuid.NewString()
	}
	return Subscription{
		ChangeType:         "created",
		NotificationURL:    notificationURL,
		Resource:           fmt.Sprintf("users/%s/messages", mailbox),
		ExpirationDateTime: now.UTC().Add(lifetime).Format(time.RFC3339),
		ClientState:        clientState,
	}
}

// CreateSubscription registers sub with Graph. Graph validates the
// notification URL synchronously before answering.
func (c *Client) CreateSubscription(ctx context.Context, sub Subscription) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/subscriptions", sub, &out); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &out, nil
}

// ListSubscriptions returns the subscriptions owned by this app.
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	var page struct {
		Value []Subscription `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/subscriptions", nil, &page); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return page.Value, nil
}

// DeleteSubscription removes one subscription.
func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.baseURL+"/subscriptions/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete subscription %s: %w", id, err)
	}
	return nil
}
