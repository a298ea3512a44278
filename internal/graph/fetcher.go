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

// Package graph talks to the Microsoft Graph mail API: fetching the message a
// notification points at, listing its conversation, replying in the thread
// and managing change-notification subscriptions.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/solitontech/Soliton-Leaves-Bot/internal/logging"
	"github.com/solitontech/Soliton-Leaves-Bot/internal/models"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// messageFields are the message properties the bot reads.
const messageFields = "id,subject,from,toRecipients,ccRecipients,body,bodyPreview,receivedDateTime,conversationId"

// ConnectorConfig holds the app registration used for client-credential auth.
type ConnectorConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string

	// TokenURL overrides the Entra ID token endpoint derived from TenantID.
	TokenURL string
	// HTTPClient is optional. It is used for both token and API calls.
	HTTPClient *http.Client
}

// Connector issues per-run Clients, each holding its own access token.
type Connector struct {
	creds   clientcredentials.Config
	baseURL string
	http    *http.Client
}

// NewConnector creates a Graph connector.
func NewConnector(cfg ConnectorConfig) *Connector {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Connector{
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"https://graph.microsoft.com/.default"},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Connect acquires a fresh token and returns a Client bound to it.
func (c *Connector) Connect(ctx context.Context) (*Client, error) {
	tokCtx := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.creds.Token(tokCtx)
	if err != nil {
		return nil, fmt.Errorf("graph token: %w", err)
	}

	return &Client{
		http:    oauth2.NewClient(tokCtx, oauth2.StaticTokenSource(tok)),
		baseURL: c.baseURL,
	}, nil
}

// Client makes authenticated Graph calls.
type Client struct {
	http    *http.Client
	baseURL string
}

// GetMessage retrieves one message from mailbox.
func (c *Client) GetMessage(ctx context.Context, mailbox, messageID string) (*models.Message, error) {
	u := fmt.Sprintf("%s/users/%s/messages/%s?%s",
		c.baseURL, url.PathEscape(mailbox), url.PathEscape(messageID),
		url.Values{"$select": {messageFields}}.Encode())

	var msg models.Message
	if err := c.do(ctx, http.MethodGet, u, nil, &msg); err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	return &msg, nil
}

// ListConversation returns every message in a conversation, oldest first.
func (c *Client) ListConversation(ctx context.Context, mailbox, conversationID string) ([]models.Message, error) {
	q := url.Values{
		"$filter":  {fmt.Sprintf("conversationId eq '%s'", strings.ReplaceAll(conversationID, "'", "''"))},
		"$orderby": {"receivedDateTime asc"},
		"$select":  {messageFields},
	}
	u := fmt.Sprintf("%s/users/%s/messages?%s", c.baseURL, url.PathEscape(mailbox), q.Encode())

	var page struct {
		Value []models.Message `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &page); err != nil {
		return nil, fmt.Errorf("list conversation %s: %w", conversationID, err)
	}
	return page.Value, nil
}

// Reply posts a reply into the thread of messageID.
func (c *Client) Reply(ctx context.Context, mailbox, messageID string, reply models.ReplyMessage) error {
	u := fmt.Sprintf("%s/users/%s/messages/%s/reply", c.baseURL, url.PathEscape(mailbox), url.PathEscape(messageID))
	if err := c.do(ctx, http.MethodPost, u, reply, nil); err != nil {
		return fmt.Errorf("reply to %s: %w", messageID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.FromContext(ctx).Error("graph API request failed",
			"method", method,
			"status", resp.StatusCode,
			"body", string(data),
		)
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx Graph response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err == nil && body.Error.Message != "" {
		return fmt.Sprintf("graph API returned HTTP %d: %s", e.Status, body.Error.Message)
	}
	return fmt.Sprintf("graph API returned HTTP %d", e.Status)
}
