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

// Package greythr is a small client for the greytHR REST API: employee
// lookup, org tree and leave transactions. A Connector fetches a fresh
// access token and hands out a Client bound to it for one pipeline run.
package greythr

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
)

// ConnectorConfig holds the greytHR endpoints and API user credentials.
type ConnectorConfig struct {
	APIURL   string
	AuthURL  string
	Domain   string
	Username string
	Password string

	// HTTPClient is optional. It is used for both token and API calls.
	HTTPClient *http.Client
}

// Connector issues per-run Clients.
type Connector struct {
	apiURL string
	domain string
	creds  clientcredentials.Config
	http   *http.Client
}

// NewConnector creates a greytHR connector.
func NewConnector(cfg ConnectorConfig) *Connector {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	apiURL := cfg.APIURL
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	return &Connector{
		apiURL: apiURL,
		domain: cfg.Domain,
		creds: clientcredentials.Config{
			ClientID:     cfg.Username,
			ClientSecret: cfg.Password,
			TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/uas/v1/oauth2/client-token",
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		http: httpClient,
	}
}

// Connect fetches an access token and returns a Client that uses it.
// Tokens are not cached across calls.
func (c *Connector) Connect(ctx context.Context) (*Client, error) {
	tokCtx := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	tok, err := c.creds.Token(tokCtx)
	if err != nil {
		return nil, fmt.Errorf("greytHR token: %w", err)
	}

	return &Client{
		http:   c.http,
		apiURL: c.apiURL,
		domain: c.domain,
		token:  tok.AccessToken,
	}, nil
}

// Client makes authenticated greytHR calls.
type Client struct {
	http   *http.Client
	apiURL string
	domain string
	token  string
}

// LookupEmployee finds the employee whose work email is email.
func (c *Client) LookupEmployee(ctx context.Context, email string) (*Employee, error) {
	var emp Employee
	if err := c.do(ctx, http.MethodGet, "employee/v2/employees/lookup?q="+url.QueryEscape(email), nil, &emp); err != nil {
		return nil, err
	}
	if emp.EmployeeID == "" {
		return nil, fmt.Errorf("employee not found with email: %s", email)
	}
	return &emp, nil
}

// GetEmployee fetches an employee by internal ID.
func (c *Client) GetEmployee(ctx context.Context, id ID) (*Employee, error) {
	var emp Employee
	if err := c.do(ctx, http.MethodGet, "employee/v2/employees/"+url.PathEscape(string(id)), nil, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// OrgTree returns the reporting chain above an employee.
func (c *Client) OrgTree(ctx context.Context, id ID) ([]OrgTreeNode, error) {
	var nodes []OrgTreeNode
	if err := c.do(ctx, http.MethodGet, "employee/v2/employees/org-tree/"+url.PathEscape(string(id)), nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ApplyLeave posts a leave transaction and returns greytHR's raw response.
func (c *Client) ApplyLeave(ctx context.Context, tx LeaveTransaction) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "leave/v2/employee/transactions", tx, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("build greytHR request: %w", err)
	}
	req.Header.Set("ACCESS-TOKEN", c.token)
	req.Header.Set("x-greythr-domain", c.domain)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logging.FromContext(ctx).Debug("greytHR request",
		"method", method,
		"endpoint", endpoint,
		"domain", c.domain,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("greytHR %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read greytHR response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Endpoint: endpoint, Status: resp.StatusCode, Body: string(data)}
		logging.FromContext(ctx).Error("greytHR API request failed",
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body", string(data),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode greytHR %s: %w", endpoint, err)
	}
	return nil
}
