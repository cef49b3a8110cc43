// Package hindsight is a small REST client for the Hindsight memory service.
package hindsight

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
)

// Budget is the memory service's opaque cost/quality tier.
type Budget string

const (
	BudgetLow Budget = "low"
	BudgetMid Budget = "mid"
)

const defaultTimeout = 60 * time.Second

// Client talks to a Hindsight API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// --- Wire types ---

type createBankRequest struct {
	Name    string `json:"name"`
	Mission string `json:"mission"`
}

type retainItem struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

type retainRequest struct {
	Items []retainItem `json:"items"`
}

type recallRequest struct {
	Query  string   `json:"query"`
	Budget Budget   `json:"budget"`
	Tags   []string `json:"tags,omitempty"`
}

// RecallResult is one ranked memory returned by recall.
type RecallResult struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

// RecallResponse holds results in the service's ranking order.
type RecallResponse struct {
	Results []RecallResult `json:"results"`
}

// ReflectRequest asks the service for a synthesized answer.
// ResponseSchema, when set, constrains the structured output.
type ReflectRequest struct {
	Query          string         `json:"query"`
	Budget         Budget         `json:"budget"`
	Tags           []string       `json:"tags,omitempty"`
	ResponseSchema map[string]any `json:"response_schema,omitempty"`
}

// ReflectResponse carries either a free-text answer or structured output.
// StructuredOutput is left raw: some deployments return it as an encoded string.
type ReflectResponse struct {
	Text             string          `json:"text"`
	Answer           string          `json:"answer"`
	StructuredOutput json.RawMessage `json:"structured_output"`
}

// AnswerText returns the free-text answer regardless of which field carried it.
func (r *ReflectResponse) AnswerText() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Answer
}

// --- Operations ---

// CreateBank creates or updates a memory bank. The call is idempotent.
func (c *Client) CreateBank(ctx context.Context, bankID, name, mission string) error {
	return c.do(ctx, http.MethodPut, c.bankPath(bankID, ""), createBankRequest{Name: name, Mission: mission}, nil)
}

// Retain stores a free-text fact in the bank.
func (c *Client) Retain(ctx context.Context, bankID, content string, tags []string) error {
	req := retainRequest{Items: []retainItem{{Content: content, Tags: tags}}}
	return c.do(ctx, http.MethodPost, c.bankPath(bankID, "/memories"), req, nil)
}

// Recall retrieves facts relevant to query.
func (c *Client) Recall(ctx context.Context, bankID, query string, budget Budget, tags []string) (*RecallResponse, error) {
	var resp RecallResponse
	req := recallRequest{Query: query, Budget: budget, Tags: tags}
	if err := c.do(ctx, http.MethodPost, c.bankPath(bankID, "/memories/recall"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Reflect asks the bank to reason over its memories.
func (c *Client) Reflect(ctx context.Context, bankID string, req ReflectRequest) (*ReflectResponse, error) {
	var resp ReflectResponse
	if err := c.do(ctx, http.MethodPost, c.bankPath(bankID, "/reflect"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) bankPath(bankID, suffix string) string {
	return "/v1/default/banks/" + url.PathEscape(bankID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("hindsight: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hindsight: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hindsight: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("hindsight: decode %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
