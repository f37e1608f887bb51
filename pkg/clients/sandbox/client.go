package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/storage"
	"workflow-sandbox/api/services/workflow"
)

// maxResponseBody caps how much of a response the client will read.
const maxResponseBody = 4 << 20

// Client talks to a remote workflow sandbox.
// Implementations can be swapped for testing or to target a different server.
type Client interface {
	// Simulate never returns nil. Transport or decoding failures come back
	// as a result with status "error" and an empty execution.
	Simulate(ctx context.Context, wf *storage.Workflow) *workflow.SimulationResult
	Automations(ctx context.Context) ([]automations.Action, error)
}

// HTTPClient calls the sandbox's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the API rooted at baseURL, for
// example "http://localhost:8080/api/v1".
// Accepts an optional http.Client for custom timeouts or transport settings.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Simulate runs wf on the remote sandbox. Transport failures and malformed
// replies come back as an error result rather than a Go error.
func (c *HTTPClient) Simulate(ctx context.Context, wf *storage.Workflow) *workflow.SimulationResult {
	res, err := c.simulate(ctx, wf)
	if err != nil {
		slog.Warn("remote simulation failed", "url", c.baseURL, "error", err)
		return &workflow.SimulationResult{
			Status:    workflow.StatusError,
			Execution: []workflow.ExecutionStep{},
			Error:     err.Error(),
		}
	}
	return res
}

func (c *HTTPClient) simulate(ctx context.Context, wf *storage.Workflow) (*workflow.SimulationResult, error) {
	payload, err := json.Marshal(map[string]any{"workflow": wf})
	if err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, "/simulate", payload)
	if err != nil {
		return nil, err
	}

	var res workflow.SimulationResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("sandbox returned %d with unreadable body: %w", status, err)
	}
	switch {
	case status < 200 || status > 299:
		if res.Error == "" {
			res.Error = fmt.Sprintf("sandbox returned %d", status)
		}
	case res.Status != workflow.StatusOK:
		if res.Error == "" {
			res.Error = fmt.Sprintf("sandbox returned %d with status %q", status, res.Status)
		}
	default:
		if res.Execution == nil {
			res.Execution = []workflow.ExecutionStep{}
		}
		return &res, nil
	}
	// An error result never carries a partial trace.
	res.Status = workflow.StatusError
	res.Execution = []workflow.ExecutionStep{}
	return &res, nil
}

// Automations fetches the remote action catalogue.
func (c *HTTPClient) Automations(ctx context.Context) ([]automations.Action, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/automations", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("sandbox API returned %d: %s", status, string(body))
	}

	var actions []automations.Action
	if err := json.Unmarshal(body, &actions); err != nil {
		return nil, fmt.Errorf("failed to parse automations response: %w", err)
	}
	return actions, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	url := c.baseURL + path
	slog.Debug("calling sandbox API", "method", method, "url", url)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sandbox API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
