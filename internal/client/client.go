package client

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

	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/projection"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status=%d code=%s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(blob)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	blob, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(blob))}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(blob, &env) == nil && env.Error.Code != "" {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return blob, apiErr
	}
	return blob, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	blob, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	blob, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, out)
}

func (c *Client) SubmitIdea(ctx context.Context, idea string) (feasibility.FeasibilityReport, error) {
	var r feasibility.FeasibilityReport
	err := c.postJSON(ctx, "/v1/ideas", map[string]string{"idea": idea}, &r)
	return r, err
}

func (c *Client) GetReport(ctx context.Context, id string) (feasibility.FeasibilityReport, error) {
	var r feasibility.FeasibilityReport
	err := c.getJSON(ctx, "/v1/ideas/"+url.PathEscape(id), &r)
	return r, err
}

func (c *Client) ListReports(ctx context.Context) ([]feasibility.FeasibilityReport, error) {
	var resp struct {
		Reports []feasibility.FeasibilityReport `json:"reports"`
	}
	err := c.getJSON(ctx, "/v1/ideas", &resp)
	return resp.Reports, err
}

func (c *Client) DeleteReport(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/v1/ideas/"+url.PathEscape(id), nil)
	return err
}

// RenderReport fetches the report document as markdown or html.
func (c *Client) RenderReport(ctx context.Context, id, format string) (string, error) {
	path := "/v1/ideas/" + url.PathEscape(id) + "/report"
	if format != "" {
		path += "?format=" + url.QueryEscape(format)
	}
	blob, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// WaitForNarratives polls until every mode has a narrative or ctx ends, and
// returns the last report seen.
func (c *Client) WaitForNarratives(ctx context.Context, id string, interval time.Duration) (feasibility.FeasibilityReport, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		r, err := c.GetReport(ctx, id)
		if err != nil {
			return r, err
		}
		if len(r.MissingNarratives()) == 0 {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return r, ctx.Err()
		case <-ticker.C:
		}
	}
}

type ProjectionRequest struct {
	BaseRevenue float64                     `json:"base_revenue"`
	Months      int                         `json:"months,omitempty"`
	Scenarios   []projection.ScenarioParams `json:"scenarios"`
}

func (c *Client) Project(ctx context.Context, req ProjectionRequest) (projection.Analysis, error) {
	var a projection.Analysis
	err := c.postJSON(ctx, "/v1/projections", req, &a)
	return a, err
}
