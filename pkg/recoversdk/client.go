package recoversdk

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

// Client is a typed HTTP client for the recovery service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a sane default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start opens a recovery session for the identifier.
func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var out StartResponse
	if err := c.do(ctx, http.MethodPost, "/v1/recovery/start", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession fetches the current session view, questions included.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionResponse, error) {
	var out SessionResponse
	path := "/v1/recovery/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitAnswers submits one round of answers to a waiting session.
func (c *Client) SubmitAnswers(ctx context.Context, sessionID string, answers map[string]string) (*SessionResponse, error) {
	var out SessionResponse
	path := "/v1/recovery/" + url.PathEscape(sessionID) + "/answers"
	if err := c.do(ctx, http.MethodPost, path, AnswersRequest{Answers: answers}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateToken checks a token without consuming it.
func (c *Client) ValidateToken(ctx context.Context, token string) (*ValidateResponse, error) {
	var out ValidateResponse
	if err := c.do(ctx, http.MethodPost, "/v1/tokens/validate", ValidateRequest{Token: token}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete consumes the token and finishes the recovery.
func (c *Client) Complete(ctx context.Context, token string) (*CompleteResponse, error) {
	var out CompleteResponse
	if err := c.do(ctx, http.MethodPost, "/v1/recovery/complete", CompleteRequest{Token: token}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeTokens invalidates every outstanding token for the user.
func (c *Client) RevokeTokens(ctx context.Context, userID string) (*RevokeResponse, error) {
	var out RevokeResponse
	path := "/v1/users/" + url.PathEscape(userID) + "/tokens/revoke"
	if err := c.do(ctx, http.MethodPost, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns operational token counters.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var out StatsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/tokens/stats", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll stores an authenticator secret for the identifier.
func (c *Client) Enroll(ctx context.Context, identifier, secret string) error {
	path := "/v1/enrollments/" + url.PathEscape(identifier)
	return c.do(ctx, http.MethodPut, path, EnrollRequest{Secret: secret}, nil, http.StatusNoContent)
}

// Unenroll removes the identifier's authenticator secret.
func (c *Client) Unenroll(ctx context.Context, identifier string) error {
	path := "/v1/enrollments/" + url.PathEscape(identifier)
	return c.do(ctx, http.MethodDelete, path, nil, nil, http.StatusNoContent)
}

// Healthy reports whether the service answers its readiness probe.
func (c *Client) Healthy(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/readyz", nil, nil, http.StatusOK)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, expectStatus int) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectStatus {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = ErrorCodeServerError
			apiErr.Description = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
