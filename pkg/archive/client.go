package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 10 * time.Second

// Client is the HTTP client for the archive server. The live controller uses
// it as its persistence gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client talking to the archive server at baseURL,
// e.g. "http://localhost:8080".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession registers a new session and returns its id.
func (c *Client) CreateSession(ctx context.Context, meta SessionMeta) (string, error) {
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/live/session", meta, &sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// CloseSession marks a session terminal with the given status.
func (c *Client) CloseSession(ctx context.Context, id string, status Status, lastError string) error {
	req := closeSessionRequest{ID: id, Status: status, LastError: lastError}
	return c.do(ctx, http.MethodPut, "/api/live/session", req, nil)
}

// AppendMessage records one transcript entry and returns its id.
func (c *Client) AppendMessage(ctx context.Context, sessionID string, sender Sender, text string) (string, error) {
	req := appendMessageRequest{SessionID: sessionID, Sender: sender, Text: text}
	var msg Message
	if err := c.do(ctx, http.MethodPost, "/api/live/message", req, &msg); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// SessionsByUser returns the user's sessions, newest first.
func (c *Client) SessionsByUser(ctx context.Context, userID string) ([]Session, error) {
	var sessions []Session
	path := "/api/live/sessions/user/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Session returns one session with its full transcript.
func (c *Client) Session(ctx context.Context, id string) (*SessionDetail, error) {
	var detail SessionDetail
	path := "/api/live/sessions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("archive: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = string(raw)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
