package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// BridgeClient implements Session over HTTP against the browser-automation
// sidecar that owns the actual browser engine. The sidecar keeps the session
// alive across calls; init is latched here so it runs once per process
// lifetime unless it fails.
type BridgeClient struct {
	baseURL  string
	headless bool
	client   *http.Client

	mu        sync.Mutex
	ready     bool
	authState []byte // consumed by the first successful init
}

type BridgeOptions struct {
	Headless bool
	// AuthState is an optional pre-provisioned credential blob, forwarded to
	// the sidecar once at session initialization to skip interactive login.
	AuthState []byte
	// OpTimeout bounds every bridge call, covering target-view load and
	// composer probing on the sidecar side.
	OpTimeout time.Duration
}

func NewBridgeClient(baseURL string, opts BridgeOptions) *BridgeClient {
	timeout := opts.OpTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &BridgeClient{
		baseURL:   baseURL,
		headless:  opts.Headless,
		authState: opts.AuthState,
		client:    &http.Client{Timeout: timeout},
	}
}

type initRequest struct {
	Headless  bool   `json:"headless"`
	AuthState string `json:"authState,omitempty"`
}

type authResponse struct {
	Authenticated bool `json:"authenticated"`
}

type sendRequest struct {
	ThreadTarget string `json:"threadTarget"`
	Text         string `json:"text"`
}

func (c *BridgeClient) EnsureReady(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}

	req := initRequest{Headless: c.headless}
	if len(c.authState) > 0 {
		req.AuthState = base64.StdEncoding.EncodeToString(c.authState)
	}

	body, status, err := c.post(ctx, "/session/init", req)
	if err != nil {
		return fmt.Errorf("%w: init: %v", ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: init status %d body=%q", ErrUnavailable, status, string(body))
	}

	c.ready = true
	c.authState = nil
	return nil
}

func (c *BridgeClient) IsAuthenticated(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session/auth", nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: auth check: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: auth status %d body=%q", ErrUnavailable, resp.StatusCode, string(body))
	}

	var ar authResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return false, fmt.Errorf("%w: failed to decode auth json: %v body=%q", ErrUnavailable, err, string(body))
	}
	return ar.Authenticated, nil
}

func (c *BridgeClient) Deliver(ctx context.Context, threadTarget, text string) error {
	body, status, err := c.post(ctx, "/session/send", sendRequest{
		ThreadTarget: threadTarget,
		Text:         text,
	})
	if err != nil {
		return err
	}
	if status != http.StatusAccepted {
		// The sidecar reports delivery failures (composer not found,
		// navigation timeout) as plain text in the body.
		return fmt.Errorf("delivery rejected: status %d: %s", status, string(body))
	}
	return nil
}

func (c *BridgeClient) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode, nil
}
