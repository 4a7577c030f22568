package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// BridgeClient talks to a bridge simulation server.
type BridgeClient struct {
	// ServerAddr is the base URL of the server, e.g. http://127.0.0.1:8080.
	ServerAddr string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c *BridgeClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *BridgeClient) do(ctx context.Context, method, path string, body []byte, wantStatus int, out any) error {
	url := strings.TrimRight(c.ServerAddr, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s returned unexpected response: %d", path, resp.StatusCode)
		}
		return fmt.Errorf("%s returned error %d: %s", path, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse %s response: %w", path, err)
	}
	return nil
}

// PostMessage posts a raw bridge message as the web page would.
func (c *BridgeClient) PostMessage(ctx context.Context, raw string) error {
	return c.do(ctx, http.MethodPost, "/api/bridge/message", []byte(raw), http.StatusAccepted, nil)
}

// Events drains the script calls made by the session.
func (c *BridgeClient) Events(ctx context.Context) (*EventsResponse, error) {
	var resp EventsResponse
	if err := c.do(ctx, http.MethodGet, "/api/bridge/events", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeliverResult injects a deferred platform result.
func (c *BridgeClient) DeliverResult(ctx context.Context, result PlatformResult) (bool, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return false, err
	}
	var resp PlatformResultResponse
	if err := c.do(ctx, http.MethodPost, "/api/platform/result", body, http.StatusOK, &resp); err != nil {
		return false, err
	}
	return resp.Delivered, nil
}

// State returns the session state.
func (c *BridgeClient) State(ctx context.Context) (*SessionState, error) {
	var resp SessionState
	if err := c.do(ctx, http.MethodGet, "/api/session/state", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetTestMode reconfigures the simulated platform.
func (c *BridgeClient) SetTestMode(ctx context.Context, req TestModeRequest) (*SessionState, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var resp SessionState
	if err := c.do(ctx, http.MethodPost, "/api/session/testmode", body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
