package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// request issues one authenticated HTTP request against the API.
//
// It returns the parsed JSON body, or nil when the response had no content.
// Many mutation endpoints (play, pause, save, follow) return an empty body on
// success, and that is not an error. Non-2xx responses become an *Error
// carrying the status code and raw body; callers decide which statuses have
// soft meaning (a 404 on a single lookup, say). There is no retry logic at
// this layer.
func (c *Client) request(ctx context.Context, method, endpoint string, query url.Values, body interface{}) (json.RawMessage, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("spotify: encoding request body: %w", err)
		}
	}
	return c.requestRaw(ctx, method, endpoint, query, "application/json", payload)
}

// requestRaw is the transport core shared by request and the rare endpoints
// that take a non-JSON payload (playlist cover upload).
func (c *Client) requestRaw(ctx context.Context, method, endpoint string, query url.Values, contentType string, payload []byte) (json.RawMessage, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("spotify: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stylus/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	c.logDebugf("spotify: %s %s", method, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("spotify: http request failed: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("spotify: reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logDebugf("spotify: %s %s -> %d", method, endpoint, resp.StatusCode)
		return nil, resp.StatusCode, newError(resp.StatusCode, respBody)
	}

	// Empty or non-JSON bodies on success are valid: mutation endpoints
	// return no content.
	if len(respBody) == 0 || !json.Valid(respBody) {
		return nil, resp.StatusCode, nil
	}

	return json.RawMessage(respBody), resp.StatusCode, nil
}

// batches splits ids into ordered chunks of at most size elements.
func batches(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	return append(out, ids)
}

// validateIDs checks that at least one id was given and none are empty.
// Validation failures surface before any network call.
func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no ids given", ErrEmptyID)
	}
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: id at index %d", ErrEmptyID, i)
		}
	}
	return nil
}
