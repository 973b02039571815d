package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"
)

func (c *Client) doRequest(ctx context.Context, op, method, path string, query url.Values, body any) (Body, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Op: op, Method: method, URL: endpoint, Kind: ErrEncode, Err: err}
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: endpoint, Kind: ErrEncode, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth {
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("openclawd request failed", "op", op, "method", method, "url", endpoint, "error", err)
		return nil, &Error{Op: op, Method: method, URL: endpoint, Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: endpoint, StatusCode: resp.StatusCode, Kind: ErrTransport, Err: err}
	}

	c.logger.Debug("openclawd request",
		"op", op,
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	result, err := decodeBody(raw)
	if err != nil {
		return nil, &Error{Op: op, Method: method, URL: endpoint, StatusCode: resp.StatusCode, Kind: ErrDecode, Err: err}
	}

	return result, nil
}

// decodeBody parses a single JSON object. Numbers are kept as json.Number
// so integers beyond 2^53 survive unchanged.
func decodeBody(raw []byte) (Body, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var result Body
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	// "null" decodes without error into a nil map.
	if result == nil {
		return nil, errors.New("response body is not a JSON object")
	}

	return result, nil
}
