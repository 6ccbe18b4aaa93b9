package fuelimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// BatchPath is the collection endpoint, relative to the API base URL.
const BatchPath = "/fuel/records/batch"

// IdempotencyHeader carries Batch.Key.
const IdempotencyHeader = "Idempotency-Key"

// HTTPBatchClient posts batches to the fuel records API.
type HTTPBatchClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPBatchClient returns a client for the API rooted at baseURL
// (e.g. "http://127.0.0.1:5000/api"). A nil client uses http.DefaultClient,
// so no timeout is applied beyond what ctx imposes.
func NewHTTPBatchClient(baseURL string, client *http.Client) *HTTPBatchClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBatchClient{
		endpoint: strings.TrimRight(baseURL, "/") + BatchPath,
		client:   client,
	}
}

// SendBatch issues exactly one POST. Any non-2xx status is returned as
// *SubmitError with the server's error message when the body has one.
func (c *HTTPBatchClient) SendBatch(ctx context.Context, batch Batch) (BatchResponse, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("fuelimport.HTTPBatchClient.SendBatch: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return BatchResponse{}, fmt.Errorf("fuelimport.HTTPBatchClient.SendBatch: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if batch.Key != uuid.Nil {
		req.Header.Set(IdempotencyHeader, batch.Key.String())
	}

	res, err := c.client.Do(req)
	if err != nil {
		return BatchResponse{}, fmt.Errorf("fuelimport.HTTPBatchClient.SendBatch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return BatchResponse{}, &SubmitError{StatusCode: res.StatusCode, Message: errorMessage(res.Body)}
	}

	var out BatchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return BatchResponse{}, fmt.Errorf("fuelimport.HTTPBatchClient.SendBatch: decode: %w", err)
	}
	return out, nil
}

// errorMessage extracts error.message from an API error body.
// Bodies in any other shape yield their first line, truncated.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(raw)), "\n")
	return truncateUTF8(line, maxPlainMessage)
}

// maxPlainMessage caps a non-JSON error body quoted in SubmitError, in bytes.
const maxPlainMessage = 200

// truncateUTF8 shortens s to at most n bytes without splitting a character.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
