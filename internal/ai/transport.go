package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxResponseBytes bounds how much of a provider reply is read.
const maxResponseBytes = 1 << 20

// envelope is a decoded provider reply that may carry an API error.
type envelope interface {
	errorMessage() string
}

// apiError is the error object both chat APIs return.
type apiError struct {
	Message string `json:"message"`
}

func (e *apiError) errorMessage() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// postJSON sends payload as JSON to endpoint and decodes the reply into out.
// An error object in the reply takes precedence over the status code.
func postJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, payload any, out envelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response (status %d): %w", resp.StatusCode, err)
	}
	if msg := out.errorMessage(); msg != "" {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
