// Package remote is the boundary between the terminal's in-memory session
// and its network collaborators. Every outbound call returns a typed OpError
// so the operator screen can report catalog, submission and printing
// failures uniformly and offer a retry without touching the session state.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Kind classifies an operation failure.
type Kind string

const (
	KindUnavailable Kind = "unavailable" // transport-level failure
	KindRejected    Kind = "rejected"    // collaborator returned a non-2xx
	KindBadPayload  Kind = "bad_payload" // response body unusable
)

// OpError carries a failure kind plus an operator-readable message.
type OpError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unavailable wraps a transport error.
func Unavailable(op string, err error) *OpError {
	return &OpError{Kind: KindUnavailable, Message: fmt.Sprintf("%s: %v", op, err)}
}

// Rejected reports a non-2xx response.
func Rejected(op string, status int) *OpError {
	return &OpError{Kind: KindRejected, Message: fmt.Sprintf("%s: status %d", op, status)}
}

// BadPayload reports an undecodable response body.
func BadPayload(op string, err error) *OpError {
	return &OpError{Kind: KindBadPayload, Message: fmt.Sprintf("%s: %v", op, err)}
}

// GetJSON issues a GET and decodes the JSON response into out.
func GetJSON(ctx context.Context, client *http.Client, url string, out any) *OpError {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Unavailable(url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Unavailable(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rejected(url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return BadPayload(url, err)
	}
	return nil
}

// PostJSON issues a POST with a JSON body and decodes the JSON response into
// out when out is non-nil. Extra headers are applied to the request.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any) *OpError {
	body, err := json.Marshal(in)
	if err != nil {
		return BadPayload(url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Unavailable(url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Unavailable(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Rejected(url, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return BadPayload(url, err)
		}
	}
	return nil
}
