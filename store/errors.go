package store

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RequestError reports a non-success response from the store, with enough
// context (operation, scope, status, body snippet) to diagnose or retry.
type RequestError struct {
	Op     string
	Scope  string
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("store %s on %s: status %d: %s", e.Op, e.Scope, e.Status, e.Body)
	}
	return fmt.Sprintf("store %s on %s: status %d", e.Op, e.Scope, e.Status)
}

// bodySnippetLimit bounds how much of an error response is captured.
const bodySnippetLimit = 512

func newRequestError(op, scope string, resp *http.Response) *RequestError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLimit))
	return &RequestError{
		Op:     op,
		Scope:  scope,
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(snippet)),
	}
}
