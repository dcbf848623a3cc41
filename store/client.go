// Package store provides the batched query/update/insert client the commit
// pipeline uses to reach the triple store. The wire protocol is SPARQL 1.1
// over HTTP with Fuseki-style datasets: a scope maps to the dataset path,
// queries go to {base}/{scope}/query, updates to {base}/{scope}/update, and
// bulk insertion to {base}/{scope}/data.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Binding is one variable binding of a SPARQL result row.
type Binding struct {
	Value    string `json:"value"`
	Type     string `json:"type"` // "uri", "literal", or "typed-literal"
	Datatype string `json:"datatype,omitempty"`
}

// Row maps result variable names to their bindings.
type Row map[string]Binding

// Client is the store API the commit pipeline depends on. Implementations
// must support VALUES-style batched filtering in Query.
type Client interface {
	// Query runs a SELECT query against the scope and returns its rows.
	Query(ctx context.Context, scope, query string) ([]Row, error)

	// Update runs a SPARQL update (deletions) against the scope.
	Update(ctx context.Context, scope, update string) error

	// Insert bulk-loads a serialized fact batch into the scope's default
	// graph.
	Insert(ctx context.Context, scope string, payload []byte, contentType string) error
}

// HTTPClient implements Client against a SPARQL protocol endpoint.
type HTTPClient struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = logger }
}

// NewHTTPClient creates a client for the endpoint base URL, e.g.
// "http://localhost:3030".
func NewHTTPClient(base string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 60 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sparqlResults is the application/sparql-results+json envelope.
type sparqlResults struct {
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}

// Query implements Client.
func (c *HTTPClient) Query(ctx context.Context, scope, query string) ([]Row, error) {
	endpoint := c.base + "/" + scope + "/query"
	form := url.Values{"query": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", scope, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newRequestError("query", scope, resp)
	}

	var decoded sparqlResults
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode query results for %s: %w", scope, err)
	}

	c.logger.Debug("store query complete",
		"scope", scope,
		"rows", len(decoded.Results.Bindings))
	return decoded.Results.Bindings, nil
}

// Update implements Client.
func (c *HTTPClient) Update(ctx context.Context, scope, update string) error {
	endpoint := c.base + "/" + scope + "/update"
	form := url.Values{"update": {update}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update %s: %w", scope, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return newRequestError("update", scope, resp)
	}
	io.Copy(io.Discard, resp.Body)

	c.logger.Debug("store update complete", "scope", scope)
	return nil
}

// Insert implements Client.
func (c *HTTPClient) Insert(ctx context.Context, scope string, payload []byte, contentType string) error {
	endpoint := c.base + "/" + scope + "/data"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(string(payload)))
	if err != nil {
		return fmt.Errorf("build insert request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", scope, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusNoContent {
		return newRequestError("insert", scope, resp)
	}
	io.Copy(io.Discard, resp.Body)

	c.logger.Debug("store insert complete",
		"scope", scope,
		"bytes", len(payload))
	return nil
}
