// Package subgraph queries the coin subgraph over GraphQL.
package subgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
)

var (
	// ErrNotFound is returned when a query matches no coin.
	ErrNotFound = errors.New("coin not found")
	// ErrMalformedResponse is returned when a response does not match the expected schema.
	ErrMalformedResponse = errors.New("malformed subgraph response")
)

const maxResponseBytes = 1 << 20

// Client runs typed queries against one subgraph endpoint.
type Client struct {
	endpoint string
	gql      *graphql.Client
}

// NewClient builds a client. A nil httpClient gets a default with a 10s timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	guarded := *httpClient
	guarded.Transport = statusGuard{next: httpClient.Transport}

	return &Client{
		endpoint: endpoint,
		gql:      graphql.NewClient(endpoint, graphql.WithHTTPClient(&guarded)),
	}
}

func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	if c.endpoint == "" {
		return fmt.Errorf("subgraph endpoint is empty")
	}

	req := graphql.NewRequest(query)
	for key, value := range variables {
		req.Var(key, value)
	}

	var data json.RawMessage
	if err := c.gql.Run(ctx, req, &data); err != nil {
		return fmt.Errorf("run query: %w", err)
	}
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// statusGuard rejects non-200 replies before the GraphQL decoder sees them and caps body size.
type statusGuard struct {
	next http.RoundTripper
}

func (g statusGuard) RoundTrip(req *http.Request) (*http.Response, error) {
	next := g.next
	if next == nil {
		next = http.DefaultTransport
	}
	resp, err := next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		return nil, fmt.Errorf("subgraph returned status %d", resp.StatusCode)
	}
	resp.Body = limitedBody{Reader: io.LimitReader(resp.Body, maxResponseBytes), Closer: resp.Body}
	return resp, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}
