package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront-agent/internal/domain"
)

const (
	// searchPageSize caps how many matches one query requests; the backend's
	// own relevance ordering is kept as-is.
	searchPageSize = 5
	apiVersion     = "2024-04"
)

// productSearchQuery asks the Storefront API for free-text matches.
const productSearchQuery = `query ProductSearch($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        title
        handle
        onlineStoreUrl
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// searchResponse mirrors the nested edge/node shape of the Storefront API.
// Every level is a pointer so a missing field is distinguishable from an
// empty one.
type searchResponse struct {
	Data *struct {
		Products *struct {
			Edges []struct {
				Node *struct {
					Title          string `json:"title"`
					Handle         string `json:"handle"`
					OnlineStoreURL string `json:"onlineStoreUrl"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
}

// Client queries a Shopify Storefront GraphQL endpoint for product matches.
type Client struct {
	shopDomain string
	token      string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithBaseURL replaces the https://{domain} endpoint root, for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(shopDomain, token string, opts ...Option) *Client {
	c := &Client{
		shopDomain: strings.TrimSpace(shopDomain),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint() string {
	base := c.baseURL
	if base == "" {
		base = "https://" + c.shopDomain
	}
	return base + "/api/" + apiVersion + "/graphql.json"
}

// Search issues one relevance query for up to searchPageSize products. An
// empty query returns no matches without an outbound call. A response that
// parses as JSON but lacks the expected nesting yields an empty result; a
// transport failure or non-JSON body is returned as an error.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return []domain.Product{}, nil
	}

	body, err := json.Marshal(graphqlRequest{
		Query: productSearchQuery,
		Variables: map[string]any{
			"query": query,
			"first": searchPageSize,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("shopify: marshal request: %w", err)
	}

	url := c.endpoint()
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return nil, fmt.Errorf("shopify: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("shopify: request failed: %w", doErr)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("shopify: read response body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("shopify: unexpected status %d from %s: %s", res.StatusCode, url, string(raw))
	}

	products, ok, err := decodeProductSearch(raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Debug("storefront search returned unrecognized shape, treating as no matches")
	}
	return products, nil
}

// decodeProductSearch parses the nested result. The bool reports whether the
// expected structure was present; when it is false the product list is empty
// rather than an error, so malformed-but-present data degrades gracefully.
// Only a non-JSON body is an error.
func decodeProductSearch(raw []byte) ([]domain.Product, bool, error) {
	var payload searchResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("shopify: decode response: %w", err)
	}
	if payload.Data == nil || payload.Data.Products == nil {
		return []domain.Product{}, false, nil
	}

	products := make([]domain.Product, 0, len(payload.Data.Products.Edges))
	for _, edge := range payload.Data.Products.Edges {
		if edge.Node == nil {
			continue
		}
		products = append(products, domain.Product{
			Title:          edge.Node.Title,
			Handle:         edge.Node.Handle,
			OnlineStoreURL: edge.Node.OnlineStoreURL,
		})
	}
	return products, true, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
