package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const accessTokenHeader = "X-Shopify-Access-Token"

// Client talks to one shop's Admin REST and GraphQL APIs. The access token is
// looked up in Tokens on every call.
type Client struct {
	Shop       string
	APIVersion string
	Tokens     TokenStore

	// BaseURL overrides https://<shop>; used against fakes in tests.
	BaseURL string

	httpClient *http.Client
}

func NewClient(shop, apiVersion string, tokens TokenStore) *Client {
	return &Client{
		Shop:       shop,
		APIVersion: apiVersion,
		Tokens:     tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return "https://" + c.Shop
}

func (c *Client) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s%s", c.base(), c.APIVersion, path)
}

// Connected reports whether a token is stored for the shop.
func (c *Client) Connected(ctx context.Context) bool {
	tok, err := c.Tokens.Get(ctx, c.Shop)
	return err == nil && tok != ""
}

func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	token, err := c.Tokens.Get(ctx, c.Shop)
	if err != nil {
		return nil, err
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("platform: encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, fmt.Errorf("platform: create request: %w", err)
	}
	req.Header.Set(accessTokenHeader, token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("platform: read body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized && req.Header.Get(accessTokenHeader) != "" {
		// The shop revoked or rotated the token; drop it so Status reports
		// disconnected and the next call fails fast with ErrNoToken.
		_ = c.Tokens.Delete(req.Context(), c.Shop)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("platform: decode response: %w", err)
	}
	return nil
}

// rest performs an Admin REST call; path is relative to /admin/api/<version>.
func (c *Client) rest(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, c.adminURL(path), body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func userErrorsErr(op string, errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			msgs = append(msgs, strings.Join(e.Field, ".")+": "+e.Message)
		} else {
			msgs = append(msgs, e.Message)
		}
	}
	return &APIError{Status: http.StatusUnprocessableEntity, Body: op + ": " + strings.Join(msgs, "; ")}
}

// graphQL posts a query to the Admin GraphQL endpoint and decodes data into T.
func graphQL[T any](ctx context.Context, c *Client, query string, vars map[string]any) (*T, error) {
	payload := map[string]any{"query": query, "variables": vars}
	req, err := c.newRequest(ctx, http.MethodPost, c.adminURL("/graphql.json"), payload)
	if err != nil {
		return nil, err
	}

	var resp graphQLResponse[T]
	if err := c.send(req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			if e.Extensions.Code != "" {
				msgs = append(msgs, e.Message+" ("+e.Extensions.Code+")")
			} else {
				msgs = append(msgs, e.Message)
			}
		}
		return nil, &APIError{Status: http.StatusOK, Body: "graphql: " + strings.Join(msgs, "; ")}
	}
	if resp.Data == nil {
		return nil, &APIError{Status: http.StatusOK, Body: "graphql: empty data"}
	}
	return resp.Data, nil
}
