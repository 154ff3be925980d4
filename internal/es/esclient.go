package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

// MediaDoc is the searchable view of an approved media item.
type MediaDoc struct {
	ID               uint      `json:"id"`
	URL              string    `json:"url"`
	Type             string    `json:"type"`
	ShopifyProductID string    `json:"shopifyProductId"`
	CustomerID       *uint     `json:"customerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Indexer interface {
	IndexMedia(ctx context.Context, doc MediaDoc) error
	DeleteMedia(ctx context.Context, id uint) error
}

type Client struct {
	ES    *elasticsearch.Client
	Index string
}

func NewClient(ctx context.Context, url, user, password, index string) (*Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("es: create client: %w", err)
	}

	res, err := esapi.InfoRequest{}.Do(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	return &Client{ES: client, Index: index}, nil
}

func (c *Client) IndexMedia(ctx context.Context, doc MediaDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("es: encode doc: %w", err)
	}
	res, err := esapi.IndexRequest{
		Index:      c.Index,
		DocumentID: strconv.FormatUint(uint64(doc.ID), 10),
		Body:       bytes.NewReader(body),
	}.Do(ctx, c.ES)
	if err != nil {
		return fmt.Errorf("es: index media %d: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: index media %d: %s: %s", doc.ID, res.Status(), b)
	}
	return nil
}

// DeleteMedia removes the document; a missing document is not an error.
func (c *Client) DeleteMedia(ctx context.Context, id uint) error {
	res, err := esapi.DeleteRequest{
		Index:      c.Index,
		DocumentID: strconv.FormatUint(uint64(id), 10),
	}.Do(ctx, c.ES)
	if err != nil {
		return fmt.Errorf("es: delete media %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: delete media %d: %s: %s", id, res.Status(), b)
	}
	return nil
}

type Noop struct{}

func (Noop) IndexMedia(context.Context, MediaDoc) error { return nil }
func (Noop) DeleteMedia(context.Context, uint) error    { return nil }
