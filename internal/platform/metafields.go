package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type Metafield struct {
	ID        int64  `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
	OwnerID   int64  `json:"owner_id,omitempty"`
}

func productMetafieldsPath(productID string) string {
	return "/products/" + LegacyID(productID) + "/metafields"
}

func (c *Client) ListMetafields(ctx context.Context, productID string) ([]Metafield, error) {
	var resp struct {
		Metafields []Metafield `json:"metafields"`
	}
	if err := c.rest(ctx, http.MethodGet, productMetafieldsPath(productID)+".json", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Metafields == nil {
		resp.Metafields = []Metafield{}
	}
	return resp.Metafields, nil
}

func (c *Client) CreateMetafield(ctx context.Context, productID string, mf Metafield) (*Metafield, error) {
	mf.ID = 0
	var resp struct {
		Metafield Metafield `json:"metafield"`
	}
	body := map[string]any{"metafield": mf}
	if err := c.rest(ctx, http.MethodPost, productMetafieldsPath(productID)+".json", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Metafield, nil
}

func (c *Client) UpdateMetafield(ctx context.Context, productID string, metafieldID int64, value, typ string) (*Metafield, error) {
	var resp struct {
		Metafield Metafield `json:"metafield"`
	}
	body := map[string]any{"metafield": map[string]any{
		"id":    metafieldID,
		"value": value,
		"type":  typ,
	}}
	path := fmt.Sprintf("%s/%d.json", productMetafieldsPath(productID), metafieldID)
	if err := c.rest(ctx, http.MethodPut, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Metafield, nil
}

func (c *Client) DeleteMetafield(ctx context.Context, productID string, metafieldID int64) error {
	path := fmt.Sprintf("%s/%d.json", productMetafieldsPath(productID), metafieldID)
	return c.rest(ctx, http.MethodDelete, path, nil, nil)
}

// SetMetafields writes each metafield in order, updating one with a matching
// namespace and key when it exists. The first failure stops the batch; the
// returned index points at the failed entry, or is -1 on success.
func (c *Client) SetMetafields(ctx context.Context, productID string, fields []Metafield) ([]Metafield, int, error) {
	existing, err := c.ListMetafields(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	byKey := make(map[string]Metafield, len(existing))
	for _, mf := range existing {
		byKey[mf.Namespace+"."+mf.Key] = mf
	}

	written := make([]Metafield, 0, len(fields))
	for i, mf := range fields {
		var out *Metafield
		if cur, ok := byKey[mf.Namespace+"."+mf.Key]; ok {
			typ := mf.Type
			if typ == "" {
				typ = cur.Type
			}
			out, err = c.UpdateMetafield(ctx, productID, cur.ID, mf.Value, typ)
		} else {
			out, err = c.CreateMetafield(ctx, productID, mf)
		}
		if err != nil {
			return written, i, err
		}
		written = append(written, *out)
	}
	return written, -1, nil
}

type ListStatus string

const (
	ListFound      ListStatus = "found"
	ListEmpty      ListStatus = "empty"
	ListParseError ListStatus = "parse_error"
)

// ListResult is the outcome of reading a list-typed metafield. Empty means the
// metafield is absent or holds no values; ParseError means a value was present
// but could not be decoded, with Err and Raw describing it.
type ListResult struct {
	Status ListStatus `json:"status"`
	Values []string   `json:"values"`
	Raw    string     `json:"raw,omitempty"`
	Err    error      `json:"-"`
}

// GetListMetafield reads namespace.key on the product and decodes it as a JSON
// array of strings (list.* metafield types).
func (c *Client) GetListMetafield(ctx context.Context, productID, namespace, key string) (ListResult, error) {
	fields, err := c.ListMetafields(ctx, productID)
	if err != nil {
		return ListResult{}, err
	}
	for _, mf := range fields {
		if mf.Namespace == namespace && mf.Key == key {
			return ParseListValue(mf.Value), nil
		}
	}
	return ListResult{Status: ListEmpty, Values: []string{}}, nil
}

func ParseListValue(raw string) ListResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ListResult{Status: ListEmpty, Values: []string{}}
	}

	var generic []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &generic); err != nil {
		return ListResult{Status: ListParseError, Values: []string{}, Raw: raw, Err: fmt.Errorf("metafield value is not a JSON list: %w", err)}
	}

	values := make([]string, 0, len(generic))
	for _, item := range generic {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			values = append(values, s)
			continue
		}
		values = append(values, strings.TrimSpace(string(item)))
	}
	if len(values) == 0 {
		return ListResult{Status: ListEmpty, Values: values}
	}
	return ListResult{Status: ListFound, Values: values}
}
