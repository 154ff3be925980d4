package platform

import (
	"context"
	"net/http"
)

type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var resp struct {
		Product Product `json:"product"`
	}
	if err := c.rest(ctx, http.MethodGet, "/products/"+LegacyID(productID)+".json?fields=id,title", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}
