package platform

import (
	"context"
	"encoding/json"
	"net/http"
)

type OrderCustomer struct {
	ID int64 `json:"id"`
}

type LineItem struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	ProductID json.Number `json:"product_id"`
	Quantity  int         `json:"quantity"`
}

type Order struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Customer  *OrderCustomer `json:"customer"`
	LineItems []LineItem     `json:"line_items"`
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp struct {
		Order Order `json:"order"`
	}
	path := "/orders/" + LegacyID(orderID) + ".json?fields=id,name,customer,line_items"
	if err := c.rest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

const (
	// The customer scan looks at this many recent orders and this many line
	// items per order. Purchases outside the window are not found.
	CustomerOrderWindow = 50
	OrderLineItemWindow = 50
)

const customerOrdersQuery = `
query CustomerOrders($id: ID!, $orders: Int!, $items: Int!) {
  customer(id: $id) {
    id
    orders(first: $orders, reverse: true, sortKey: CREATED_AT) {
      edges {
        node {
          id
          lineItems(first: $items) {
            edges { node { product { id } } }
          }
        }
      }
    }
  }
}`

type customerOrdersData struct {
	Customer *struct {
		ID     string `json:"id"`
		Orders struct {
			Edges []struct {
				Node struct {
					ID        string `json:"id"`
					LineItems struct {
						Edges []struct {
							Node struct {
								Product *struct {
									ID string `json:"id"`
								} `json:"product"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"lineItems"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	} `json:"customer"`
}

// FindCustomerOrderWithProduct scans the customer's most recent orders and
// returns the legacy id of the first one containing productID, or "" when
// none does. A missing customer is reported as APIError 404.
func (c *Client) FindCustomerOrderWithProduct(ctx context.Context, customerID, productID string) (string, error) {
	vars := map[string]any{
		"id":     GID("Customer", customerID),
		"orders": CustomerOrderWindow,
		"items":  OrderLineItemWindow,
	}
	data, err := graphQL[customerOrdersData](ctx, c, customerOrdersQuery, vars)
	if err != nil {
		return "", err
	}
	if data.Customer == nil {
		return "", &APIError{Status: http.StatusNotFound, Body: "customer not found"}
	}

	target := GID("Product", productID)
	for _, o := range data.Customer.Orders.Edges {
		for _, li := range o.Node.LineItems.Edges {
			if li.Node.Product != nil && li.Node.Product.ID == target {
				return LegacyID(o.Node.ID), nil
			}
		}
	}
	return "", nil
}
