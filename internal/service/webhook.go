package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/models"
	"github.com/Skotchmaster/community_gallery/internal/mykafka"
	"github.com/Skotchmaster/community_gallery/internal/repo"
	"github.com/Skotchmaster/community_gallery/internal/transport"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

const (
	DefaultCurrency = "USD"
	TopicOrdersPaid = "orders/paid"

	// One purchased-item row is stored per unit, so both bounds cap the
	// rows a single delivery can create.
	MaxLineItemQuantity = 1000
	MaxOrderUnits       = 10000
)

type WebhookService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
	Topic  string
	Secret string
}

// VerifySignature checks the base64 HMAC-SHA256 of the raw body. Without a
// configured secret every delivery is accepted.
func (s *WebhookService) VerifySignature(body []byte, header string) error {
	if s.Secret == "" {
		return nil
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return fmt.Errorf("%w: missing webhook signature", ErrUnauthenticated)
	}
	mac := hmac.New(sha256.New, []byte(s.Secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(header)) {
		return fmt.Errorf("%w: invalid webhook signature", ErrUnauthenticated)
	}
	return nil
}

type parsedItem struct {
	name      string
	productID string
	price     string
	quantity  int
}

// ProcessPaidOrder stores the customer, the order and one purchased item per
// unit in a single transaction. A payload for an order that already exists is
// acknowledged without writing anything.
func (s *WebhookService) ProcessPaidOrder(ctx context.Context, raw []byte, webhookID string) (transport.WebhookResponse, error) {
	l := logging.FromContext(ctx).With("svc", "webhook.paid_order")

	if len(bytes.TrimSpace(raw)) == 0 {
		return transport.WebhookResponse{}, fmt.Errorf("%w: empty body", ErrValidation)
	}
	var payload transport.PaidOrderWebhook
	if err := json.Unmarshal(raw, &payload); err != nil {
		return transport.WebhookResponse{}, fmt.Errorf("%w: malformed payload: %v", ErrValidation, err)
	}
	orderID := payload.ID.String()
	if orderID == "" {
		return transport.WebhookResponse{}, fmt.Errorf("%w: order id required", ErrValidation)
	}

	total, err := normalizePrice(payload.TotalPrice.String())
	if err != nil {
		return transport.WebhookResponse{}, fmt.Errorf("%w: total_price: %v", ErrValidation, err)
	}
	currency := strings.ToUpper(strings.TrimSpace(payload.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return transport.WebhookResponse{}, fmt.Errorf("%w: currency %q", ErrValidation, payload.Currency)
	}

	items := make([]parsedItem, 0, len(payload.LineItems))
	units := 0
	for i, li := range payload.LineItems {
		if li.Quantity < 0 {
			return transport.WebhookResponse{}, fmt.Errorf("%w: line_items[%d]: negative quantity", ErrValidation, i)
		}
		if li.Quantity > MaxLineItemQuantity {
			return transport.WebhookResponse{}, fmt.Errorf("%w: line_items[%d]: quantity %d exceeds %d", ErrValidation, i, li.Quantity, MaxLineItemQuantity)
		}
		productID := li.ProductID.String()
		if productID == "" {
			l.Info("line_item_skipped", "order_id", orderID, "index", i, "reason", "no product id")
			continue
		}
		price, err := normalizePrice(li.Price.String())
		if err != nil {
			return transport.WebhookResponse{}, fmt.Errorf("%w: line_items[%d].price: %v", ErrValidation, i, err)
		}
		name := li.Title
		if name == "" {
			name = li.Name
		}
		units += li.Quantity
		if units > MaxOrderUnits {
			return transport.WebhookResponse{}, fmt.Errorf("%w: order exceeds %d units", ErrValidation, MaxOrderUnits)
		}
		items = append(items, parsedItem{name: name, productID: productID, price: price, quantity: li.Quantity})
	}

	var out transport.WebhookResponse
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		existing, err := tx.FindOrderByShopifyID(ctx, orderID)
		if err == nil {
			out = transport.WebhookResponse{OrderID: existing.ID, Duplicate: true}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		order := &models.Order{ShopifyID: orderID, TotalPrice: total, Currency: currency}
		if c := payload.Customer; c != nil && c.ID.String() != "" {
			customer := &models.Customer{
				ShopifyID: c.ID.String(),
				FirstName: c.FirstName,
				LastName:  c.LastName,
				Email:     c.Email,
			}
			if err := tx.UpsertCustomer(ctx, customer); err != nil {
				return fmt.Errorf("upsert customer: %w", err)
			}
			order.CustomerID = &customer.ID
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		rows := make([]models.PurchasedItem, 0, units)
		for _, it := range items {
			for n := 0; n < it.quantity; n++ {
				rows = append(rows, models.PurchasedItem{
					Name:             it.name,
					ShopifyProductID: it.productID,
					Price:            it.price,
					OrderID:          order.ID,
				})
			}
		}
		if err := tx.CreatePurchasedItems(ctx, rows); err != nil {
			return fmt.Errorf("create purchased items: %w", err)
		}

		if err := tx.CreateWebhookEvent(ctx, &models.WebhookEvent{
			Topic:      TopicOrdersPaid,
			ResourceID: orderID,
			WebhookID:  webhookID,
			Payload:    datatypes.JSON(raw),
		}); err != nil {
			return fmt.Errorf("record webhook: %w", err)
		}

		out = transport.WebhookResponse{OrderID: order.ID, Items: len(rows)}
		return nil
	})
	if err != nil {
		return transport.WebhookResponse{}, err
	}

	if out.Duplicate {
		l.Info("webhook_duplicate", "order_id", orderID)
		return out, nil
	}
	l.Info("order_stored", "order_id", orderID, "items", out.Items)
	publish(ctx, s.Events, s.Topic, orderID, EventOrderPaid, map[string]any{
		"orderId":    orderID,
		"totalPrice": total,
		"currency":   currency,
		"items":      out.Items,
	})
	return out, nil
}

// normalizePrice renders an amount with two decimals; empty means zero.
func normalizePrice(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "0.00", nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return "", err
	}
	if d.IsNegative() {
		return "", errors.New("negative amount")
	}
	return d.StringFixed(2), nil
}
