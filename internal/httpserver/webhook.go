package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/community_gallery/internal/service"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

const (
	headerShopifyHmac      = "X-Shopify-Hmac-Sha256"
	headerShopifyWebhookID = "X-Shopify-Webhook-Id"

	maxWebhookBytes = 2 << 20
)

type WebhookHTTP struct {
	Svc *service.WebhookService
}

func (h *WebhookHTTP) NewPaidOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.new_paid_order")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
	if err != nil {
		l.Warn("new_paid_order_error", "status", 400, "reason", "unreadable body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	if err := h.Svc.VerifySignature(body, c.Request().Header.Get(headerShopifyHmac)); err != nil {
		return fail(l, "new_paid_order_error", err)
	}

	res, err := h.Svc.ProcessPaidOrder(ctx, body, c.Request().Header.Get(headerShopifyWebhookID))
	if err != nil {
		return fail(l, "new_paid_order_error", err)
	}

	l.Info("new_paid_order_success", "order_id", res.OrderID, "items", res.Items, "duplicate", res.Duplicate)
	return c.JSON(http.StatusOK, res)
}
