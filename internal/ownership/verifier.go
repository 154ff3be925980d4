package ownership

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

var (
	ErrMissingIdentifier   = errors.New("ownership: customerId or orderId required")
	ErrAmbiguousIdentifier = errors.New("ownership: pass either customerId or orderId, not both")
	ErrMissingProduct      = errors.New("ownership: productId required")
)

// OrderSource is the part of the platform client used for purchase checks.
type OrderSource interface {
	FindCustomerOrderWithProduct(ctx context.Context, customerID, productID string) (string, error)
	GetOrder(ctx context.Context, orderID string) (*platform.Order, error)
}

type Request struct {
	CustomerID string
	OrderID    string
	ProductID  string
	Signature  string
}

// Result reports whether the purchase was found. Upstream failures surface as
// Verified=false with Error set, never as a returned error.
type Result struct {
	Verified   bool   `json:"verified"`
	OrderID    string `json:"orderId,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type Verifier struct {
	Orders OrderSource
	Signer Signer
}

func NewVerifier(orders OrderSource, signer Signer) *Verifier {
	return &Verifier{Orders: orders, Signer: signer}
}

// Verify returns an error only for malformed requests and bad signatures.
// Customer and order ids may be numeric or global ids; signatures and the
// returned ids always use the numeric form.
func (v *Verifier) Verify(ctx context.Context, req Request) (Result, error) {
	customerID := platform.LegacyID(req.CustomerID)
	orderID := platform.LegacyID(req.OrderID)
	productID := strings.TrimSpace(req.ProductID)

	switch {
	case customerID == "" && orderID == "":
		return Result{}, ErrMissingIdentifier
	case customerID != "" && orderID != "":
		return Result{}, ErrAmbiguousIdentifier
	case productID == "":
		return Result{}, ErrMissingProduct
	}

	l := logging.FromContext(ctx).With("component", "ownership", "product_id", productID)
	if !v.Signer.Enabled() {
		l.Warn("signature_check_skipped", "reason", "no secret configured")
	}

	if customerID != "" {
		if err := v.Signer.Check(customerID, req.Signature); err != nil {
			return Result{}, err
		}
		return v.byCustomer(ctx, l, customerID, productID), nil
	}

	if err := v.Signer.Check(orderID, req.Signature); err != nil {
		return Result{}, err
	}
	return v.byOrder(ctx, l, orderID, productID), nil
}

func (v *Verifier) byCustomer(ctx context.Context, l *slog.Logger, customerID, productID string) Result {
	found, err := v.Orders.FindCustomerOrderWithProduct(ctx, customerID, productID)
	if err != nil {
		l.Warn("ownership_upstream_error", "path", "customer", "customer_id", customerID, "error", err)
		return Result{Verified: false, CustomerID: customerID, Error: err.Error()}
	}
	if found == "" {
		return Result{Verified: false, CustomerID: customerID}
	}
	return Result{Verified: true, OrderID: found, CustomerID: customerID}
}

func (v *Verifier) byOrder(ctx context.Context, l *slog.Logger, orderID, productID string) Result {
	order, err := v.Orders.GetOrder(ctx, orderID)
	if err != nil {
		l.Warn("ownership_upstream_error", "path", "order", "order_id", orderID, "error", err)
		return Result{Verified: false, OrderID: orderID, Error: err.Error()}
	}

	res := Result{OrderID: orderID}
	if order.Customer != nil && order.Customer.ID != 0 {
		res.CustomerID = strconv.FormatInt(order.Customer.ID, 10)
	}
	want := platform.LegacyID(productID)
	for _, li := range order.LineItems {
		if li.ProductID.String() != "" && li.ProductID.String() == want {
			res.Verified = true
			break
		}
	}
	return res
}
