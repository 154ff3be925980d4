package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/community_gallery/internal/mediahost"
	"github.com/Skotchmaster/community_gallery/internal/mykafka"
	"github.com/Skotchmaster/community_gallery/internal/ownership"
	"github.com/Skotchmaster/community_gallery/internal/platform"
	"github.com/Skotchmaster/community_gallery/pkg/logging"
)

var (
	ErrValidation      = errors.New("validation")      // 400
	ErrUnauthenticated = errors.New("unauthenticated") // 401
	ErrForbidden       = errors.New("forbidden")       // 403
	ErrNotFound        = errors.New("not found")       // 404
	ErrConflict        = errors.New("conflict")        // 409
	ErrUpstream        = errors.New("upstream")        // 500
)

const (
	EventMediaSubmitted = "media_submitted"
	EventMediaModerated = "media_moderated"
	EventOrderPaid      = "order_paid"
)

type OwnershipVerifier interface {
	Verify(ctx context.Context, req ownership.Request) (ownership.Result, error)
}

type MediaUploader interface {
	Upload(ctx context.Context, data []byte, opts mediahost.Options) (*mediahost.Result, error)
}

type ProductSource interface {
	GetProduct(ctx context.Context, productID string) (*platform.Product, error)
}

type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data"`
}

// publish sends a domain event; failures are logged and never returned.
func publish(ctx context.Context, p mykafka.Publisher, topic, key, typ string, data any) {
	if p == nil || topic == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ev := Event{Type: typ, At: time.Now().UTC(), Data: data}
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", typ, "key", key, "error", err)
	}
}

// ownershipErr maps verifier request errors onto the service taxonomy.
func ownershipErr(err error) error {
	switch {
	case errors.Is(err, ownership.ErrMissingIdentifier), errors.Is(err, ownership.ErrInvalidSignature):
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	case errors.Is(err, ownership.ErrAmbiguousIdentifier), errors.Is(err, ownership.ErrMissingProduct):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}

// platformErr maps platform client failures onto the service taxonomy,
// keeping the upstream message.
func platformErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, platform.ErrNoToken):
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	case platform.IsNotFound(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
