package platform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoToken     = errors.New("platform: no access token for shop")
	ErrInvalidShop = errors.New("platform: invalid shop domain")
)

// APIError is returned for any non-2xx platform response and for GraphQL
// responses that carry top-level errors.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("platform: status %d: %s", e.Status, body)
}

// IsNotFound reports whether err is a 404 from the platform.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
