package whatsapp

import (
	"errors"
	"fmt"

	"github.com/wimotos/backend/internal/domain/shared"
)

// maxErrorBody bounds how much of a failed response body is kept
const maxErrorBody = 300

// ErrNotConfigured is returned when the base URL or credentials are missing
var ErrNotConfigured = errors.New("whatsapp: transport not configured")

// DeliveryError is a non-2xx answer from the gateway
type DeliveryError struct {
	Status int
	Body   string
}

func newDeliveryError(status int, body []byte) *DeliveryError {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return &DeliveryError{Status: status, Body: b}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("blibsend (%d): %s", e.Status, e.Body)
}

// Is lets errors.Is(err, shared.ErrDeliveryFailure) match gateway rejections
func (e *DeliveryError) Is(target error) bool {
	return target == shared.ErrDeliveryFailure
}
