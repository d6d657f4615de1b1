package app

import "errors"

// Sentinel errors surfaced by the application services. The API layer maps
// them onto HTTP statuses with errors.Is.
var (
	// Payment gateway bridge
	ErrInvalidPaymentRequest    = errors.New("invalid payment request")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrPaymentCreationFailed    = errors.New("payment creation failed at provider")
	ErrInvalidRequest           = errors.New("missing or malformed identifier")
	ErrStatusUnavailable        = errors.New("payment provider unreachable")

	// Nearby-risk query
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrRadiusTooLarge     = errors.New("radius exceeds the allowed ceiling")
)
