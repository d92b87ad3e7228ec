package domain

import "errors"

// Error taxonomy. Callers wrap these with context via fmt.Errorf and
// %w; the HTTP boundary checks with errors.Is and never echoes the
// internal detail to the client.
var (
	// ErrValidation marks a bad or missing input field.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedCurrency marks a currency with no exchange rate.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrCodec marks an encrypt/decrypt failure: malformed hex,
	// bad ciphertext length, or invalid padding.
	ErrCodec = errors.New("codec failure")

	// ErrInvalidResponse marks a gateway callback that is missing,
	// undecryptable, or carries an unrecognized status. The last case
	// is treated as tamper suspicion, not a mere validation miss.
	ErrInvalidResponse = errors.New("invalid gateway response")

	// ErrPersistence marks a storage write failure.
	ErrPersistence = errors.New("persistence failure")

	// ErrOrderCreation wraps any failure during order build; order
	// creation is never retried to avoid duplicate payment orders.
	ErrOrderCreation = errors.New("order creation failed")
)
