package domain

import "time"

// Allowed client-side payment event types for POST /log-payment-event.
const (
	EventPaymentSuccess = "payment_success"
	EventPaymentError   = "payment_error"
	EventPaymentAborted = "payment_aborted"
	EventPaymentFailed  = "payment_failed"
	EventModalClosed    = "modal_closed"
)

// EventPaymentFailure is the server-side dispatch log type for a
// FAILURE callback. Distinct from the client event "payment_failed".
const EventPaymentFailure = "payment_failure"

// PaymentLog is an append-only diagnostic record. Data holds the raw
// event payload as JSON; rows are never mutated or deleted.
type PaymentLog struct {
	ID        int64
	LogType   string
	Data      string
	CreatedAt time.Time
}

// ErrorLog is an append-only record of internal failures. Writing one
// must never itself abort a request.
type ErrorLog struct {
	ID           int64
	ErrorType    string
	ErrorMessage string
	CreatedAt    time.Time
}
