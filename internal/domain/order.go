package domain

import "time"

// Order is created once per checkout attempt, before the customer is
// sent to the gateway. It is immutable; the response handler looks it
// up later by OrderID to recover the original amount/currency.
type Order struct {
	ID               int64
	OrderID          string
	Amount           string
	Currency         string
	OriginalAmount   string
	OriginalCurrency string
	CreatedAt        time.Time
}
