package domain

import "time"

type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusCompleted TxStatus = "completed"
	StatusFailed    TxStatus = "failed"
	StatusCancelled TxStatus = "cancelled"
	StatusError     TxStatus = "error"
	StatusUnknown   TxStatus = "unknown"
)

// Transaction is the persisted result of one gateway round-trip,
// mapped from the gateway's callback field set. Nullable gateway
// fields stay nullable here.
type Transaction struct {
	ID               int64
	PaymentID        *string
	OrderID          string
	Name             *string
	Email            *string
	Tel              *string
	Address          *string
	City             *string
	State            *string
	ZipCode          *string
	Country          *string
	Amount           string
	Currency         string
	OriginalAmount   string
	OriginalCurrency string
	BankRefNo        *string
	Status           TxStatus
	PaymentMethod    *string
	CardNetwork      *string
	TransactionFee   *string
	ServiceTax       *string
	ErrorMessage     *string
	TransactionTime  time.Time
	CreatedAt        time.Time
}
