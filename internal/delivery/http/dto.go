package httpd

import "time"

// CreateOrderReq carries the checkout form fields. The validate tags
// are the typed replacement for the old dynamic rule arrays: required,
// numeric, min and oneof constraints evaluated per field.
type CreateOrderReq struct {
	Amount   string `validate:"required,numeric"`
	Currency string `validate:"required,alpha,len=3"`
	Name     string `validate:"required,min=2"`
	Email    string `validate:"required,email"`
	Tel      string `validate:"omitempty,max=20"`
	Address1 string `validate:"required"`
	Address2 string `validate:"omitempty"`
	Country  string `validate:"required"`
	Zip      string `validate:"required"`
	State    string `validate:"required"`
	City     string `validate:"required"`
}

type CreateOrderResp struct {
	Success        bool   `json:"success"`
	EncryptedData  string `json:"encrypted_data"`
	AccessCode     string `json:"access_code"`
	TransactionURL string `json:"transaction_url"`
}

type LogEventReq struct {
	EventType        string `validate:"required,oneof=payment_success payment_error payment_aborted payment_failed modal_closed"`
	PaymentID        string `validate:"omitempty,max=100"`
	OrderID          string `validate:"omitempty,max=30"`
	Amount           string `validate:"omitempty,numeric"`
	Currency         string `validate:"omitempty,alpha,len=3"`
	ErrorCode        string `validate:"omitempty,max=100"`
	ErrorDescription string `validate:"omitempty,max=500"`
}

type LogEventResp struct {
	Success bool  `json:"success"`
	LogID   int64 `json:"log_id"`
}

type TxItem struct {
	OrderID          string    `json:"order_id"`
	PaymentID        *string   `json:"payment_id,omitempty"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	OriginalAmount   string    `json:"original_amount"`
	OriginalCurrency string    `json:"original_currency"`
	BankRefNo        *string   `json:"bank_ref_no,omitempty"`
	Status           string    `json:"status"`
	PaymentMethod    *string   `json:"payment_method,omitempty"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	TransactionTime  time.Time `json:"transaction_time"`
}
