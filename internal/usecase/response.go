package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quantumphp123/CCAvenuePHP/internal/codec"
	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
	"github.com/quantumphp123/CCAvenuePHP/internal/payload"
	"github.com/quantumphp123/CCAvenuePHP/internal/repository"
)

// transDateLayout is the gateway's trans_date format (m/d/Y H:i:s).
const transDateLayout = "01/02/2006 15:04:05"

// ResponseState tracks one callback through its lifecycle:
// RECEIVED -> DECRYPTED -> PARSED -> CLASSIFIED -> terminal outcome.
type ResponseState string

const (
	StateReceived   ResponseState = "RECEIVED"
	StateDecrypted  ResponseState = "DECRYPTED"
	StateParsed     ResponseState = "PARSED"
	StateClassified ResponseState = "CLASSIFIED"
	StateSuccess    ResponseState = "SUCCESS"
	StateFailure    ResponseState = "FAILURE"
	StateAborted    ResponseState = "ABORTED"
	StateRejected   ResponseState = "REJECTED"
)

// Outcome is the terminal result of handling one gateway callback.
type Outcome struct {
	State   ResponseState
	OrderID string
}

// ResponseHandler processes the gateway's encrypted POST callback.
// The endpoint is an unauthenticated public callback, so every step
// treats the input as potentially adversarial.
type ResponseHandler struct {
	repo  *repository.SQLiteRepo
	codec *codec.Codec

	now func() time.Time
}

func NewResponseHandler(repo *repository.SQLiteRepo, c *codec.Codec) *ResponseHandler {
	return &ResponseHandler{repo: repo, codec: c, now: time.Now}
}

// HandleResponse decrypts and parses the callback body, classifies the
// gateway status, persists the transaction, and logs the dispatch
// event. Rejections return domain.ErrInvalidResponse; the HTTP layer
// turns any error into a generic redirect and never leaks detail back
// to the gateway.
func (h *ResponseHandler) HandleResponse(ctx context.Context, encResp string) (Outcome, error) {
	rejected := Outcome{State: StateRejected}

	if strings.TrimSpace(encResp) == "" {
		return rejected, h.reject(ctx, fmt.Errorf("%w: empty response body", domain.ErrInvalidResponse))
	}

	plain, err := h.codec.Decrypt(encResp)
	if err != nil {
		return rejected, h.reject(ctx, fmt.Errorf("%w: %w", domain.ErrInvalidResponse, err))
	}

	data := payload.Parse(plain)

	rawStatus, ok := data["order_status"]
	if !ok {
		return rejected, h.reject(ctx, fmt.Errorf("%w: payment status not found in response", domain.ErrInvalidResponse))
	}

	var state ResponseState
	var event string
	switch strings.ToUpper(rawStatus) {
	case "SUCCESS":
		state, event = StateSuccess, domain.EventPaymentSuccess
	case "FAILURE":
		state, event = StateFailure, domain.EventPaymentFailure
	case "ABORTED":
		state, event = StateAborted, domain.EventPaymentAborted
	default:
		// Any other value on this unauthenticated endpoint is treated
		// as tampering, not as a new status to accommodate.
		return rejected, h.reject(ctx, fmt.Errorf("%w: illegal payment status %q", domain.ErrInvalidResponse, rawStatus))
	}

	tx := h.mapTransaction(ctx, data)
	if err := h.repo.InsertTransaction(ctx, tx); err != nil {
		h.logError(ctx, "Transaction Save Error", err.Error())
		return rejected, fmt.Errorf("saving transaction: %w", err)
	}

	if raw, err := json.Marshal(data); err == nil {
		if _, err := h.repo.InsertPaymentLog(ctx, event, string(raw)); err != nil {
			// Diagnostic only; the payment itself is already recorded.
			h.logError(ctx, "Payment Logging Error", err.Error())
		}
	}

	return Outcome{State: state, OrderID: tx.OrderID}, nil
}

// LogEvent records a client-reported payment event (the
// /log-payment-event endpoint). Payload keys with empty values are
// dropped before serialization.
func (h *ResponseHandler) LogEvent(ctx context.Context, eventType string, fields map[string]string) (int64, error) {
	filtered := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			filtered[k] = v
		}
	}

	raw, err := json.Marshal(filtered)
	if err != nil {
		return 0, err
	}
	return h.repo.InsertPaymentLog(ctx, eventType, string(raw))
}

// mapTransaction maps the gateway's response fields onto the
// transaction record, recovering the original amount/currency from the
// order row created at checkout.
func (h *ResponseHandler) mapTransaction(ctx context.Context, data map[string]string) *domain.Transaction {
	orderID := data["order_id"]

	originalAmount, originalCurrency := "0", "INR"
	order, err := h.repo.GetOrderByID(ctx, orderID)
	switch {
	case err == nil:
		originalAmount = order.OriginalAmount
		originalCurrency = order.OriginalCurrency
	case err == repository.ErrNotFound:
		// OrderNotFound -> defaulted: keep processing the callback with
		// zeroed originals instead of dropping the transaction.
		h.logError(ctx, "Order Details Error", fmt.Sprintf("Order with order_id %s not found.", orderID))
	default:
		h.logError(ctx, "Order Details Error", err.Error())
	}

	amount := data["amount"]
	if amount == "" {
		amount = "0"
	}
	currency := data["currency"]
	if currency == "" {
		currency = "INR"
	}

	txTime := h.now()
	if parsed, err := time.Parse(transDateLayout, data["trans_date"]); err == nil {
		txTime = parsed
	}

	return &domain.Transaction{
		PaymentID:        optString(data, "tracking_id"),
		OrderID:          orderID,
		Name:             optString(data, "billing_name"),
		Email:            optString(data, "billing_email"),
		Tel:              optString(data, "billing_tel"),
		Address:          optString(data, "billing_address"),
		City:             optString(data, "billing_city"),
		State:            optString(data, "billing_state"),
		ZipCode:          optString(data, "billing_zip"),
		Country:          optString(data, "billing_country"),
		Amount:           amount,
		Currency:         currency,
		OriginalAmount:   originalAmount,
		OriginalCurrency: originalCurrency,
		BankRefNo:        optString(data, "bank_ref_no"),
		Status:           domain.ClassifyStatus(data["order_status"]),
		PaymentMethod:    optString(data, "payment_mode"),
		CardNetwork:      optString(data, "card_name"),
		TransactionFee:   optString(data, "trans_fee"),
		ServiceTax:       optString(data, "service_tax"),
		ErrorMessage:     errorMessage(data),
		TransactionTime:  txTime,
	}
}

// errorMessage joins every present failure detail field with " | ".
func errorMessage(data map[string]string) *string {
	var parts []string
	for _, key := range []string{"failure_message", "status_message", "status_code"} {
		if v := data[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	msg := strings.Join(parts, " | ")
	return &msg
}

func optString(data map[string]string, key string) *string {
	v, ok := data[key]
	if !ok {
		return nil
	}
	return &v
}

// reject records the rejection in the error log before handing the
// error back; the log row is the only place the real reason survives.
func (h *ResponseHandler) reject(ctx context.Context, err error) error {
	h.logError(ctx, "Payment Response Error", err.Error())
	return err
}

// logError writes to the error-log table, degrading to the process log
// when even that write fails. Never propagates.
func (h *ResponseHandler) logError(ctx context.Context, errorType, message string) {
	if _, err := h.repo.InsertErrorLog(ctx, errorType, message); err != nil {
		log.Printf("payment system error (%s): %s (error log write failed: %v)", errorType, message, err)
	}
}
