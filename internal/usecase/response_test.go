package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantumphp123/CCAvenuePHP/internal/codec"
	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
	"github.com/quantumphp123/CCAvenuePHP/internal/repository"
)

func newTestResponseHandler(t *testing.T) (*ResponseHandler, *repository.SQLiteRepo, *codec.Codec) {
	t.Helper()
	repo, err := repository.NewSQLiteRepo(":memory:")
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	c := codec.New(testWorkingKey)
	return NewResponseHandler(repo, c), repo, c
}

func encryptResponse(t *testing.T, c *codec.Codec, raw string) string {
	t.Helper()
	enc, err := c.Encrypt(raw)
	if err != nil {
		t.Fatalf("encrypt test response: %v", err)
	}
	return enc
}

func seedOrder(t *testing.T, repo *repository.SQLiteRepo, orderID string) {
	t.Helper()
	err := repo.InsertOrder(context.Background(), &domain.Order{
		OrderID:          orderID,
		Amount:           "835.00",
		Currency:         "INR",
		OriginalAmount:   "10",
		OriginalCurrency: "USD",
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestHandleResponseSuccess(t *testing.T) {
	h, repo, c := newTestResponseHandler(t)
	ctx := context.Background()
	seedOrder(t, repo, "ORD-1")

	raw := "order_id=ORD-1&tracking_id=313&order_status=SUCCESS&amount=835.00&currency=INR" +
		"&billing_name=Jane Doe&billing_email=jane@example.com&bank_ref_no=BR9" +
		"&payment_mode=Credit Card&card_name=Visa&trans_date=03/01/2026 12:30:45"

	out, err := h.HandleResponse(ctx, encryptResponse(t, c, raw))
	if err != nil {
		t.Fatalf("HandleResponse: %v", err)
	}
	if out.State != StateSuccess || out.OrderID != "ORD-1" {
		t.Fatalf("outcome = %+v", out)
	}

	tx, err := repo.GetTransactionByOrderID(ctx, "ORD-1")
	if err != nil {
		t.Fatalf("transaction not persisted: %v", err)
	}
	if tx.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", tx.Status)
	}
	if tx.PaymentID == nil || *tx.PaymentID != "313" {
		t.Fatalf("payment_id = %v", tx.PaymentID)
	}
	if tx.OriginalAmount != "10" || tx.OriginalCurrency != "USD" {
		t.Fatalf("original context not recovered: %s %s", tx.OriginalAmount, tx.OriginalCurrency)
	}
	want := time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)
	if !tx.TransactionTime.Equal(want) {
		t.Fatalf("transaction_time = %v, want %v", tx.TransactionTime, want)
	}
	if tx.ErrorMessage != nil {
		t.Fatalf("error_message = %v, want nil", *tx.ErrorMessage)
	}

	// Dispatch logged as payment_success.
	logs, err := repo.GetPaymentLogByID(ctx, 1)
	if err != nil {
		t.Fatalf("payment log missing: %v", err)
	}
	if logs.LogType != domain.EventPaymentSuccess {
		t.Fatalf("log_type = %s", logs.LogType)
	}
}

func TestHandleResponseFailureJoinsErrorFields(t *testing.T) {
	h, repo, c := newTestResponseHandler(t)
	ctx := context.Background()
	seedOrder(t, repo, "ORD-2")

	raw := "order_id=ORD-2&order_status=FAILURE&amount=10.00&currency=INR" +
		"&failure_message=Declined&status_message=Insufficient funds&status_code=51"

	out, err := h.HandleResponse(ctx, encryptResponse(t, c, raw))
	if err != nil {
		t.Fatalf("HandleResponse: %v", err)
	}
	if out.State != StateFailure {
		t.Fatalf("state = %s, want FAILURE", out.State)
	}

	tx, err := repo.GetTransactionByOrderID(ctx, "ORD-2")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Status != domain.StatusFailed {
		t.Fatalf("status = %s, want failed", tx.Status)
	}
	if tx.ErrorMessage == nil || *tx.ErrorMessage != "Declined | Insufficient funds | 51" {
		t.Fatalf("error_message = %v", tx.ErrorMessage)
	}
}

func TestHandleResponseAborted(t *testing.T) {
	h, repo, c := newTestResponseHandler(t)
	ctx := context.Background()
	seedOrder(t, repo, "ORD-3")

	out, err := h.HandleResponse(ctx, encryptResponse(t, c, "order_id=ORD-3&order_status=ABORTED"))
	if err != nil {
		t.Fatalf("HandleResponse: %v", err)
	}
	if out.State != StateAborted {
		t.Fatalf("state = %s, want ABORTED", out.State)
	}

	tx, err := repo.GetTransactionByOrderID(ctx, "ORD-3")
	if err != nil {
		t.Fatal(err)
	}
	if tx.Status != domain.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", tx.Status)
	}
}

func TestHandleResponseMissingOrderDefaults(t *testing.T) {
	h, repo, c := newTestResponseHandler(t)
	ctx := context.Background()

	// No order row seeded: originals default to 0/INR and processing
	// continues.
	out, err := h.HandleResponse(ctx, encryptResponse(t, c,
		"order_id=GHOST&order_status=SUCCESS&amount=5.00&currency=INR"))
	if err != nil {
		t.Fatalf("HandleResponse: %v", err)
	}
	if out.State != StateSuccess {
		t.Fatalf("state = %s", out.State)
	}

	tx, err := repo.GetTransactionByOrderID(ctx, "GHOST")
	if err != nil {
		t.Fatal(err)
	}
	if tx.OriginalAmount != "0" || tx.OriginalCurrency != "INR" {
		t.Fatalf("defaults not applied: %s %s", tx.OriginalAmount, tx.OriginalCurrency)
	}
}

func TestHandleResponseRejections(t *testing.T) {
	h, repo, c := newTestResponseHandler(t)
	ctx := context.Background()

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"whitespace body", "   "},
		{"not hex", "zz-not-ciphertext"},
		{"missing status", encryptResponse(t, c, "order_id=1&amount=5.00")},
		{"unrecognized status", encryptResponse(t, c, "order_id=1&order_status=INVALID")},
		{"tampered status", encryptResponse(t, c, "order_id=1&order_status=TOTALLY_FINE")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := h.HandleResponse(ctx, tc.body)
			if !errors.Is(err, domain.ErrInvalidResponse) {
				t.Fatalf("err = %v, want ErrInvalidResponse", err)
			}
			if out.State != StateRejected {
				t.Fatalf("state = %s, want REJECTED", out.State)
			}
		})
	}

	// Rejected callbacks must not create transaction rows.
	items, err := repo.ListTransactions(ctx, repository.TxFilter{}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected callbacks created %d transactions", len(items))
	}
}

func TestHandleResponseBadTransDateFallsBack(t *testing.T) {
	h, repo, c := newTestResponseHandler(t)
	ctx := context.Background()

	fixed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	_, err := h.HandleResponse(ctx, encryptResponse(t, c,
		"order_id=ORD-T&order_status=SUCCESS&trans_date=yesterday-ish"))
	if err != nil {
		t.Fatal(err)
	}

	tx, err := repo.GetTransactionByOrderID(ctx, "ORD-T")
	if err != nil {
		t.Fatal(err)
	}
	if !tx.TransactionTime.Equal(fixed) {
		t.Fatalf("transaction_time = %v, want fallback %v", tx.TransactionTime, fixed)
	}
}

func TestLogEventDropsEmptyFields(t *testing.T) {
	h, repo, _ := newTestResponseHandler(t)
	ctx := context.Background()

	id, err := h.LogEvent(ctx, domain.EventModalClosed, map[string]string{
		"order_id":   "ORD-9",
		"error_code": "",
	})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	l, err := repo.GetPaymentLogByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if l.Data != `{"order_id":"ORD-9"}` {
		t.Fatalf("data = %s", l.Data)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.TxStatus
	}{
		{"SUCCESS", domain.StatusCompleted},
		{"success", domain.StatusCompleted},
		{"FAILURE", domain.StatusFailed},
		{"ABORTED", domain.StatusCancelled},
		{"INVALID", domain.StatusError},
		{"", domain.StatusPending},
		{"weird", domain.StatusUnknown},
	}
	for _, tc := range cases {
		if got := domain.ClassifyStatus(tc.raw); got != tc.want {
			t.Fatalf("ClassifyStatus(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
