package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	r, err := NewSQLiteRepo(":memory:")
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func strp(s string) *string { return &s }

func TestOrderRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	o := &domain.Order{
		OrderID:          "1710000000000000123",
		Amount:           "835.00",
		Currency:         "INR",
		OriginalAmount:   "10",
		OriginalCurrency: "USD",
	}
	if err := r.InsertOrder(ctx, o); err != nil {
		t.Fatalf("InsertOrder: %v", err)
	}
	if o.ID == 0 {
		t.Fatal("InsertOrder did not set ID")
	}

	got, err := r.GetOrderByID(ctx, o.OrderID)
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if got.Amount != "835.00" || got.OriginalCurrency != "USD" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("order created_at is zero")
	}
}

func TestGetOrderNotFound(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.GetOrderByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateOrderIDRejected(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	o := &domain.Order{OrderID: "dup", Amount: "1.00", Currency: "INR", OriginalAmount: "1", OriginalCurrency: "INR"}
	if err := r.InsertOrder(ctx, o); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := r.InsertOrder(ctx, &domain.Order{OrderID: "dup", Amount: "2.00", Currency: "INR", OriginalAmount: "2", OriginalCurrency: "INR"})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("duplicate insert err = %v, want ErrPersistence", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	tx := &domain.Transaction{
		PaymentID:        strp("TRK-1"),
		OrderID:          "ORD-1",
		Name:             strp("Jane Doe"),
		Email:            strp("jane@example.com"),
		Amount:           "1499.00",
		Currency:         "INR",
		OriginalAmount:   "1499.00",
		OriginalCurrency: "INR",
		BankRefNo:        strp("BR-22"),
		Status:           domain.StatusCompleted,
		PaymentMethod:    strp("Credit Card"),
		CardNetwork:      strp("Visa"),
		TransactionTime:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := r.InsertTransaction(ctx, tx); err != nil {
		t.Fatalf("InsertTransaction: %v", err)
	}

	got, err := r.GetTransactionByOrderID(ctx, "ORD-1")
	if err != nil {
		t.Fatalf("GetTransactionByOrderID: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.PaymentID == nil || *got.PaymentID != "TRK-1" {
		t.Fatalf("payment_id = %v, want TRK-1", got.PaymentID)
	}
	if got.Tel != nil {
		t.Fatalf("tel = %v, want nil", got.Tel)
	}
	if !got.TransactionTime.Equal(tx.TransactionTime) {
		t.Fatalf("transaction_time = %v, want %v", got.TransactionTime, tx.TransactionTime)
	}
}

func TestDuplicateTransactionsForSameOrderAllowed(t *testing.T) {
	// Gateway retries may replay a callback; the store keeps both rows.
	r := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tx := &domain.Transaction{
			OrderID:          "ORD-R",
			Amount:           "5.00",
			Currency:         "INR",
			OriginalAmount:   "5.00",
			OriginalCurrency: "INR",
			Status:           domain.StatusCompleted,
			TransactionTime:  time.Now(),
		}
		if err := r.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	items, err := r.ListTransactions(ctx, TxFilter{OrderID: "ORD-R"}, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d rows, want 2", len(items))
	}
}

func TestListTransactionsFilters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	seed := []struct {
		order  string
		status domain.TxStatus
	}{
		{"A", domain.StatusCompleted},
		{"B", domain.StatusFailed},
		{"C", domain.StatusCompleted},
	}
	for _, s := range seed {
		tx := &domain.Transaction{
			OrderID: s.order, Amount: "1.00", Currency: "INR",
			OriginalAmount: "1.00", OriginalCurrency: "INR",
			Status: s.status, TransactionTime: time.Now(),
		}
		if err := r.InsertTransaction(ctx, tx); err != nil {
			t.Fatal(err)
		}
	}

	completed, err := r.ListTransactions(ctx, TxFilter{Status: domain.StatusCompleted}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 2 {
		t.Fatalf("completed = %d, want 2", len(completed))
	}
	// Newest first.
	if completed[0].OrderID != "C" {
		t.Fatalf("first order = %s, want C", completed[0].OrderID)
	}
}

func TestPaymentLogRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	id, err := r.InsertPaymentLog(ctx, domain.EventPaymentSuccess, `{"order_id":"X"}`)
	if err != nil {
		t.Fatalf("InsertPaymentLog: %v", err)
	}

	l, err := r.GetPaymentLogByID(ctx, id)
	if err != nil {
		t.Fatalf("GetPaymentLogByID: %v", err)
	}
	if l.LogType != domain.EventPaymentSuccess || l.Data != `{"order_id":"X"}` {
		t.Fatalf("unexpected log: %+v", l)
	}

	if _, err := r.GetPaymentLogByID(ctx, id+1000); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing log err = %v, want ErrNotFound", err)
	}
}

func TestInsertErrorLog(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.InsertErrorLog(context.Background(), "Payment Response Error", "boom"); err != nil {
		t.Fatalf("InsertErrorLog: %v", err)
	}
}
