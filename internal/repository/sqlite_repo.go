package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Single connection: sqlite allows one writer, and an in-memory
	// DSN is per-connection.
	db.SetMaxOpenConns(1)

	db.Exec("PRAGMA foreign_keys = ON;")
	db.Exec("PRAGMA journal_mode = WAL;")
	db.Exec("PRAGMA busy_timeout = 5000;")

	r := &SQLiteRepo{db: db}
	if err := r.migrate(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS orders(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id TEXT NOT NULL UNIQUE,
			amount TEXT NOT NULL,
			currency TEXT NOT NULL,
			original_amount TEXT NOT NULL,
			original_currency TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transactions(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			payment_id TEXT,
			order_id TEXT NOT NULL,
			name TEXT,
			email TEXT,
			tel TEXT,
			address TEXT,
			city TEXT,
			state TEXT,
			zip_code TEXT,
			country TEXT,
			amount TEXT NOT NULL,
			currency_type TEXT NOT NULL,
			original_amount TEXT NOT NULL,
			original_currency TEXT NOT NULL,
			bank_ref_no TEXT,
			status TEXT NOT NULL,
			payment_method TEXT,
			card_network TEXT,
			transaction_fee TEXT,
			service_tax TEXT,
			error_message TEXT,
			transaction_time TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS payment_logs(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			log_type TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS error_logs(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			error_type TEXT NOT NULL,
			error_message TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_orders_order_id ON orders(order_id);
		CREATE INDEX IF NOT EXISTS idx_tx_order_id ON transactions(order_id);
		CREATE INDEX IF NOT EXISTS idx_tx_status ON transactions(status);
		CREATE INDEX IF NOT EXISTS idx_payment_logs_type ON payment_logs(log_type);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRepo) InsertOrder(ctx context.Context, o *domain.Order) error {
	q := `
		INSERT INTO orders(order_id, amount, currency, original_amount, original_currency, created_at)
		VALUES(?, ?, ?, ?, ?, ?);
	`

	now := time.Now().UTC()
	res, err := r.db.ExecContext(
		ctx, q,
		o.OrderID,
		o.Amount,
		o.Currency,
		o.OriginalAmount,
		o.OriginalCurrency,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert order: %v", domain.ErrPersistence, err)
	}

	o.ID, _ = res.LastInsertId()
	o.CreatedAt = now
	return nil
}

func (r *SQLiteRepo) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	q := `
		SELECT id, order_id, amount, currency, original_amount, original_currency, created_at
		FROM orders WHERE order_id = ? LIMIT 1
	`

	var o domain.Order
	var createdStr string
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID,
		&o.OrderID,
		&o.Amount,
		&o.Currency,
		&o.OriginalAmount,
		&o.OriginalCurrency,
		&createdStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("parse order created_at: %w", err)
	}
	return &o, nil
}

func (r *SQLiteRepo) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	q := `
		INSERT INTO transactions(
			payment_id, order_id, name, email, tel,
			address, city, state, zip_code, country,
			amount, currency_type, original_amount, original_currency,
			bank_ref_no, status, payment_method, card_network,
			transaction_fee, service_tax, error_message, transaction_time, created_at
		)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	now := time.Now().UTC()
	res, err := r.db.ExecContext(
		ctx, q,
		t.PaymentID,
		t.OrderID,
		t.Name,
		t.Email,
		t.Tel,
		t.Address,
		t.City,
		t.State,
		t.ZipCode,
		t.Country,
		t.Amount,
		t.Currency,
		t.OriginalAmount,
		t.OriginalCurrency,
		t.BankRefNo,
		string(t.Status),
		t.PaymentMethod,
		t.CardNetwork,
		t.TransactionFee,
		t.ServiceTax,
		t.ErrorMessage,
		t.TransactionTime.UTC().Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert transaction: %v", domain.ErrPersistence, err)
	}

	t.ID, _ = res.LastInsertId()
	t.CreatedAt = now
	return nil
}

const txColumns = `
	id, payment_id, order_id, name, email, tel,
	address, city, state, zip_code, country,
	amount, currency_type, original_amount, original_currency,
	bank_ref_no, status, payment_method, card_network,
	transaction_fee, service_tax, error_message, transaction_time, created_at
`

func (r *SQLiteRepo) GetTransactionByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	q := `SELECT ` + txColumns + ` FROM transactions WHERE order_id = ? LIMIT 1`

	row := r.db.QueryRowContext(ctx, q, orderID)
	t, err := scanTx(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

type TxFilter struct {
	OrderID string
	Status  domain.TxStatus
}

func (r *SQLiteRepo) ListTransactions(ctx context.Context, f TxFilter, limit, offset int) ([]domain.Transaction, error) {
	q := `SELECT ` + txColumns + ` FROM transactions WHERE 1 = 1`
	args := []any{}

	if f.OrderID != "" {
		q += " AND order_id = ?"
		args = append(args, f.OrderID)
	}

	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, string(f.Status))
	}

	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}

		res = append(res, *t)
	}

	return res, rows.Err()
}

func (r *SQLiteRepo) InsertPaymentLog(ctx context.Context, logType, data string) (int64, error) {
	q := `INSERT INTO payment_logs(log_type, data, created_at) VALUES(?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q, logType, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("%w: insert payment log: %v", domain.ErrPersistence, err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetPaymentLogByID(ctx context.Context, id int64) (*domain.PaymentLog, error) {
	q := `SELECT id, log_type, data, created_at FROM payment_logs WHERE id = ?`

	var l domain.PaymentLog
	var createdStr string
	err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.LogType, &l.Data, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	l.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("parse payment log created_at: %w", err)
	}
	return &l, nil
}

func (r *SQLiteRepo) InsertErrorLog(ctx context.Context, errorType, message string) (int64, error) {
	q := `INSERT INTO error_logs(error_type, error_message, created_at) VALUES(?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q, errorType, message, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("%w: insert error log: %v", domain.ErrPersistence, err)
	}
	return res.LastInsertId()
}

func scanTx(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	var t domain.Transaction
	var status string
	var txTimeStr, createdStr string

	if err := scanner.Scan(
		&t.ID,
		&t.PaymentID,
		&t.OrderID,
		&t.Name,
		&t.Email,
		&t.Tel,
		&t.Address,
		&t.City,
		&t.State,
		&t.ZipCode,
		&t.Country,
		&t.Amount,
		&t.Currency,
		&t.OriginalAmount,
		&t.OriginalCurrency,
		&t.BankRefNo,
		&status,
		&t.PaymentMethod,
		&t.CardNetwork,
		&t.TransactionFee,
		&t.ServiceTax,
		&t.ErrorMessage,
		&txTimeStr,
		&createdStr,
	); err != nil {
		return nil, err
	}

	t.Status = domain.TxStatus(status)

	txTime, err := time.Parse(time.RFC3339Nano, txTimeStr)
	if err != nil {
		return nil, fmt.Errorf("parse tx time: %w", err)
	}
	t.TransactionTime = txTime

	created, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return nil, fmt.Errorf("parse created time: %w", err)
	}
	t.CreatedAt = created

	return &t, nil
}
