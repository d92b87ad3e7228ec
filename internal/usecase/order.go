package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantumphp123/CCAvenuePHP/internal/codec"
	"github.com/quantumphp123/CCAvenuePHP/internal/config"
	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
	"github.com/quantumphp123/CCAvenuePHP/internal/payload"
	"github.com/quantumphp123/CCAvenuePHP/internal/repository"
)

// maxOrderIDLen is the gateway's order_id limit.
const maxOrderIDLen = 30

// OrderService builds the encrypted order-initiation payload and
// persists the order row the response handler later looks up.
type OrderService struct {
	repo  *repository.SQLiteRepo
	codec *codec.Codec
	cfg   config.Config

	now     func() time.Time
	randInt func(min, max int) int
}

func NewOrderService(repo *repository.SQLiteRepo, c *codec.Codec, cfg config.Config) *OrderService {
	return &OrderService{
		repo:  repo,
		codec: c,
		cfg:   cfg,
		now:   time.Now,
		randInt: func(min, max int) int {
			return min + rand.Intn(max-min+1)
		},
	}
}

// CustomerData carries the billing fields forwarded to the gateway.
// Address is the already-joined address1+address2 line.
type CustomerData struct {
	Name    string
	Email   string
	Tel     string
	Address string
	State   string
	Country string
	Zip     string
	City    string
}

type CreateOrderInput struct {
	// Amount is the charge amount in the gateway currency (INR).
	Amount decimal.Decimal
	// Currency is the gateway currency code, normally INR.
	Currency string
	// OriginalAmount/OriginalCurrency preserve what the customer
	// actually entered, before conversion.
	OriginalAmount   string
	OriginalCurrency string
	OrderID          string
	Customer         CustomerData
}

type CreateOrderResult struct {
	EncryptedData string
	AccessCode    string
	OrderID       string
}

// GenerateOrderID returns a gateway-safe order identifier: the
// microsecond unix timestamp concatenated with a 3-digit random
// suffix, truncated to 30 characters. Collisions are theoretically
// possible but need two orders in the same microsecond drawing the
// same suffix; that risk is accepted.
func (s *OrderService) GenerateOrderID() string {
	id := strconv.FormatInt(s.now().UnixMicro(), 10) + strconv.Itoa(s.randInt(100, 999))
	if len(id) > maxOrderIDLen {
		id = id[:maxOrderIDLen]
	}
	return id
}

// CreateOrder assembles the merchant data string in the gateway's
// required field order, encrypts it, and persists the order row.
// Failures wrap domain.ErrOrderCreation and are never retried here: a
// retry could silently duplicate a payment order.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	f := payload.NewFields()
	f.Set("tid", strconv.FormatInt(s.now().Unix(), 10))
	f.Set("merchant_id", s.cfg.MerchantID)
	f.Set("order_id", in.OrderID)
	f.Set("amount", in.Amount.StringFixed(2))
	f.Set("currency", in.Currency)
	f.Set("redirect_url", s.cfg.RedirectURL())
	f.Set("cancel_url", s.cfg.CancelURL())
	f.Set("language", "EN")

	f.Set("billing_name", in.Customer.Name)
	f.Set("billing_email", in.Customer.Email)
	f.Set("billing_tel", in.Customer.Tel)
	f.Set("billing_address", in.Customer.Address)
	f.Set("billing_state", in.Customer.State)
	f.Set("billing_country", in.Customer.Country)
	f.Set("billing_zip", in.Customer.Zip)
	f.Set("billing_city", in.Customer.City)

	encrypted, err := s.codec.Encrypt(f.Format())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderCreation, err)
	}

	order := &domain.Order{
		OrderID:          in.OrderID,
		Amount:           in.Amount.StringFixed(2),
		Currency:         in.Currency,
		OriginalAmount:   in.OriginalAmount,
		OriginalCurrency: in.OriginalCurrency,
	}
	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOrderCreation, err)
	}

	return &CreateOrderResult{
		EncryptedData: encrypted,
		AccessCode:    s.cfg.AccessCode,
		OrderID:       in.OrderID,
	}, nil
}
