package httpd

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/quantumphp123/CCAvenuePHP/internal/config"
	"github.com/quantumphp123/CCAvenuePHP/internal/currency"
	"github.com/quantumphp123/CCAvenuePHP/internal/domain"
	"github.com/quantumphp123/CCAvenuePHP/internal/repository"
	"github.com/quantumphp123/CCAvenuePHP/internal/session"
	"github.com/quantumphp123/CCAvenuePHP/internal/usecase"
)

// genericOrderError is the only message order-creation failures expose
// to the client; real causes stay in the error log.
const genericOrderError = "Unable to process payment request"

type Handler struct {
	orders    *usecase.OrderService
	responses *usecase.ResponseHandler
	repo      *repository.SQLiteRepo
	converter *currency.Converter
	csrf      *session.CSRFStore
	cfg       config.Config
	validate  *validator.Validate
}

func NewHandler(
	orders *usecase.OrderService,
	responses *usecase.ResponseHandler,
	repo *repository.SQLiteRepo,
	converter *currency.Converter,
	csrf *session.CSRFStore,
	cfg config.Config,
) *Handler {
	return &Handler{
		orders:    orders,
		responses: responses,
		repo:      repo,
		converter: converter,
		csrf:      csrf,
		cfg:       cfg,
		validate:  validator.New(),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(RequestLogger)

	r.Post("/create-order", h.CreateOrder)
	r.Post("/ccav-response-handler", h.GatewayResponse)
	r.Post("/log-payment-event", h.LogPaymentEvent)
	r.Get("/success", h.SuccessPage)
	r.Get("/error", h.ErrorPage)
	r.Get("/api/v1/csrf", h.IssueCSRF)
	r.Get("/api/v1/transactions", h.ListTransactions)
	r.Get("/api/v1/transactions/{orderID}", h.GetTransaction)
	r.Get("/healthz", h.Healthz)

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// fieldErrors reduces validator output to the first error per field.
func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if _, seen := out[fe.Field()]; !seen {
				out[fe.Field()] = fe.Tag()
			}
		}
	}
	return out
}

// POST /create-order
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.failOrder(w, r, fmt.Errorf("%w: parse form: %v", domain.ErrValidation, err))
		return
	}

	if !h.csrf.Validate(r.PostFormValue("csrf_token")) {
		h.failOrder(w, r, fmt.Errorf("%w: invalid CSRF token", domain.ErrValidation))
		return
	}

	zip := r.PostFormValue("zip")
	if zip == "" {
		zip = r.PostFormValue("zipcode")
	}
	req := CreateOrderReq{
		Amount:   r.PostFormValue("amount"),
		Currency: strings.ToUpper(r.PostFormValue("currency")),
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Tel:      r.PostFormValue("tel"),
		Address1: r.PostFormValue("address1"),
		Address2: r.PostFormValue("address2"),
		Country:  r.PostFormValue("country"),
		Zip:      zip,
		State:    r.PostFormValue("state"),
		City:     r.PostFormValue("city"),
	}

	if err := h.validate.Struct(req); err != nil {
		h.failOrder(w, r, fmt.Errorf("%w: %v", domain.ErrValidation, fieldErrors(err)))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThan(decimal.NewFromInt(1)) {
		h.failOrder(w, r, fmt.Errorf("%w: amount must be at least 1", domain.ErrValidation))
		return
	}

	amountINR, err := h.converter.Convert(amount, req.Currency)
	if err != nil {
		h.failOrder(w, r, err)
		return
	}

	address := req.Address1
	if req.Address2 != "" {
		address += " " + req.Address2
	}

	res, err := h.orders.CreateOrder(r.Context(), usecase.CreateOrderInput{
		Amount:           amountINR,
		Currency:         currency.BaseCurrency,
		OriginalAmount:   req.Amount,
		OriginalCurrency: req.Currency,
		OrderID:          h.orders.GenerateOrderID(),
		Customer: usecase.CustomerData{
			Name:    req.Name,
			Email:   req.Email,
			Tel:     req.Tel,
			Address: address,
			State:   req.State,
			Country: req.Country,
			Zip:     req.Zip,
			City:    req.City,
		},
	})
	if err != nil {
		h.failOrder(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResp{
		Success:        true,
		EncryptedData:  res.EncryptedData,
		AccessCode:     res.AccessCode,
		TransactionURL: h.cfg.TransactionURL(),
	})
}

// failOrder records the real cause and answers with the generic
// message only. The log write is best effort.
func (h *Handler) failOrder(w http.ResponseWriter, r *http.Request, err error) {
	h.repo.InsertErrorLog(r.Context(), "Payment Processing Error", err.Error())
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": genericOrderError})
}

// POST /ccav-response-handler
//
// The gateway expects a terminal HTTP response no matter what, so every
// failure path ends in a redirect to the generic error page.
func (h *Handler) GatewayResponse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/error?message="+url.QueryEscape("Error processing payment response"), http.StatusSeeOther)
		return
	}

	out, err := h.responses.HandleResponse(r.Context(), r.PostFormValue("encResp"))
	if err != nil {
		http.Redirect(w, r, "/error?message="+url.QueryEscape("Error processing payment response"), http.StatusSeeOther)
		return
	}

	switch out.State {
	case usecase.StateSuccess:
		http.Redirect(w, r, "/success?order_id="+url.QueryEscape(out.OrderID), http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/error?order_id="+url.QueryEscape(out.OrderID), http.StatusSeeOther)
	}
}

// POST /log-payment-event
func (h *Handler) LogPaymentEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "An error occurred: invalid form data"})
		return
	}

	req := LogEventReq{
		EventType:        r.PostFormValue("event_type"),
		PaymentID:        r.PostFormValue("payment_id"),
		OrderID:          r.PostFormValue("order_id"),
		Amount:           r.PostFormValue("amount"),
		Currency:         r.PostFormValue("currency"),
		ErrorCode:        r.PostFormValue("error_code"),
		ErrorDescription: r.PostFormValue("error_description"),
	}

	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   fmt.Sprintf("An error occurred: %v", fieldErrors(err)),
		})
		return
	}

	logID, err := h.responses.LogEvent(r.Context(), req.EventType, map[string]string{
		"event_type":        req.EventType,
		"payment_id":        req.PaymentID,
		"order_id":          req.OrderID,
		"amount":            req.Amount,
		"currency":          req.Currency,
		"error_code":        req.ErrorCode,
		"error_description": req.ErrorDescription,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "An error occurred: could not record event"})
		return
	}

	writeJSON(w, http.StatusOK, LogEventResp{Success: true, LogID: logID})
}

var outcomeTmpl = template.Must(template.New("outcome").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
  <h1>{{.Title}}</h1>
  <p>Order: {{.Tx.OrderID}}</p>
  <p>Status: {{.Tx.Status}}</p>
  <p>Amount: {{.Tx.Amount}} {{.Tx.Currency}}</p>
  {{if .Tx.BankRefNo}}<p>Bank reference: {{.Tx.BankRefNo}}</p>{{end}}
  {{if .Tx.ErrorMessage}}<p>Details: {{.Tx.ErrorMessage}}</p>{{end}}
</body></html>
`))

func (h *Handler) renderOutcome(w http.ResponseWriter, r *http.Request, title string) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		http.Redirect(w, r, h.cfg.AppBaseURL, http.StatusSeeOther)
		return
	}

	tx, err := h.repo.GetTransactionByOrderID(r.Context(), orderID)
	if err != nil {
		h.repo.InsertErrorLog(r.Context(), "Transaction Details Error",
			fmt.Sprintf("Transaction with order_id %s not found.", orderID))
		http.Redirect(w, r, h.cfg.AppBaseURL, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	outcomeTmpl.Execute(w, struct {
		Title string
		Tx    TxItem
	}{Title: title, Tx: toTxItem(*tx)})
}

// GET /success?order_id=...
func (h *Handler) SuccessPage(w http.ResponseWriter, r *http.Request) {
	h.renderOutcome(w, r, "Payment Successful")
}

// GET /error?order_id=...
func (h *Handler) ErrorPage(w http.ResponseWriter, r *http.Request) {
	// Rejected callbacks land here with only a generic message and no
	// order_id; show a bare page rather than redirecting the customer
	// around in circles.
	if r.URL.Query().Get("order_id") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<!doctype html><html><body><h1>Payment Error</h1><p>Unable to process payment response.</p></body></html>")
		return
	}
	h.renderOutcome(w, r, "Payment Failed")
}

// GET /api/v1/csrf
func (h *Handler) IssueCSRF(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": h.csrf.Issue()})
}

// GET /api/v1/transactions?orderId=&status=&limit=&offset=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TxFilter{OrderID: q.Get("orderId")}
	if st := q.Get("status"); st != "" {
		filter.Status = domain.TxStatus(st)
	}

	limit := 50
	offset := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	items, err := h.repo.ListTransactions(r.Context(), filter, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list transactions"})
		return
	}

	out := make([]TxItem, 0, len(items))
	for _, t := range items {
		out = append(out, toTxItem(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/v1/transactions/{orderID}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	t, err := h.repo.GetTransactionByOrderID(r.Context(), orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
		return
	}

	writeJSON(w, http.StatusOK, toTxItem(*t))
}

func toTxItem(t domain.Transaction) TxItem {
	return TxItem{
		OrderID:          t.OrderID,
		PaymentID:        t.PaymentID,
		Amount:           t.Amount,
		Currency:         t.Currency,
		OriginalAmount:   t.OriginalAmount,
		OriginalCurrency: t.OriginalCurrency,
		BankRefNo:        t.BankRefNo,
		Status:           string(t.Status),
		PaymentMethod:    t.PaymentMethod,
		ErrorMessage:     t.ErrorMessage,
		TransactionTime:  t.TransactionTime,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
