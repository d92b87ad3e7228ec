package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is loaded once at startup and treated as read-only afterwards;
// services receive it (or the fields they need) at construction.
type Config struct {
	AppPort    string
	AppEnv     string
	AppBaseURL string

	// Gateway merchant credentials.
	WorkingKey string
	AccessCode string
	MerchantID string

	GatewayProdURL string
	GatewayTestURL string

	CurrencyRatesPath string
	SQLiteDSN         string
	CORSAllowedOrigin string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	return Config{
		AppPort:           getenv("APP_PORT", "8080"),
		AppEnv:            getenv("APP_ENV", "development"),
		AppBaseURL:        getenv("APP_BASE_URL", "http://localhost:8080"),
		WorkingKey:        getenv("CCAV_WORKING_KEY", ""),
		AccessCode:        getenv("CCAV_ACCESS_CODE", ""),
		MerchantID:        getenv("CCAV_MERCHANT_ID", ""),
		GatewayProdURL:    getenv("CCAV_PRODUCTION_URL", "https://secure.ccavenue.com"),
		GatewayTestURL:    getenv("CCAV_TEST_URL", "https://test.ccavenue.com"),
		CurrencyRatesPath: getenv("CURRENCY_RATES_PATH", "./currency.json"),
		SQLiteDSN:         getenv("SQLITE_DSN", "./app.db"),
		CORSAllowedOrigin: getenv("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),
	}
}

// GatewayURL returns the gateway base for the configured environment.
func (c Config) GatewayURL() string {
	if c.AppEnv == "production" {
		return c.GatewayProdURL
	}
	return c.GatewayTestURL
}

// TransactionURL is the hosted-page endpoint the browser posts the
// encrypted order to.
func (c Config) TransactionURL() string {
	return c.GatewayURL() + "/transaction/transaction.do?command=initiateTransaction"
}

// RedirectURL is where the gateway posts its encrypted callback.
func (c Config) RedirectURL() string {
	return c.AppBaseURL + "/ccav-response-handler"
}

// CancelURL matches RedirectURL; the gateway reports cancellations to
// the same handler with an ABORTED status.
func (c Config) CancelURL() string {
	return c.RedirectURL()
}
