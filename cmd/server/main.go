package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantumphp123/CCAvenuePHP/internal/codec"
	"github.com/quantumphp123/CCAvenuePHP/internal/config"
	"github.com/quantumphp123/CCAvenuePHP/internal/currency"
	httpd "github.com/quantumphp123/CCAvenuePHP/internal/delivery/http"
	"github.com/quantumphp123/CCAvenuePHP/internal/repository"
	"github.com/quantumphp123/CCAvenuePHP/internal/session"
	"github.com/quantumphp123/CCAvenuePHP/internal/usecase"
)

func main() {
	cfg := config.Load()

	if cfg.WorkingKey == "" || cfg.AccessCode == "" || cfg.MerchantID == "" {
		log.Fatal("CCAV_WORKING_KEY, CCAV_ACCESS_CODE and CCAV_MERCHANT_ID must be set")
	}

	repo, err := repository.NewSQLiteRepo(cfg.SQLiteDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer repo.Close()

	converter, err := currency.Load(cfg.CurrencyRatesPath)
	if err != nil {
		log.Fatalf("load currency rates: %v", err)
	}

	c := codec.New(cfg.WorkingKey)
	h := httpd.NewHandler(
		usecase.NewOrderService(repo, c, cfg),
		usecase.NewResponseHandler(repo, c),
		repo,
		converter,
		session.NewCSRFStore(),
		cfg,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: h.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server listening on %s (gateway: %s)", srv.Addr, cfg.GatewayURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
