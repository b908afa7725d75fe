// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitco-billing/internal/config"
	stripeAdapter "fitco-billing/internal/infra/adapters/payment/stripe"
	"fitco-billing/internal/infra/api"
	apiv1 "fitco-billing/internal/infra/api/apiv1"
	pg "fitco-billing/internal/infra/db/postgres"
	"fitco-billing/internal/infra/logging"
	"fitco-billing/internal/infra/metrics"
	red "fitco-billing/internal/infra/redis"
	"fitco-billing/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted ids)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go metrics.WatchPool(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txnRepo := pg.NewTransactionRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	pricingRepo := pg.NewPricingRepoCacheDecorator(pg.NewPricingRepo(pool), redisClient, cfg.Redis.TTL, logger)
	usage := red.NewUsageCounter(redisClient)

	// ---- Payment processor ----
	processor := stripeAdapter.NewProcessor(&cfg.Stripe, logger)

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(pricingRepo, usecase.PricingDefaults{
		MonthlyPriceCents: cfg.Pricing.MonthlyPriceCents,
		YearlyPriceCents:  cfg.Pricing.YearlyPriceCents,
		Currency:          cfg.Pricing.Currency,
	}, logger)
	if err := pricingUC.EnsureDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("pricing defaults")
	}
	couponUC := usecase.NewCouponUseCase(couponRepo, logger)
	quoteUC := usecase.NewQuoteUseCase(pricingUC, couponUC)
	checkoutUC := usecase.NewCheckoutUseCase(userRepo, quoteUC, processor, usecase.CheckoutURLs{
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
	}, logger)
	ledgerUC := usecase.NewLedgerUseCase(subRepo, txnRepo, userRepo, pricingUC, tm, logger)
	webhookUC := usecase.NewWebhookUseCase(processor, subRepo, txnRepo, userRepo, ledgerUC, pricingUC, tm, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, subRepo, txnRepo, logger)
	chatUC := usecase.NewChatGateUseCase(ledgerUC, usage, cfg.Chat.FreeDailyLimit, logger)

	// ---- HTTP ----
	r := chi.NewRouter()
	r.Use(
		api.Recover(logger),
		api.TraceID(),
		api.RequestLog(logger),
		api.Timeout(cfg.HTTP.RequestTimeout),
	)
	r.Get("/healthz", apiv1.Health)
	r.Handle("/metrics", promhttp.Handler())
	apiv1.RegisterAPIV1(r, apiv1.NewServer(apiv1.Deps{
		Pricing:  pricingUC,
		Coupons:  couponUC,
		Quotes:   quoteUC,
		Checkout: checkoutUC,
		Webhooks: webhookUC,
		Ledger:   ledgerUC,
		Stats:    statsUC,
		Chat:     chatUC,
		Auth:     apiv1.NewAuthManager(cfg.Auth.JWTSecret, 0),
	}, logger))

	logger.Info().
		Bool("stripe_configured", processor.Configured()).
		Str("currency", cfg.Pricing.Currency).
		Int("chat_free_daily_limit", cfg.Chat.FreeDailyLimit).
		Msg("billing service starting")

	if err := api.NewServer(cfg.HTTP, r, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}
