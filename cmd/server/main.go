package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dukerupert/shippor/internal"
	"github.com/dukerupert/shippor/internal/address"
	"github.com/dukerupert/shippor/internal/cart"
	"github.com/dukerupert/shippor/internal/country"
	"github.com/dukerupert/shippor/internal/events"
	"github.com/dukerupert/shippor/internal/handler/api"
	"github.com/dukerupert/shippor/internal/middleware"
	"github.com/dukerupert/shippor/internal/router"
	"github.com/dukerupert/shippor/internal/routes"
	"github.com/dukerupert/shippor/internal/service"
	"github.com/dukerupert/shippor/internal/shipping"
	"github.com/dukerupert/shippor/internal/telemetry"
	"github.com/dukerupert/shippor/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Load country rules
	meta := country.Default()
	if cfg.CountryTablePath != "" {
		logger.Info("Loading country table...", "path", cfg.CountryTablePath)
		meta, err = country.LoadFile(cfg.CountryTablePath)
		if err != nil {
			return fmt.Errorf("failed to load country table: %w", err)
		}
	}
	logger.Info("Country table loaded", "eu_members", len(meta.EUCountries()))

	// Initialize event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NATS.URL)
		nats, err := events.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = nats
		logger.Info("NATS publisher initialized", "prefix", cfg.NATS.SubjectPrefix)
	}
	defer publisher.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ruleMetrics := telemetry.NewRuleMetrics(cfg.MetricsNamespace, registry)
	httpMetrics := middleware.NewMetrics(cfg.MetricsNamespace, registry)

	// Initialize services
	aggregator := cart.NewAggregator(cfg.ServiceFeeRate)
	shipmentService, err := service.NewShipmentService(service.Deps{
		Meta:             meta,
		Provider:         shipping.NewCatalogProvider(shipping.DemoCatalog()),
		Addresses:        address.NewBook(shipping.DemoAddresses()...),
		AddressValidator: address.NewBasicValidator(meta),
		Publisher:        publisher,
		Metrics:          ruleMetrics,
		Aggregator:       aggregator,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shipment service: %w", err)
	}
	logger.Info("Shipment service initialized", "fee_rate", cfg.ServiceFeeRate)

	// Start session sweeper
	sweeper := worker.NewWorker(shipmentService, worker.Config{
		PollInterval: cfg.Sessions.SweepInterval,
		IdleTTL:      cfg.Sessions.IdleTTL,
	}, logger)
	go sweeper.Start(ctx)

	// Middleware
	checkoutLimiter := middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig(cfg.HTTP.CheckoutRPS, cfg.HTTP.CheckoutBurst))
	defer checkoutLimiter.Stop()

	securityConfig := middleware.APISecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0 // Disable HSTS in development
	}

	// Recovery sits inside Timeout, which runs the handler on its own goroutine
	r := router.New(
		middleware.RequestID,
		httpMetrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		router.CORS(cfg.CORS.AllowedOrigins),
		middleware.MaxBodySize(cfg.HTTP.MaxBodyBytes),
		middleware.Timeout(time.Duration(cfg.HTTP.RequestTimeoutMS)*time.Millisecond),
		router.Recovery(logger),
		router.Logger(logger),
		middleware.WithRequestLogger(logger),
	)

	routes.RegisterAPIRoutes(r, routes.APIDeps{
		RulesHandler:   api.NewRulesHandler(meta, aggregator, ruleMetrics, logger),
		SessionHandler: api.NewSessionHandler(shipmentService),
		AccountHandler: api.NewAccountHandler(shipmentService),
		MetricsHandler: httpMetrics.Handler(),
		CheckoutLimit:  checkoutLimiter.Middleware,
	})
	logger.Debug("Routes registered", "count", len(r.Routes()), "routes", r.Routes())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
