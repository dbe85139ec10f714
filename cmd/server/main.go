package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billsplitter/internal/auth"
	"github.com/mmynk/billsplitter/internal/config"
	"github.com/mmynk/billsplitter/internal/events"
	"github.com/mmynk/billsplitter/internal/idempotency"
	"github.com/mmynk/billsplitter/internal/ledger"
	"github.com/mmynk/billsplitter/internal/metrics"
	"github.com/mmynk/billsplitter/internal/middleware"
	"github.com/mmynk/billsplitter/internal/service"
	"github.com/mmynk/billsplitter/internal/storage/sqlite"
	"github.com/mmynk/billsplitter/internal/token"
	"github.com/mmynk/billsplitter/pkg/api/apiconnect"
	"github.com/mmynk/billsplitter/pkg/logging"
)

const purgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Configure(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	bank := token.NewBank(store)
	settlement, err := bank.Ensure(ctx, token.Meta{
		Name:     cfg.TokenName,
		Symbol:   cfg.TokenSymbol,
		Decimals: cfg.TokenDecimals,
	})
	if err != nil {
		slog.Error("Failed to deploy settlement token", "error", err)
		os.Exit(1)
	}
	slog.Info("Settlement token ready", "symbol", cfg.TokenSymbol, "address", settlement.Address())

	collector := metrics.New()
	publishers := events.Fanout{events.NewLogPublisher(logger), collector}
	if cfg.RedisAddr != "" {
		rdb, err := events.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		publishers = append(publishers, events.NewRedisStream(rdb, cfg.RedisStream, cfg.RedisMaxLen, logger))
		slog.Info("Publishing events to Redis", "addr", cfg.RedisAddr, "stream", cfg.RedisStream)
	}

	opts := ledger.Options{
		Owner:       cfg.Owner,
		PlatformFee: cfg.PlatformFee,
		Publisher:   publishers,
		Logger:      logger,
	}
	v1, err := ledger.NewSplitter(ctx, store, settlement, opts)
	if err != nil {
		slog.Error("Failed to open v1 ledger", "error", err)
		os.Exit(1)
	}
	v2, err := ledger.NewSplitterV2(ctx, store, bank, opts)
	if err != nil {
		slog.Error("Failed to open v2 ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledgers ready", "v1", v1.Contract(), "v2", v2.Contract(), "owner", cfg.Owner)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator := auth.NewPasswordAuthenticator(store,
		auth.WithReserved(cfg.Owner),
		auth.WithReservedCheck(service.SystemAddresses(bank, v1, v2)),
	)
	if cfg.OwnerPassword != "" && !cfg.Owner.IsZero() {
		if _, err := authenticator.Provision(ctx, cfg.Owner, "Owner", cfg.OwnerPassword); err != nil {
			slog.Error("Failed to provision owner account", "owner", cfg.Owner, "error", err)
			os.Exit(1)
		}
		slog.Info("Owner account ready", "owner", cfg.Owner)
	}

	public := make([]string, 0, 16)
	public = append(public, apiconnect.SplitterServicePublicProcedures...)
	public = append(public, apiconnect.SplitterV2ServicePublicProcedures...)
	public = append(public, apiconnect.TokenServicePublicProcedures...)
	public = append(public, apiconnect.AuthServicePublicProcedures...)

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(collector),
		middleware.RequireAuth(jwtManager, public...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()

	// Register Connect services
	mux.Handle(apiconnect.NewSplitterServiceHandler(service.NewSplitterService(v1, bank, logger), interceptors))
	mux.Handle(apiconnect.NewSplitterV2ServiceHandler(service.NewSplitterV2Service(v2, bank, logger), interceptors))
	mux.Handle(apiconnect.NewAdminServiceHandler(service.NewAdminService(v1, v2, logger), interceptors))
	mux.Handle(apiconnect.NewTokenServiceHandler(service.NewTokenService(bank, cfg.FaucetAmount, logger), interceptors))
	mux.Handle(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, logger), interceptors))

	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	idem, err := idempotency.Open(cfg.IdempotencyDBPath, cfg.IdempotencyTTL)
	if err != nil {
		slog.Error("Failed to open idempotency store", "error", err)
		os.Exit(1)
	}
	defer idem.Close()
	go purgeIdempotency(ctx, idem)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Close()

	// Outermost first: logging, CORS, rate limit, idempotency replay.
	handler := loggingMiddleware(corsMiddleware(limiter.Handler(idempotency.NewMiddleware(idem).Handler(mux))))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// purgeIdempotency drops expired replay records until ctx is done.
func purgeIdempotency(ctx context.Context, store *idempotency.Store) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge()
			if err != nil {
				slog.Warn("Idempotency purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("Idempotency records purged", "count", n)
			}
		}
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms, "+idempotency.HeaderKey)
		w.Header().Set("Access-Control-Expose-Headers",
			"Connect-Protocol-Version, Connect-Timeout-Ms, "+middleware.LedgerErrorHeader+", "+idempotency.HeaderReplayed)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
