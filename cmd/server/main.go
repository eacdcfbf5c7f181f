package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"household-ledger/internal/auth"
	"household-ledger/internal/config"
	"household-ledger/internal/handlers"
	"household-ledger/internal/ledger"
	"household-ledger/internal/logging"
	"household-ledger/internal/policy"
	"household-ledger/internal/storage"

	"github.com/0xcafe-io/iz"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Production: cfg.Production(),
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLog()

	logger.WithField("env", cfg.AppEnv).Info("application starting")

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	creds, err := auth.NewCredentialStore(db, cfg.Argon2, logger.WithField("component", "credentials"))
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	sessions := auth.NewManager(db, logger.WithField("component", "sessions"))
	ledgerService := ledger.NewService(db, ledger.NewReceiptStore(cfg.ReceiptsDir), logger.WithField("component", "ledger"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedAdmin(ctx, creds, cfg, logger); err != nil {
		return err
	}
	if n, err := sessions.PurgeExpired(ctx); err != nil {
		logger.WithError(err).Warn("failed to purge expired sessions")
	} else if n > 0 {
		logger.WithField("count", n).Info("purged expired sessions")
	}

	h := handlers.NewHandlers(creds, sessions, ledgerService, logger, cfg.SecureCookie)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           withCORS(setupRouter(h, cfg.StaticDir), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedAdmin creates the bootstrap admin from ADMIN_USER and ADMIN_PASSWORD.
func seedAdmin(ctx context.Context, creds *auth.CredentialStore, cfg *config.Config, logger logrus.FieldLogger) error {
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	created, err := creds.SeedAdmin(ctx, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin %s: %w", cfg.AdminUser, err)
	}
	if created {
		logger.WithField("username", cfg.AdminUser).Info("admin user created")
	}
	return nil
}

func setupRouter(h *handlers.Handlers, staticDir string) http.Handler {
	mux := http.NewServeMux()

	guard := func(op policy.Operation, fn func(*iz.Request) iz.Responder) http.Handler {
		return h.Require(op, iz.Bind(fn))
	}

	// Authentication
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/register", iz.Bind(h.Register))
	mux.HandleFunc("GET /api/auth/me", iz.Bind(h.Me))

	// Expenses and items
	mux.Handle("GET /api/expenses", guard(policy.ReadExpenses, h.ListExpenses))
	mux.Handle("POST /api/expenses", guard(policy.WriteExpenses, h.CreateExpense))
	mux.Handle("DELETE /api/expenses/{id}", guard(policy.WriteExpenses, h.DeleteExpense))
	mux.Handle("POST /api/expense-items", guard(policy.WriteExpenses, h.CreateItem))
	mux.Handle("DELETE /api/expense-items/{id}", guard(policy.WriteExpenses, h.DeleteItem))
	mux.Handle("GET /api/receipts/{name}", h.Require(policy.ReadReceipts, http.HandlerFunc(h.Receipt)))

	// Balances and summary
	mux.Handle("GET /api/balances", guard(policy.ReadBalances, h.Balances))
	mux.Handle("POST /api/balances", guard(policy.SetBalance, h.SetBalance))
	mux.Handle("GET /api/summary", guard(policy.ReadSummary, h.Summary))

	// Savings
	mux.Handle("GET /api/savings", guard(policy.ReadSavings, h.ListSavings))
	mux.Handle("POST /api/savings", guard(policy.WriteSavings, h.CreateSavings))
	mux.Handle("POST /api/savings/{id}/contribute", guard(policy.WriteSavings, h.Contribute))
	mux.Handle("DELETE /api/savings/{id}", guard(policy.WriteSavings, h.DeleteSavings))

	// Admin
	mux.Handle("POST /api/admin/users", guard(policy.ManageUsers, h.CreateUser))
	mux.Handle("GET /api/admin/users", guard(policy.ManageUsers, h.ListUsers))
	mux.Handle("POST /api/admin/users/list", guard(policy.ManageUsers, h.ListUsers))

	if staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(staticDir)))
	}

	return h.RequestLogger(h.Authenticate(mux))
}

func withCORS(next http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", handlers.TraceHeader},
		ExposedHeaders:   []string{handlers.TraceHeader},
		AllowCredentials: true,
	}).Handler(next)
}
