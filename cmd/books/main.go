package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/app"
	"github.com/odyssey-erp/odyssey-books/internal/bills"
	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/ledger"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/statements"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	var locker numbering.Locker = numbering.NopLocker{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		locker = numbering.NewRedisLocker(redisClient, cfg.NumberLockTTL)
	} else {
		logger.Info("REDIS_ADDR unset, numbering relies on unique constraints")
	}

	metrics := observability.NewMetrics()

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)

	orderRepo := orders.NewRepository(dbpool)
	orderService := orders.NewService(orderRepo, catalogRepo, locker, metrics, logger)

	billRepo := bills.NewRepository(dbpool)
	billService := bills.NewService(billRepo, orderRepo, catalogRepo, catalog.NewNameResolver(catalogRepo), bills.Options{
		DueDays: cfg.BillDefaultDueDays,
		Locker:  locker,
		Metrics: metrics,
		Logger:  logger,
	})

	paymentRepo := payments.NewRepository(dbpool)
	paymentService := payments.NewService(paymentRepo, catalogRepo, locker, metrics, logger)

	ledgerService := ledger.NewService(ledger.NewRepository(dbpool))
	statementService := statements.NewService(statements.NewRepository(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Metrics:              metrics,
		DB:                   dbpool,
		CatalogHandler:       catalog.NewHandler(logger, catalogService),
		PurchaseOrderHandler: orders.NewHandler(logger, orderService, orders.KindPurchase),
		SalesOrderHandler:    orders.NewHandler(logger, orderService, orders.KindSales),
		VendorBillHandler:    bills.NewHandler(logger, billService, bills.DirectionVendor),
		SalesBillHandler:     bills.NewHandler(logger, billService, bills.DirectionSales),
		VendorPaymentHandler: payments.NewHandler(logger, paymentService, bills.DirectionVendor),
		SalesPaymentHandler:  payments.NewHandler(logger, paymentService, bills.DirectionSales),
		LedgerHandler:        ledger.NewHandler(logger, ledgerService),
		StatementsHandler:    statements.NewHandler(logger, statementService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
