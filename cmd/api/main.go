package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/medistore/cart-api/internal/cartstore"
	"github.com/medistore/cart-api/internal/catalog"
	"github.com/medistore/cart-api/internal/checkout"
	"github.com/medistore/cart-api/internal/config"
	"github.com/medistore/cart-api/internal/httpx"
	kafkax "github.com/medistore/cart-api/internal/kafka"
	"github.com/medistore/cart-api/internal/orderapi"
	"github.com/medistore/cart-api/internal/postgres"
	"github.com/medistore/cart-api/internal/session"
	"github.com/medistore/cart-api/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable cart slot backend
	var store cartstore.Store
	switch cfg.CartBackend {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresPool, cfg.ServiceName)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		store = &cartstore.PostgresStore{DB: db}
	default:
		rdb := cartstore.NewRedisClient(cfg.RedisAddr)
		defer rdb.Close()
		store = &cartstore.RedisStore{RDB: rdb}
	}

	// Upstream collaborators
	catalogClient := catalog.NewClient(cfg.APIBaseURL, logger)
	orderClient := orderapi.NewClient(cfg.APIBaseURL, logger)
	sessionClient := session.NewClient(cfg.APIBaseURL, logger)

	// Checkout event stream
	prod := kafkax.NewProducer(cfg.KafkaBrokers, checkout.TopicCheckoutCompleted, 1024)
	prod.Start(ctx)

	reconciler := stock.NewReconciler(catalogClient, logger, cfg.StockTimeout)
	resolver := checkout.NewResolver(store, catalogClient)
	checkoutSvc := &checkout.Service{
		Store:    store,
		Resolver: resolver,
		Orders:   orderClient,
		Events:   prod,
		Producer: cfg.ServiceName,
		Log:      logger,
	}

	auth := &httpx.Authenticator{Sessions: sessionClient, Log: logger}
	cartHandler := &httpx.CartHandler{Store: store, Stock: reconciler, Log: logger}
	checkoutHandler := &httpx.CheckoutHandler{
		Resolver: resolver,
		Service:  checkoutSvc,
		Stock:    reconciler,
		Log:      logger,
	}

	router := httpx.NewRouter(cfg.ServiceName)
	router.Group(func(r chi.Router) {
		r.Use(auth.Identity, httpx.RequireAccess)
		cartHandler.Register(r)
		checkoutHandler.Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // close inbox so the loop flushes and exits
	cancel()
	prod.WaitClosed()
}
