package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"paylands-gateway/internal/auth"
	"paylands-gateway/internal/checkout"
	"paylands-gateway/internal/config"
	"paylands-gateway/internal/db"
	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/metrics"
	"paylands-gateway/internal/middleware"
	"paylands-gateway/internal/paylands"
	"paylands-gateway/internal/payment"
	"paylands-gateway/internal/payment/webhook"
	"paylands-gateway/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(addr string, handler http.Handler) error {
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return srv.ListenAndServe()
	}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, err := newServer(ctx, cfg, database)
	if err != nil {
		return err
	}

	logger.L().Info("Paylands gateway listening",
		zap.String("port", cfg.AppPort),
		zap.String("endpoint", cfg.Paylands().Endpoint()),
	)
	return startServerFunc(":"+cfg.AppPort, router)
}

type routes struct {
	checkout http.Handler
	notify   http.HandlerFunc
	ret      http.HandlerFunc
	cancel   http.HandlerFunc
	stats    *metrics.CallbackStats
}

// newServer wires the Postgres store, the Paylands client and the callback
// handlers behind the logging and rate limiting middleware.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) (http.Handler, error) {
	// Credentials stay lazy and surface on the first payment attempt.
	gatewayCfg := cfg.Paylands()
	if err := gatewayCfg.ValidateMode(); err != nil {
		return nil, err
	}

	states, err := auth.NewStateTokens(cfg.StateSecret, auth.DefaultStateTTL)
	if err != nil {
		return nil, err
	}

	store := payment.NewRepository(database)
	client := paylands.NewClient(gatewayCfg, nil)
	stats := &metrics.CallbackStats{}

	initiator := checkout.NewInitiator(client, store, checkout.NewPublicURLs(cfg.PublicBaseURL, states), stats)
	reconciler := checkout.NewReconciler(store, client, stats)
	callbacks := webhook.NewWebhookHandler(reconciler, states, store)

	limiter := middleware.NewRateLimiter()
	go limiter.RunCleanup(ctx, time.Minute)

	return setupRouter(routes{
		checkout: webhook.NewCheckoutHandler(initiator, store),
		notify:   callbacks.NotifyHandler,
		ret:      callbacks.ReturnHandler,
		cancel:   callbacks.CancelHandler,
		stats:    stats,
	}, limiter.Middleware), nil
}

func setupRouter(rt routes, middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middlewares...)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, rt.stats.Snapshot())
	})

	r.Method(http.MethodPost, checkout.CheckoutPath, rt.checkout)
	r.Post(checkout.NotifyPath, rt.notify)

	// Paylands sends the buyer back with a redirect, some setups with a form post.
	r.Get(checkout.ReturnPath, rt.ret)
	r.Post(checkout.ReturnPath, rt.ret)
	r.Get(checkout.CancelPath, rt.cancel)
	r.Post(checkout.CancelPath, rt.cancel)

	return r
}
