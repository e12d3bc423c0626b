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

	"github.com/Keiter0309/EcomGrove/internal/auth"
	"github.com/Keiter0309/EcomGrove/internal/cart"
	"github.com/Keiter0309/EcomGrove/internal/config"
	"github.com/Keiter0309/EcomGrove/internal/httpx"
	kafkax "github.com/Keiter0309/EcomGrove/internal/kafka"
	"github.com/Keiter0309/EcomGrove/internal/logging"
	"github.com/Keiter0309/EcomGrove/internal/metrics"
	"github.com/Keiter0309/EcomGrove/internal/orders"
	"github.com/Keiter0309/EcomGrove/internal/postgres"
	"github.com/Keiter0309/EcomGrove/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.DBMaxConns))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.InitSchema(ctx, db); err != nil {
		log.Fatal("init schema", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024, log)
	pCancelled.Start(ctx)

	// Services
	m := metrics.New("ecomgrove")
	store := postgres.NewStore(db, log, cfg.TxMaxRetries, m.TxConflicts)
	cartSvc := cart.NewService(store, log)
	orderSvc := orders.NewService(store, log)
	tokens := auth.NewRedisTokenStore(rdb, cfg.SessionTTL)

	// Router
	router := httpx.NewRouter(m)
	router.Route("/api", func(r chi.Router) {
		r.Use(httpx.Auth(tokens))
		ch := &httpx.CartHandler{Svc: cartSvc, Log: log}
		ch.Register(r)
		oh := &httpx.OrdersHandler{
			Svc:       orderSvc,
			Created:   pCreated,
			Cancelled: pCancelled,
			Redis:     rdb,
			Service:   cfg.ServiceName,
			Log:       log,
		}
		oh.Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close()
	pCancelled.Close()
	cancel()
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
}
