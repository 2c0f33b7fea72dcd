package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/catalog"
	"github.com/ariefcatur/go-food-orders/internal/checkout"
	"github.com/ariefcatur/go-food-orders/internal/config"
	"github.com/ariefcatur/go-food-orders/internal/events"
	"github.com/ariefcatur/go-food-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-food-orders/internal/kafka"
	"github.com/ariefcatur/go-food-orders/internal/notify"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/payment"
	"github.com/ariefcatur/go-food-orders/internal/postgres"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/ariefcatur/go-food-orders/internal/voucher"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for the order event stream
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	prod.Start(ctx)

	// Repos & services
	catalogRepo := &catalog.Repo{DB: db}
	directory := &catalog.CachedDirectory{Repo: catalogRepo, Redis: rdb}
	cartStore := &cart.Store{Items: &cart.PG{DB: db}, Catalog: catalogRepo}
	orderRepo := &orders.Repo{DB: db}

	registry := notify.NewRegistry(directory, orderRepo)
	emitter := &events.Emitter{Registry: registry, Producer: prod, Service: cfg.ServiceName}

	orderSvc := &orders.Service{Repo: orderRepo, Directory: directory, Events: emitter}
	checkoutSvc := &checkout.Service{
		Carts:                 cartStore,
		Catalog:               catalogRepo,
		Vouchers:              &voucher.Repo{DB: db},
		Orders:                orderRepo,
		Gateway:               payment.NewClient(cfg.PaymentGatewayURL, cfg.PaymentWebhookSecret),
		Events:                emitter,
		ShippingFee:           cfg.ShippingFee,
		FastDeliverySurcharge: cfg.FastDeliverySurcharge,
	}

	// HTTP
	router := httpx.NewRouter()
	(&httpx.CartHandler{Store: cartStore}).Register(router)
	(&httpx.CheckoutHandler{Service: checkoutSvc}).Register(router)
	(&httpx.OrdersHandler{Service: orderSvc, Directory: directory, Status: &redisx.StatusStore{Client: rdb}}).Register(router)
	(&httpx.WebhookHandler{Service: orderSvc, Secret: cfg.PaymentWebhookSecret}).Register(router)
	(&httpx.WSHandler{Registry: registry}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	registry.Shutdown() // close staff connections
	prod.Close()        // stop intake, flush remaining events
	cancel()
	prod.WaitClosed()
}
