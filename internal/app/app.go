package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/yuki/checkout-server/data"
	"github.com/yuki/checkout-server/internal/api"
	"github.com/yuki/checkout-server/internal/catalog"
	"github.com/yuki/checkout-server/internal/domain/basket"
	"github.com/yuki/checkout-server/internal/domain/order"
	"github.com/yuki/checkout-server/internal/domain/payment"
	"github.com/yuki/checkout-server/internal/domain/pricing"
	"github.com/yuki/checkout-server/internal/storage/memory"
	"github.com/yuki/checkout-server/pkg/health"
	"github.com/yuki/checkout-server/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// In-memory stores.
	productStore := memory.NewProductStore()
	promotionStore := memory.NewPromotionStore()
	basketStore := memory.NewBasketStore()
	orderStore := memory.NewOrderStore()

	// Seed the catalogs before accepting traffic.
	loader := catalog.NewLoader(productStore, promotionStore)
	if len(cfg.DataFiles) > 0 {
		if err := loader.LoadFiles(ctx, cfg.DataFiles...); err != nil {
			return errors.Wrap(err, "load catalog files")
		}
	} else {
		stats, err := loader.LoadBytes(ctx, data.Seed)
		if err != nil {
			return errors.Wrap(err, "load embedded catalog")
		}
		lg.Info("Embedded catalog loaded",
			zap.Int("products", stats.Products),
			zap.Int("promotions", stats.Promotions),
		)
	}

	// Domain services.
	pricer := pricing.NewEngine(productStore, promotionStore)
	cards := payment.NewValidator()
	basketService := basket.NewService(basketStore, productStore, promotionStore, pricer)
	orderService := order.NewService(orderStore, basketStore, pricer, cards)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("catalog", time.Second, func(ctx context.Context) error {
		products, err := productStore.FindAll(ctx)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return errors.New("product catalog is empty")
		}
		return nil
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP handlers.
	handler, err := api.NewHandler(
		basketService,
		orderService,
		productStore,
		m.MeterProvider().Meter("checkout-server"),
	)
	if err != nil {
		return errors.Wrap(err, "create api handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.Routes(mux)

	instrumented := otelhttp.NewHandler(mux, "checkout-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
