package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/stock-admin/internal/admin/catalog"
	"finitefield.org/stock-admin/internal/admin/httpserver"
	"finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
	"finitefield.org/stock-admin/internal/platform/config"
	"finitefield.org/stock-admin/internal/platform/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(observability.LoggerOptions{
		Level: cfg.Log.Level,
		Mode:  cfg.Log.Mode,
		File:  cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("stock-admin")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	controller, err := inventory.NewController(inventory.Options{
		Service:             buildCatalogService(cfg.Catalog, logger),
		Logger:              logger,
		ConfirmationLiteral: cfg.Catalog.ConfirmationLiteral,
		RecordLimit:         cfg.Catalog.RecordLimit,
		Locale:              cfg.UI.Locale,
	})
	if err != nil {
		logger.Fatal("failed to initialise inventory controller", zap.Error(err))
	}

	unsubscribe, err := controller.Subscribe(func(ev inventory.Event) {
		logger.Info("inventory changed",
			zap.String("event_id", ev.ID),
			zap.String("kind", string(ev.Kind)),
			zap.String("key", ev.BusinessKey),
			zap.Int("total", ev.Stats.Total),
			zap.Int("low_stock", ev.Stats.LowCount),
			zap.String("total_value", ev.Stats.TotalValue.StringFixed(2)),
		)
	})
	if err != nil {
		logger.Fatal("failed to subscribe to inventory events", zap.Error(err))
	}
	defer unsubscribe()

	if err := controller.Load(ctx); err != nil {
		logger.Warn("starting with an empty catalog", zap.Error(err))
	}

	scheduler, err := controller.ScheduleRefresh(cfg.Catalog.RefreshSchedule, cfg.Catalog.Timeout)
	if err != nil {
		logger.Fatal("invalid refresh schedule", zap.String("schedule", cfg.Catalog.RefreshSchedule), zap.Error(err))
	}
	if scheduler != nil {
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}

	srv := httpserver.New(httpserver.Config{
		Address:          cfg.Server.Address,
		BasePath:         cfg.Server.BasePath,
		LoginURL:         cfg.Server.LoginURL,
		Environment:      cfg.Server.Environment,
		Authenticator:    buildAuthenticator(ctx, cfg.Firebase, logger),
		Controller:       controller,
		PageTitle:        cfg.UI.PageTitle,
		CurrencySymbol:   cfg.UI.CurrencySymbol,
		Theme:            cfg.UI.Theme,
		Logger:           logger.Named("http"),
		CSRFCookieSecure: cfg.Server.Environment != "Development",
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("stock admin listening",
			zap.String("addr", cfg.Server.Address),
			zap.String("base_path", cfg.Server.BasePath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		stop()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildCatalogService(cfg config.CatalogConfig, logger *zap.Logger) catalog.Service {
	if cfg.Endpoint == "" {
		logger.Warn("STOCK_CATALOG_ENDPOINT not set; using the in-memory demo catalog")
		return catalog.NewStaticService(nil)
	}
	svc, err := catalog.NewHTTPService(cfg.Endpoint, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		logger.Fatal("failed to initialise catalog client", zap.Error(err))
	}
	return svc
}

func buildAuthenticator(ctx context.Context, cfg config.FirebaseConfig, logger *zap.Logger) middleware.Authenticator {
	if cfg.ProjectID == "" {
		logger.Info("STOCK_FIREBASE_PROJECT_ID not set; inventory routes are unauthenticated")
		return nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID})
	if err != nil {
		logger.Fatal("failed to initialise Firebase app", zap.Error(err))
	}
	client, err := app.Auth(ctx)
	if err != nil {
		logger.Fatal("failed to initialise Firebase auth client", zap.Error(err))
	}

	logger.Info("Firebase authenticator enabled", zap.String("project", cfg.ProjectID))
	return middleware.NewFirebaseAuthenticator(client)
}
