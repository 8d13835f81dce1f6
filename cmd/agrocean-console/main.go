// Command agrocean-console serves the AGROCEAN operator console: it owns the
// backend session, guards console pages by role and proxies the REST API.
//
// @title           AGROCEAN Console
// @version         1.0
// @description     Session gateway and role-aware proxy in front of the AGROCEAN management API.
// @BasePath        /
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

	"github.com/rs/zerolog"

	_ "github.com/agrocean/console/docs"
	"github.com/agrocean/console/internal/api"
	"github.com/agrocean/console/internal/api/handler"
	"github.com/agrocean/console/internal/api/metrics"
	"github.com/agrocean/console/internal/core/domain"
	"github.com/agrocean/console/internal/core/ports"
	"github.com/agrocean/console/internal/core/service"
	"github.com/agrocean/console/internal/infrastructure/backend"
	mongostore "github.com/agrocean/console/internal/infrastructure/db/mongo"
	redisstore "github.com/agrocean/console/internal/infrastructure/db/redis"
	"github.com/agrocean/console/internal/infrastructure/storage"
	"github.com/agrocean/console/internal/pkg/config"
	"github.com/agrocean/console/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "agrocean-console",
	})

	kv, readiness, closeStore, err := openStore(ctx, cfg, logger.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open session storage")
	}
	defer closeStore()

	store, err := openSessionStore(ctx, cfg, kv, logger.Component("session"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load session")
	}

	client, err := backend.New(cfg.Backend.URL, store, logger.Component("backend"),
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithObserver(metrics.ObserveBackend),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backend configuration")
	}
	catalog := backend.NewCatalog(client)
	refs := backend.NewReferenceCache(catalog, cfg.Session.ReferenceCacheTTL, logger.Component("reference"))

	hub := handler.NewHub(logger.Component("stream"))
	gateway := service.NewAuthGateway(backend.NewAuthAPI(client), store, hub, logger.Component("auth"))
	client.SetUnauthorizedHandler(func(token string) bool {
		ended := gateway.ForceLogout(token)
		if ended {
			metrics.ForcedLogoutsTotal.Inc()
		}
		return ended
	})
	auth := &meteredGateway{AuthGateway: gateway}

	guard := service.NewRouteGuard(store, logger.Component("guard"))
	menu, err := service.NewMenuBuilder(domain.MenuSections)
	if err != nil {
		log.Fatal().Err(err).Msg("menu declaration does not match the route table")
	}
	dashboard := service.NewDashboardService(catalog, logger.Component("dashboard"))
	poller := service.NewAlertPoller(catalog, store, hub, cfg.Session.AlertPollInterval, logger.Component("alerts"))
	refresher := service.NewTokenRefresher(store, auth, cfg.Session.RefreshWindow, logger.Component("refresh"))

	go hub.Watch(ctx, store)
	go refs.Watch(ctx, store)
	go poller.Run(ctx)
	go refresher.Run(ctx)

	readiness["backend"] = client.Ping

	e := api.NewRouter(api.Deps{
		Log:        logger.Component("http"),
		StaticDir:  cfg.StaticDir,
		Identities: store,
		Guard:      guard,
		Auth:       handler.NewAuthHandler(auth, guard),
		Session:    handler.NewSessionHandler(store, guard, menu, dashboard),
		Hub:        hub,
		Proxy:      handler.NewProxyHandler("/api", client.BaseURL(), client.Transport()),
		UI:         handler.NewUIHandler(catalog.Demandes, catalog, catalog.Produits, refs),
		Pages:      handler.NewPageHandler(cfg.StaticDir, store),
		Readiness:  handler.NewReadinessHandler(readiness),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("console listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()
	hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// openStore selects the durable key-value store behind the session and
// returns its readiness check.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.KeyValueStore, map[string]handler.Checker, func(), error) {
	checks := map[string]handler.Checker{}
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn().Msg("memory storage: the session does not survive a restart")
		return storage.NewMemoryStore(), checks, noop, nil

	case config.StorageFile:
		fs, err := storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			return nil, nil, noop, err
		}
		return fs, checks, noop, nil

	case config.StorageRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		return redisstore.NewKVStore(rdb, redisstore.KeyPrefix), checks, func() { _ = rdb.Close() }, nil

	case config.StorageMongo:
		mc, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, noop, err
		}
		checks["mongodb"] = func(ctx context.Context) error { return mc.Ping(ctx, nil) }
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mc.Disconnect(ctx)
		}
		return mongostore.NewSessionRepository(db, cfg.Storage.Namespace), checks, closeFn, nil
	}
	return nil, nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// openSessionStore hydrates the session. With STORAGE_SECRET set the token
// key is sealed at rest.
func openSessionStore(ctx context.Context, cfg *config.Config, kv ports.KeyValueStore, log zerolog.Logger) (*service.SessionStore, error) {
	key, err := cfg.SealingKey()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return service.NewSessionStore(ctx, kv, cfg.Storage.Namespace, log)
	}

	_, tokenKey := service.SessionKeys(cfg.Storage.Namespace)
	sealed, err := storage.NewSealedStore(kv, key, tokenKey)
	if err != nil {
		return nil, err
	}
	return service.NewSessionStore(ctx, sealed, cfg.Storage.Namespace, log)
}

// meteredGateway counts token refreshes, whether the UI or the background
// refresher asked for them.
type meteredGateway struct {
	*service.AuthGateway
}

func (g *meteredGateway) Refresh(ctx context.Context) (*domain.Session, error) {
	sess, err := g.AuthGateway.Refresh(ctx)
	switch {
	case err == nil:
		metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	case errors.Is(err, domain.ErrSessionExpired):
		metrics.TokenRefreshesTotal.WithLabelValues("expired").Inc()
	case errors.Is(err, domain.ErrSessionChanged):
		metrics.TokenRefreshesTotal.WithLabelValues("stale").Inc()
	default:
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
	}
	return sess, err
}
