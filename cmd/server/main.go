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

	"github.com/bwmarrin/snowflake"
	"github.com/forgo/hearth/api/internal/config"
	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/handler"
	"github.com/forgo/hearth/api/internal/jobs"
	"github.com/forgo/hearth/api/internal/metrics"
	"github.com/forgo/hearth/api/internal/middleware"
	"github.com/forgo/hearth/api/internal/repository"
	"github.com/forgo/hearth/api/internal/service"
	"github.com/forgo/hearth/api/pkg/jwt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("hearth api stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level})))
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()
	slog.Info("database connected",
		slog.String("host", cfg.Database.Host),
		slog.String("namespace", cfg.Database.Namespace),
		slog.String("database", cfg.Database.Database),
	)

	signer, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	node, err := snowflake.NewNode(cfg.Chat.NodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", cfg.Chat.NodeID, err)
	}

	m := metrics.New()
	hub := service.NewEventHub(cfg.Chat.Heartbeat)
	defer hub.Close()

	handlers := wire(cfg, db, signer, node, hub, m)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})
	defer limiter.Stop()

	if cfg.Database.KeepaliveInterval > 0 {
		keepalive := jobs.NewKeepaliveProcessor(db, cfg.Database.KeepaliveInterval)
		keepalive.Start()
		defer keepalive.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	handlers.RegisterRoutes(mux, middleware.Auth(signer))

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logger,
			middleware.Recovery,
			m.Middleware,
			middleware.CORS(cfg.Server.AllowedOrigins),
			middleware.RateLimit(limiter),
			middleware.Compress,
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * time.Minute,
	}
	// SSE streams only end when their subscriptions close
	srv.RegisterOnShutdown(hub.Close)

	return serve(ctx, srv, cfg)
}

// wire builds repositories and services and returns the route handlers.
func wire(cfg *config.Config, db *database.SurrealDB, signer *jwt.Service, node *snowflake.Node, hub *service.EventHub, m *metrics.Metrics) *handler.Handlers {
	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db, cfg.Search.PageSize)
	houses := repository.NewHouseRepository(db, cfg.Search.PageSize)
	relationships := repository.NewRelationshipRepository(db)
	chats := repository.NewChatRepository(db)
	assets := repository.NewAssetRepository(db)

	access := service.NewAccessResolver(service.AccessResolverConfig{
		UserRepo:         users,
		GroupRepo:        groups,
		RelationshipRepo: relationships,
		Observer:         m,
	})

	return &handler.Handlers{
		Health: handler.NewHealthHandler(db),
		Auth: handler.NewAuthHandler(service.NewAuthService(service.AuthServiceConfig{
			UserRepo:  users,
			AssetRepo: assets,
			Signer:    signer,
		})),
		User: handler.NewUserHandler(service.NewUserService(service.UserServiceConfig{
			UserRepo:  users,
			GroupRepo: groups,
			AssetRepo: assets,
			Access:    access,
			Events:    hub,
		})),
		Group: handler.NewGroupHandler(service.NewGroupService(service.GroupServiceConfig{
			GroupRepo: groups,
			UserRepo:  users,
			Access:    access,
			Events:    hub,
		})),
		Relationship: handler.NewRelationshipHandler(service.NewRelationshipService(service.RelationshipServiceConfig{
			RelationshipRepo: relationships,
			UserRepo:         users,
			GroupRepo:        groups,
			Access:           access,
			Events:           hub,
		})),
		House: handler.NewHouseHandler(service.NewHouseService(service.HouseServiceConfig{
			HouseRepo: houses,
			GroupRepo: groups,
			UserRepo:  users,
			Access:    access,
		})),
		Search: handler.NewSearchHandler(service.NewSearchService(service.SearchServiceConfig{
			GroupRepo:    groups,
			HouseRepo:    houses,
			UserRepo:     users,
			Access:       access,
			Observer:     m,
			DefaultLimit: cfg.Search.DefaultLimit,
			MaxLimit:     cfg.Search.MaxLimit,
			DefaultUnit:  service.DistanceUnit(cfg.Search.DefaultUnit),
		})),
		Chat: handler.NewChatHandler(service.NewChatService(service.ChatServiceConfig{
			ChatRepo:         chats,
			RelationshipRepo: relationships,
			UserRepo:         users,
			GroupRepo:        groups,
			AssetRepo:        assets,
			Access:           access,
			Events:           hub,
			Node:             node,
			MaxLength:        cfg.Chat.MaxMessageLength,
		})),
		Asset: handler.NewAssetHandler(service.NewAssetService(service.AssetServiceConfig{
			AssetRepo: assets,
			MaxBytes:  cfg.Assets.MaxBytes,
		})),
	}
}

// serve runs srv until ctx is cancelled, then drains it within the
// configured shutdown timeout.
func serve(ctx context.Context, srv *http.Server, cfg *config.Config) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Server.Env),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutdown requested", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
