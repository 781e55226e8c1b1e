package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/auction-draft/internal/auth"
	"github.com/Billy-Davies-2/auction-draft/internal/clickhouse"
	"github.com/Billy-Davies-2/auction-draft/internal/config"
	"github.com/Billy-Davies-2/auction-draft/internal/dal"
	"github.com/Billy-Davies-2/auction-draft/internal/draft"
	grpcserver "github.com/Billy-Davies-2/auction-draft/internal/grpc"
	"github.com/Billy-Davies-2/auction-draft/internal/handlers"
	"github.com/Billy-Davies-2/auction-draft/internal/logger"
	"github.com/Billy-Davies-2/auction-draft/internal/mocks"
	"github.com/Billy-Davies-2/auction-draft/internal/notify"
	"github.com/Billy-Davies-2/auction-draft/internal/pubsub"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP, WebSocket and gRPC draft server",
	RunE:  runServe,
}

func openStore(cfg config.Service) (dal.SnapshotStore, error) {
	switch cfg.SnapshotDriver {
	case "memory":
		logger.Info("Using in-memory snapshot store")
		return dal.NewMemoryStore(), nil
	case "file", "":
		logger.Info("Using file snapshot store", "path", cfg.SnapshotPath)
		return dal.NewFileStore(cfg.SnapshotPath), nil
	case "sqlite":
		logger.Info("Using SQLite snapshot store", "file", cfg.SQLiteFile)
		return dal.NewSQLiteStore(cfg.SQLiteFile)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres snapshot driver")
		}
		logger.Info("Using Postgres snapshot store")
		return dal.NewPostgresStore(cfg.DatabaseURL)
	case "redis":
		logger.Info("Using Redis snapshot store", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
		return dal.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("unknown SNAPSHOT_DRIVER %q (valid: memory, file, sqlite, postgres, redis)", cfg.SnapshotDriver)
	}
}

// broker is the JetStream bridge behind the local hub.
type broker interface {
	pubsub.Upstream
	handlers.Pinger
	Close()
}

// openBroker starts embedded NATS in development and connects to the real
// cluster otherwise.
func openBroker(cfg config.Service) (broker, error) {
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		b, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			return nil, err
		}
		logger.Info("Embedded NATS server ready", "url", b.ServerURL())
		return b, nil
	}
	b, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to NATS", "url", cfg.NATSURL)
	return b, nil
}

func openAuth(cfg config.Service) (auth.Provider, error) {
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development")
		return auth.NewMockAuth(), nil
	}
	if cfg.AuthentikBaseURL == "" || cfg.AuthentikClientID == "" || cfg.AuthentikClientSecret == "" {
		return nil, errors.New("AUTHENTIK_BASE_URL, AUTHENTIK_CLIENT_ID and AUTHENTIK_CLIENT_SECRET are required outside development")
	}
	logger.Info("Using Authentik authentication", "url", cfg.AuthentikBaseURL)
	return auth.NewAuthentikAuth(&auth.AuthentikConfig{
		BaseURL:      cfg.AuthentikBaseURL,
		ClientID:     cfg.AuthentikClientID,
		ClientSecret: cfg.AuthentikClientSecret,
		RedirectURL:  cfg.AuthentikRedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
	}), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.LoadService()
	league, err := config.LoadLeague(leagueFile)
	if err != nil {
		return err
	}
	if len(cfg.TeamNames) > 0 {
		league.TeamNames = cfg.TeamNames
		if err := league.Validate(); err != nil {
			return err
		}
	}
	logger.Info("Starting auction draft service",
		"version", version, "environment", cfg.Environment,
		"teams", league.NumTeams, "budget", league.BudgetPerTeam)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	defer store.Close()

	upstream, err := openBroker(cfg)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer upstream.Close()
	hub := pubsub.NewWithUpstream(upstream)
	defer hub.Close()

	svc := draft.New(league, draft.Options{Store: store, Publisher: hub})

	var source handlers.ProjectionSource
	var chClient *clickhouse.Client
	if cfg.ClickHouseAddr != "" {
		chClient, err = clickhouse.NewClient(cfg.ClickHouseAddr, cfg.ClickHouseDB, cfg.ClickHouseUser, cfg.ClickHousePassword, cfg.ClickHouseSeason)
		if err != nil {
			return err
		}
		defer chClient.Close()
		logger.Info("Connected to ClickHouse", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
		source = chClient
	} else if cfg.IsDevelopment() || cfg.ProjectionsFile != "" {
		source = mocks.NewProjectionSource(cfg.ProjectionsFile)
	}

	if source != nil {
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		players, err := source.LoadProjections(loadCtx)
		cancel()
		if err != nil {
			logger.Error("Initial projection load failed; starting with an empty pool", "error", err)
		} else if n, err := svc.Ingest(players, true); err != nil {
			logger.Error("Initial projection ingest failed", "error", err)
		} else {
			logger.Info("Player pool loaded", "players", n)
		}
	}
	if _, err := svc.Load(ctx); err != nil {
		logger.Info("No saved draft restored", "reason", err)
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		n, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Telegram notifier disabled", "error", err)
		} else {
			go n.Run(ctx, hub)
		}
	}

	provider, err := openAuth(cfg)
	if err != nil {
		return err
	}

	api := handlers.NewAPIHandlers(svc, hub, source)
	api.AddCheck("nats", upstream, true)
	if chClient != nil {
		api.AddCheck("clickhouse", chClient, false)
	}

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor))
	grpcserver.RegisterDraftServiceServer(grpcSrv, grpcserver.NewServer(svc, hub))
	lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen for gRPC: %w", err)
	}
	go func() {
		logger.Info("gRPC server starting", "address", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", "error", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handlers.NewRouter(api, provider, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "address", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			grpcSrv.Stop()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if len(svc.State().Picks) > 0 {
		if _, err := svc.Save(shutdownCtx); err != nil {
			logger.Error("Failed to save draft on shutdown", "error", err)
		}
	}
	stopGRPC(grpcSrv, 5*time.Second)
	return httpSrv.Shutdown(shutdownCtx)
}

// stopGRPC drains unary calls, then cuts open event streams.
func stopGRPC(srv *grpc.Server, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		srv.Stop()
	}
}
