package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/export"
	"github.com/joseph-ayodele/logforms/internal/ingest"
	"github.com/joseph-ayodele/logforms/internal/llm"
	"github.com/joseph-ayodele/logforms/internal/llm/gemini"
	pipeline "github.com/joseph-ayodele/logforms/internal/pipeline"
	repo "github.com/joseph-ayodele/logforms/internal/repository"
	"github.com/joseph-ayodele/logforms/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("logformd stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("logformd stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	geminiClient, err := gemini.NewClient(ctx, gemini.ConfigFrom(cfg.Gemini), logger)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}

	// Analysis: gate -> extraction -> envelope validation
	processor := pipeline.NewProcessor(logger,
		ingest.NewGatekeeper(cfg.Extract, logger),
		geminiClient,
		llm.NewEnvelopeValidator(cfg.Extract, logger),
	)

	// Storage: one pooled store per distinct set of caller coordinates
	stores := repo.NewRegistry(repo.DefaultOpener(cfg, logger), cfg.Store.MaxPools, logger)
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("store registry close failed", "error", err)
		}
	}()

	router := server.NewRouter(server.Deps{
		Config:      cfg,
		Logger:      logger,
		Analyzer:    processor,
		Provisioner: repo.NewProvisioner(stores, logger),
		Records:     repo.NewRecordIngestor(stores, logger),
		Exporter:    export.NewService(logger),
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// empty service name means overall server health
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("logformd http listening", "addr", cfg.HTTP.Addr, "env", cfg.App.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	if cfg.App.GRPCAddr != "" {
		g.Go(func() error {
			lis, err := net.Listen("tcp", cfg.App.GRPCAddr)
			if err != nil {
				return fmt.Errorf("grpc listen on %s: %w", cfg.App.GRPCAddr, err)
			}
			logger.Info("logformd grpc health listening", "addr", cfg.App.GRPCAddr)
			return grpcServer.Serve(lis)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		healthServer.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
