package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/bootstrap"
	"github.com/agenthands/loregraph/internal/core"
	"github.com/agenthands/loregraph/internal/metrics"
	"github.com/agenthands/loregraph/internal/server"
)

func main() {
	cfg, err := bootstrap.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := bootstrap.Logger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	// FIXTURE_PATH serves a YAML fixture instead of Memgraph.
	stack, err := bootstrap.OpenStore(ctx, cfg, os.Getenv("FIXTURE_PATH"), logger, m)
	if err != nil {
		logger.Fatal("Failed to open entity store", zap.Error(err))
	}
	defer stack.Close(context.Background())

	svc := core.NewGraphService(stack.Store, cfg.Graph, m, logger.Named("graph"))
	srv := server.NewServer(svc, cfg, logger.Named("http"), m)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port), zap.Bool("dev_mode", cfg.Server.DevMode))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
