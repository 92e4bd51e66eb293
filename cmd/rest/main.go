package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa-be/internal/bootstrap"
	"docqa-be/internal/config"
	"docqa-be/internal/server"
	"docqa-be/internal/tracer"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()

	// 1. Configuration
	cfg := config.Load()

	// 2. Dependencies
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Background workers
	go container.WebSocketHub.Run(ctx)

	consumerDone, err := container.ConsumerService.Consume(ctx)
	if err != nil {
		log.Fatalf("start ingestion consumer: %v", err)
	}

	// 4. HTTP server
	srv := server.New(cfg, container)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		container.Logger.Info("Main", "Shutting down", nil)
	case err := <-serverErr:
		container.Logger.Error("Main", "Server stopped", map[string]interface{}{"error": err.Error()})
		stop()
	}

	if err := srv.Shutdown(); err != nil {
		container.Logger.Warn("Main", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	container.Close()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Println("ingestion consumer did not stop in time")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
}
