package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/config"
	"github.com/example/coursewizard/internal/endpoint"
	"github.com/example/coursewizard/internal/observability"
	"github.com/example/coursewizard/internal/service"
	"github.com/example/coursewizard/internal/steps"
	"github.com/example/coursewizard/internal/storage/sqlite"
	"github.com/example/coursewizard/internal/telemetry"
	grpcTransport "github.com/example/coursewizard/internal/transport/grpc"
	"github.com/example/coursewizard/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "coursewizard", telemetry.Options{
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	table, err := steps.Resolve(cfg.Table, cfg.TableFile)
	if err != nil {
		log.Fatalf("Failed to load step table: %v", err)
	}
	log.Printf("Using step table %q with %d steps", table.Name(), table.MaxSteps())

	metrics := observability.NewMetrics()

	// Debug server for pprof and metrics
	if cfg.DebugAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics)
			mux.Handle("/debug/pprof/", http.DefaultServeMux)
			log.Printf("Starting debug server on %s (pprof + metrics)", cfg.DebugAddr)
			if err := http.ListenAndServe(cfg.DebugAddr, mux); err != nil {
				log.Printf("Debug server error: %v", err)
			}
		}()
	}

	// Initialize storage with metrics
	log.Printf("Initializing SQLite storage at %s", cfg.DBPath)
	store, err := sqlite.NewWithMetrics(cfg.DBPath, metrics)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	log.Println("Running database migrations...")
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	wizard := service.NewWizard(store, table, auth.ClaimsAuthorizer{}, service.WithMetrics(metrics))
	endpoints := endpoint.MakeEndpoints(wizard)

	var grpcOpts []grpcTransport.ServerOption
	webOpts := []web.Option{web.WithMetrics(metrics)}
	if cfg.TokenSecret != "" {
		tokens, err := auth.NewTokens(cfg.TokenSecret)
		if err != nil {
			log.Fatalf("Failed to create token verifier: %v", err)
		}
		grpcOpts = append(grpcOpts, grpcTransport.WithTokens(tokens))
		webOpts = append(webOpts, web.WithTokens(tokens))
	} else {
		log.Println("WIZARD_TOKEN_SECRET is not set; remote callers are anonymous")
	}

	server := grpcTransport.NewServer(endpoints, grpcOpts...)
	webServer := web.NewServer(cfg.HTTPAddr, endpoints, webOpts...)
	go func() {
		if err := webServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Web server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Println("Stopping web server...")
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web server shutdown error: %v", err)
		}

		log.Println("Stopping gRPC server...")
		server.GracefulStop()
	}()

	log.Printf("Starting course wizard gRPC server on %s", cfg.GRPCAddr)
	if err := server.Serve(cfg.GRPCAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
