package main

import (
	"contact-lab/internal"
	"contact-lab/projection"
	"contact-lab/protocol"
	"contact-lab/protocol/memory"
	"contact-lab/repositories"
	"contact-lab/runtime"
	"contact-lab/runtime/workers"
	"contact-lab/search"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Exit codes to provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "contactlistd terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the store, the index and the simulated providers around the
// orchestrator, then serves gRPC health until interrupted.
func run() (int, error) {
	// 1. Configuration & Logger
	shared, err := internal.LoadConfig[internal.Config]()
	if err != nil {
		return exitConfig, err
	}
	config, err := internal.LoadConfig[Config]()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(shared.LogLevel)

	roster, err := loadRoster(config.RosterFilepath)
	if err != nil {
		return exitConfig, err
	}
	providers, err := roster.providers(log)
	if err != nil {
		return exitConfig, err
	}

	// 2. Database (BadgerDB) & Index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(shared.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(shared.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Orchestration
	registry := runtime.NewRegistry()
	for _, p := range providers {
		registry.Store(p.AccountID())
	}
	repository := repositories.NewContactListRepository(db, log)
	orchestrator := runtime.NewOrchestrator(log, registry, registry, repository, shared.ConfirmationTimeout)
	changelog := projection.NewChangelog(config.ChangelogEntries)
	orchestrator.AddListener(search.NewContactIndex(blugeWriter, log))
	orchestrator.AddListener(changelog)

	// 5. Notification delivery of every provider and the reporter run supervised
	sup := workers.NewSupervisor(log, config.RestartInterval)
	for _, p := range providers {
		sup.Add(p)
	}
	sup.Add(workers.NewReporterWorker(log, orchestrator.Root(), changelog.Len, config.ReportInterval))
	supervised := make(chan struct{})
	go func() {
		defer close(supervised)
		sup.Run(ctx)
	}()
	defer func() {
		sup.Stop()
		<-supervised
	}()

	// 6. gRPC health, SERVING once every provider is attached
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting gRPC server", "address", address, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	defer s.GracefulStop()

	// 7. Start the Engine
	if err := orchestrator.Start(ctx, lo.Map(providers, func(p *memory.Provider, _ int) protocol.Provider {
		return p
	})...); err != nil {
		return exitRuntime, fmt.Errorf("orchestrator failed to start: %w", err)
	}
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	printTree(os.Stdout, orchestrator.Root())

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup
	healthServer.Shutdown()
	orchestrator.Stop()
	log.Info(fmt.Sprintf("Program stopped cleanly, %d list changes journaled", changelog.Len()))
	return exitOK, nil
}
