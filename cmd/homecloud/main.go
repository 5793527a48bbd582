package main

import (
	"context"
	"flag"
	"fmt"
	"homecloud/domain/event"
	"homecloud/infrastructure/storage"
	"homecloud/internal"
	"homecloud/media"
	"homecloud/progress"
	"homecloud/runtime"
	"homecloud/runtime/workers"
	"homecloud/session"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run keeps every defer (Badger above all) on the exit path, main only maps the error to an exit code.
func run() error {
	once := flag.Bool("once", false, "run a single sync session, print a summary and exit")
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	// 1. Configuration & Logger
	_ = godotenv.Load(*envFile)
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Media index (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	fs := afero.NewOsFs()
	repo := storage.NewMediaIndexRepository(db, log)
	indexer := runtime.NewIndexer(log, fs, repo, runtime.IndexerConfig{
		Root:                      config.MediaRoot,
		ScannerWorkerNb:           config.ScannerWorkerNb,
		BufferSize:                config.BufferSize,
		BackpressureLowThreshold:  config.ScannerBackpressureLowThreshold,
		BackpressureHardThreshold: config.ScannerBackpressureHardThreshold,
	})

	// 3. Session and progress rendering
	events := make(chan event.Event, config.EventBufferSize)
	sess := session.New(log,
		&net.Dialer{Timeout: config.DialTimeout},
		media.NewEnumerator(log, repo, fs),
		fs,
		progress.NewChannelReporter(events),
		session.WithIOTimeout(config.IOTimeout),
	)
	renderer := event.NewProgressHandler(log, progress.Multi{
		progress.NewLogReporter(log),
		progress.NewConsoleReporter(os.Stdout),
	})
	syncJob := workers.NewSyncJobWorker(log, clockwork.NewRealClock(), config.SyncInterval,
		config.ConnectionParams(), sess, workers.WithIndexRefresher(indexer))

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		return runOnce(ctx, log, syncJob, events, renderer)
	}

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log), events, syncJob)
	orchestrator.Add(renderer)
	if err := orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed: %w", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}

func runOnce(ctx context.Context, log *slog.Logger, syncJob *workers.SyncJobWorker, events chan event.Event, renderer event.Handler) error {
	notifier := workers.NewNotifierWorker(log, events, renderer)
	notified := make(chan struct{})
	go func() {
		defer close(notified)
		_ = notifier.Run(context.Background())
	}()

	result, err := syncJob.RunOnce(ctx)
	// The session has returned: nothing publishes anymore
	close(events)
	<-notified
	if err != nil {
		return err
	}

	printSummary(os.Stdout, result)
	if !result.Success {
		return fmt.Errorf("sync failed (%s): %w", result.Reason, result.Err)
	}
	return nil
}
