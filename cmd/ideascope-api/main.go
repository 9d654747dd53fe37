package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joelkehle/ideascope/internal/config"
	"github.com/joelkehle/ideascope/internal/events"
	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/httpapi"
	"github.com/joelkehle/ideascope/internal/ideas"
	"github.com/joelkehle/ideascope/internal/logging"
	"github.com/joelkehle/ideascope/internal/metrics"
	"github.com/joelkehle/ideascope/internal/narrative"
	"github.com/joelkehle/ideascope/internal/scheduler"
	"github.com/joelkehle/ideascope/internal/store"
	"github.com/joelkehle/ideascope/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("init tracing")
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer st.Close()

	pub, err := events.Open(cfg.Events)
	if err != nil {
		logger.Fatal().Err(err).Msg("open event publisher")
	}
	defer pub.Close()

	rec := metrics.New()
	gen, err := narrative.NewGeneratorFromConfig(ctx, cfg.Narrative, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init narrative generator")
	}
	// Narrative work outlives a single request but stops with the process.
	dispatcher := narrative.NewDispatcher(ctx, gen,
		narrative.WithProvider(cfg.Narrative.Provider),
		narrative.WithTimeout(cfg.Narrative.Timeout),
		narrative.WithLogger(logger),
		narrative.WithRecorder(rec))

	extractor := feasibility.NewExtractor(cfg.Extractor)
	svc := ideas.NewService(feasibility.NewAnalyzer(extractor, cfg.Modes), st,
		ideas.WithDispatcher(dispatcher),
		ideas.WithPublisher(pub),
		ideas.WithRecorder(rec),
		ideas.WithLogger(logger))

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled && dispatcher.Enabled() {
		sched = scheduler.New(ctx, svc, cfg.Narrative.BackfillAfter, logger)
		if err := sched.Register(cfg.Scheduler.BackfillCron); err != nil {
			logger.Fatal().Err(err).Msg("register backfill")
		}
		sched.Start()
	}

	handler := httpapi.NewServer(svc, httpapi.Options{
		Extractor:    extractor,
		Coefficients: cfg.Modes,
		Metrics:      rec,
		Logger:       logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("http shutdown")
		}
	}()

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("store", cfg.Store.Driver).
		Bool("narratives", dispatcher.Enabled()).
		Msg("ideascope listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("listen")
	}

	if sched != nil {
		sched.Stop()
	}
	svc.Wait()
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer done()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("tracing shutdown")
	}
	logger.Info().Msg("ideascope stopped")
}
