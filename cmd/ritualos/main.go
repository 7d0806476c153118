package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ritualos/internal/auth"
	"ritualos/internal/config"
	"ritualos/internal/db"
	httpx "ritualos/internal/http"
	"ritualos/internal/jobs"
	"ritualos/internal/logging"
	"ritualos/internal/metrics"
	"ritualos/internal/notify"
	"ritualos/internal/ritual"
	"ritualos/internal/ritual/gen"

	"go.uber.org/zap"
)

func main() {
	cfg, _ := config.Load()

	logger := logging.New(cfg.LogFile)
	defer logger.Sync()
	metrics.MustRegister()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	// Generation collaborator. Without an API key the gateway runs in
	// fallback-only mode.
	var textGen gen.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := gen.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini_client_init_failed", zap.Error(err))
		} else {
			textGen = gemini
		}
	}
	gateway := &gen.Gateway{Gen: textGen, Timeout: cfg.AITimeout, Log: logger}

	store := &ritual.Store{DB: gdb}
	svc := &ritual.Service{
		Store:         store,
		Gen:           gateway,
		FreeGoalLimit: cfg.FreeGoalLimit,
		Log:           logger,
	}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, svc, gateway)

	// background sweeps
	jobsRepo := &jobs.Repo{DB: gdb}
	if err := jobsRepo.EnsureScheduled(jobs.TypeMorningBriefing, jobs.NextRun(time.Now(), jobs.BriefingHourUTC)); err != nil {
		logger.Warn("schedule_briefing_failed", zap.Error(err))
	}
	if err := jobsRepo.EnsureScheduled(jobs.TypeStreakSweep, jobs.NextRun(time.Now(), jobs.StreakSweepHourUTC)); err != nil {
		logger.Warn("schedule_streak_sweep_failed", zap.Error(err))
	}

	worker := &jobs.Worker{
		ID:      "worker-1",
		Repo:    jobsRepo,
		DB:      gdb,
		Rituals: store,
		Notify:  &notify.Store{DB: gdb},
		Log:     logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
