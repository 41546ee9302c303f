package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haruki/examquest/internal/api"
	"github.com/haruki/examquest/internal/backup"
	"github.com/haruki/examquest/internal/catalog"
	"github.com/haruki/examquest/internal/config"
	"github.com/haruki/examquest/internal/db"
	"github.com/haruki/examquest/internal/learning"
	"github.com/haruki/examquest/internal/logger"
	"github.com/haruki/examquest/internal/repository/sqlite"
	"github.com/haruki/examquest/internal/selection"
	"github.com/haruki/examquest/internal/session"
	"github.com/haruki/examquest/internal/state"
	"github.com/haruki/examquest/internal/stats"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("ExamQuest Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("questions_per_session=%d", cfg.QuestionsPerSession)
	log.Debug("mock_question_count=%d", cfg.MockQuestionCount)
	log.Debug("mock_seconds_per_question=%d", cfg.MockSecondsPerQuestion)
	log.Debug("min_mock_questions=%d", cfg.MinMockQuestions)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load the embedded question catalog
	cat, err := catalog.Load()
	if err != nil {
		log.Error("failed to load question catalog: %v", err)
		os.Exit(1)
	}
	log.Info("catalog loaded: %d categories, %d past-exam sets, %d questions",
		len(cat.Categories()), len(cat.ExamSets()), len(cat.AllQuestions()))

	// Wire the core components
	states := state.New(sqlite.NewStateStore(database.DB))
	engine := selection.NewEngine()
	tracker := learning.NewTracker(states, cat)
	aggregator := stats.NewAggregator(states)
	backupManager := backup.NewManager(states)
	machine := session.NewMachine(session.Config{
		QuestionsPerSession:    cfg.QuestionsPerSession,
		MockQuestionCount:      cfg.MockQuestionCount,
		MockSecondsPerQuestion: cfg.MockSecondsPerQuestion,
		MinMockQuestions:       cfg.MinMockQuestions,
	}, cat, engine, tracker, aggregator, states)
	defer machine.Close()

	srv := &api.Server{
		Catalog: cat,
		Machine: machine,
		Tracker: tracker,
		Stats:   aggregator,
		Backup:  backupManager,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping session countdown")
	machine.Close()

	log.Info("===========================================")
	log.Info("ExamQuest Server Stopped")
	log.Info("===========================================")
}
