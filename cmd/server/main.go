package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"quizolute/internal/api"
	"quizolute/internal/completion"
	"quizolute/internal/config"
	"quizolute/internal/logging"
	"quizolute/internal/services"
	"quizolute/pkg/websearch"
)

var endpoints = []string{
	"POST /api/generate-flashcards",
	"POST /api/summarize",
	"POST /api/chat",
	"POST /api/generate-quiz",
	"GET  /api/search?q=query",
	"GET  /api/health",
}

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.TokenConfigured() {
		log.Warn("HUGGINGFACE_TOKEN is not set; generation requests will fail until it is configured")
	}

	llm := completion.New(cfg.HFToken, cfg.HFBaseURL, completion.Options{
		Models:      cfg.Models(),
		VisionModel: cfg.VisionModel,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, log.Named("completion"))

	search := websearch.NewWebSearchService(websearch.Config{
		BaseURL: cfg.SearchBaseURL,
		Timeout: cfg.SearchTimeout,
	})

	study := services.NewStudyService(llm, llm, search, services.NewPDFService(0), log.Named("study"))

	server := api.NewServer(study, api.Options{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		StaticDir:       cfg.StaticDir,
		CORSOrigins:     cfg.CORSOrigins,
		TokenConfigured: cfg.TokenConfigured(),
		TextModel:       llm.PrimaryModel(),
		VisionModel:     llm.VisionModel(),
	}, log.Named("api"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Quizolute server running",
		zap.String("url", "http://localhost:"+cfg.Port),
		zap.Bool("token_configured", cfg.TokenConfigured()),
		zap.String("text_model", llm.PrimaryModel()),
		zap.String("vision_model", llm.VisionModel()),
		zap.Strings("fallback_models", cfg.FallbackModels),
		zap.Strings("endpoints", endpoints),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}
