package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/config"
	"github.com/civicsprep/civics-practice/internal/delivery/httpapi"
	"github.com/civicsprep/civics-practice/internal/infra/llm"
	"github.com/civicsprep/civics-practice/internal/logger"
	"github.com/civicsprep/civics-practice/internal/repository"
	"github.com/civicsprep/civics-practice/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the read-only reference data: variant definitions first,
	// then one question bank per variant.
	configRepo, err := repository.NewTestConfigRepository(cfg.Data.TestConfigsPath)
	if err != nil {
		zl.Fatal("loading test configs", zap.Error(err))
	}

	variants := make([]string, 0)
	for _, tc := range configRepo.All() {
		variants = append(variants, tc.TestType)
	}

	bank, err := repository.NewQuestionBank(cfg.Data.QuestionsDir, variants...)
	if err != nil {
		zl.Fatal("loading question banks", zap.Error(err))
	}

	for _, tc := range configRepo.All() {
		size, _ := bank.Size(tc.TestType)
		if size < tc.QuestionsAsked {
			zl.Warn("bank smaller than configured session size",
				zap.String("test_type", tc.TestType),
				zap.Int("bank_size", size),
				zap.Int("questions_asked", tc.QuestionsAsked),
			)
		}
	}

	completer := newCompleter(cfg, zl)

	dynamic := service.NewDynamicAnswersService(completer, nil, zl)
	questions := service.NewQuestionService(bank, dynamic, zl)
	grader := service.NewGraderService(completer, zl)

	staticDir := ""
	if cfg.Env == "production" {
		staticDir = cfg.Server.StaticDir
	}

	handler := httpapi.NewHandler(questions, grader, configRepo, zl)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler.Router(staticDir),
	}

	go func() {
		zl.Info("quiz server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCompleter picks the grading model from the configured API keys:
// Groq when its key is set, Gemini as the alternative, nil (accepted
// answer matching only) when neither is present.
func newCompleter(cfg *config.Config, zl *zap.Logger) llm.Completer {
	if cfg.LLM.GroqAPIKey != "" {
		client, err := llm.NewGroqClient(cfg.LLM.GroqAPIKey, cfg.LLM.Model)
		if err != nil {
			zl.Fatal("creating groq client", zap.Error(err))
		}
		zl.Info("grading with groq", zap.String("model", cfg.LLM.Model))
		return client
	}

	if cfg.LLM.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(cfg.LLM.GeminiAPIKey)
		if err != nil {
			zl.Fatal("creating gemini client", zap.Error(err))
		}
		zl.Info("grading with gemini")
		return client
	}

	zl.Warn("no model API key set, grading by accepted-answer matching only")
	return nil
}
