package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/services/advisor"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	apiKey := envStr("GOOGLE_API_KEY", "")
	if apiKey == "" {
		log.Fatal("GOOGLE_API_KEY is required")
	}
	addr := envStr("HTTP_ADDR", ":8085")
	modelName := envStr("GEMINI_MODEL", "gemini-2.0-flash")
	knowledgeDir := envStr("KNOWLEDGE_DIR", "/app/knowledge")
	allowOrigin := envStr("CHAT_ALLOW_ORIGIN", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, err := advisor.NewGeminiGenerator(ctx, apiKey, modelName)
	if err != nil {
		log.Fatal("init gemini", zap.Error(err))
	}

	kb, err := advisor.NewKnowledgeBase(knowledgeDir, log)
	if err != nil {
		log.Fatal("load knowledge base", zap.Error(err))
	}
	if err := kb.Watch(ctx); err != nil {
		log.Warn("knowledge hot reload disabled", zap.Error(err))
	}

	api := advisor.NewAPI(gen, kb, allowOrigin, log)
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", api.HandleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("advisor: shutting down")
		cancel()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("advisor service listening", zap.String("addr", addr), zap.Int("documents", kb.Documents()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server error", zap.Error(err))
	}
}
