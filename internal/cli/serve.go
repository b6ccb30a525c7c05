package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/ai"
	"github.com/bookself/bookself/internal/config"
	"github.com/bookself/bookself/internal/engine"
	"github.com/bookself/bookself/internal/quiz"
	"github.com/bookself/bookself/internal/roadmap"
	"github.com/bookself/bookself/internal/server"
	"github.com/bookself/bookself/internal/session"
	"github.com/bookself/bookself/internal/store"
)

var (
	serveConfigPath string
	serveSeed       bool
	serveDev        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "path to a TOML config file")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", true, "start with the demo library")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "human-readable console logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	// Env overrides win over the config file.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.AI.GeminiKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.AI.GeminiKey == "" {
		cfg.AI.Provider = "anthropic"
		cfg.AI.AnthropicKey = key
	}

	log, err := newLogger(serveDev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	state := store.New()
	if serveSeed {
		state = store.NewSeeded()
	}

	client, err := ai.NewClient(cfg.AI)
	if err != nil {
		log.Warn("AI collaborator not configured, using mock responses", zap.Error(err))
		client = &ai.MockClient{}
	} else {
		log.Info("AI collaborator ready", zap.String("provider", cfg.AI.Provider), zap.String("model", cfg.AI.Model))
	}

	eng := engine.New(state, log, cfg.DecayInterval())
	defer eng.Stop()
	gate := session.NewGate(state, eng, log)

	wizard := roadmap.NewWizard(client, log)
	hints := roadmap.NewHintFetcher(client, wizard, state.PageTitles, log, cfg.HintDebounce())
	defer hints.Stop()
	quizSession := quiz.NewSession(client, log, cfg.AI.QuizLength)

	srv := server.New(server.Options{
		State:          state,
		Gate:           gate,
		Client:         client,
		Quiz:           quizSession,
		Wizard:         wizard,
		Hints:          hints,
		Log:            log,
		Version:        VersionString(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("bookself serving", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			done <- syscall.SIGTERM
		}
	}()

	<-done
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
