package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/resumebuilder/internal/api"
	"github.com/nikhilbhutani/resumebuilder/internal/assets"
	"github.com/nikhilbhutani/resumebuilder/internal/config"
	"github.com/nikhilbhutani/resumebuilder/internal/database"
	"github.com/nikhilbhutani/resumebuilder/internal/generation"
	"github.com/nikhilbhutani/resumebuilder/internal/llm"
	"github.com/nikhilbhutani/resumebuilder/internal/logging"
	"github.com/nikhilbhutani/resumebuilder/internal/multimodal"
	"github.com/nikhilbhutani/resumebuilder/internal/multimodal/stt"
	"github.com/nikhilbhutani/resumebuilder/internal/multimodal/tts"
	"github.com/nikhilbhutani/resumebuilder/internal/resume"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(cfg.Log)
	slog.SetDefault(logger)
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			slog.Error("configuration incomplete", "missing", cfgErr.Missing, "error", err)
		} else {
			slog.Error("invalid configuration", "error", err)
		}
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open resume store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Redis connection (optional)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, rate limiter will fail open", "error", err)
		}
		defer rdb.Close()
	}

	gw, err := llm.NewGateway(ctx, cfg.LLM)
	if err != nil {
		slog.Error("failed to create llm gateway", "error", err)
		os.Exit(1)
	}
	generator := generation.NewGenerator(gw, generation.Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	synth, rec, closeSpeech, err := newSpeechBackends(ctx, cfg)
	if err != nil {
		slog.Error("failed to create speech clients", "error", err)
		os.Exit(1)
	}
	defer closeSpeech()

	router := api.NewRouter(cfg, api.Services{
		Store:     store,
		Generator: generator,
		Speech:    multimodal.NewSpeechService(synth, rec, logger),
		Assets:    assets.NewResolver(cfg.Assets.TranslationsDir, cfg.Assets.QuestionsDir),
		Redis:     rdb,
	})
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"llm_provider", gw.DefaultProvider(),
			"tts", synth.Name(),
			"stt", rec.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// openStore connects to postgres when DATABASE_URL is a postgres URL and to
// the embedded libSQL file otherwise, applying migrations either way.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (resume.Store, error) {
	if cfg.UsesPostgres() {
		pool, err := database.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return resume.NewPostgresStore(pool), nil
	}

	db, err := database.OpenLibSQL(ctx, cfg.LibSQLDSN())
	if err != nil {
		return nil, err
	}
	if err := database.MigrateLibSQL(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return resume.NewSQLStore(db), nil
}

// newSpeechBackends builds the configured TTS and STT backends. The returned
// func closes any gRPC clients.
func newSpeechBackends(ctx context.Context, cfg *config.Config) (tts.TTSProvider, stt.STTProvider, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	var synth tts.TTSProvider
	switch cfg.TTS.Backend {
	case "google":
		g, err := tts.NewGoogleTTS(ctx, cfg.Speech.CredentialsFile)
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, g)
		synth = g
	case "openai":
		synth = tts.NewOpenAITTS(tts.OpenAITTSConfig{
			APIKey:  cfg.TTS.OpenAIKey,
			BaseURL: cfg.TTS.OpenAIBaseURL,
			Model:   cfg.TTS.OpenAIModel,
			Voice:   cfg.TTS.OpenAIVoice,
		})
	case "local":
		synth = tts.NewLocalTTS(tts.LocalTTSConfig{
			PiperBinPath: cfg.TTS.LocalBinPath,
			ModelPath:    cfg.TTS.LocalModel,
		})
	default:
		return nil, nil, nil, fmt.Errorf("unknown TTS backend %q", cfg.TTS.Backend)
	}

	var rec stt.STTProvider
	switch cfg.STT.Backend {
	case "google":
		g, err := stt.NewGoogleSTT(ctx, cfg.Speech.CredentialsFile)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, g)
		rec = g
	case "openai":
		rec = stt.NewOpenAISTT(stt.OpenAISTTConfig{
			APIKey:  cfg.STT.OpenAIKey,
			BaseURL: cfg.STT.OpenAIBaseURL,
			Model:   cfg.STT.OpenAIModel,
		})
	case "local":
		rec = stt.NewLocalSTT(stt.LocalSTTConfig{BaseURL: cfg.STT.LocalBaseURL})
	default:
		closeAll()
		return nil, nil, nil, fmt.Errorf("unknown STT backend %q", cfg.STT.Backend)
	}

	return synth, rec, closeAll, nil
}
