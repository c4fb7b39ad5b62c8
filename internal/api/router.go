package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/resumebuilder/internal/api/handlers"
	"github.com/nikhilbhutani/resumebuilder/internal/api/middleware"
	"github.com/nikhilbhutani/resumebuilder/internal/config"
	"github.com/nikhilbhutani/resumebuilder/internal/resume"
)

// Services are the adapters the HTTP layer orchestrates. Redis is optional.
type Services struct {
	Store     resume.Store
	Generator handlers.ResumeGenerator
	Speech    handlers.Speech
	Assets    handlers.AssetReader
	Redis     *redis.Client
}

type Router struct {
	mux *chi.Mux
	cfg *config.Config
	svc Services
}

func NewRouter(cfg *config.Config, svc Services) *Router {
	return &Router{
		mux: chi.NewRouter(),
		cfg: cfg,
		svc: svc,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))

	// Health endpoints
	checks := []handlers.Check{{Name: "database", Ping: rt.svc.Store.Ping}}
	if rt.svc.Redis != nil {
		checks = append(checks, handlers.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rt.svc.Redis.Ping(ctx).Err() },
		})
	}
	health := handlers.NewHealthHandler(checks...)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	api := rt.apiRoutes()
	r.Mount("/api", api)
	r.Mount("/backend/api", api)

	// Frontend pages and static files
	r.Handle("/*", http.FileServer(staticDir(rt.cfg.Assets.FrontendDir)))

	return r
}

func (rt *Router) apiRoutes() http.Handler {
	r := chi.NewRouter()

	if rt.svc.Redis != nil {
		r.Use(middleware.NewRedisRateLimiter(rt.svc.Redis, rt.cfg.Server.RateLimitRPS).Limit)
	} else {
		r.Use(middleware.NewRateLimiter(rt.cfg.Server.RateLimitRPS, rt.cfg.Server.RateLimitBurst).Limit)
	}

	assetH := handlers.NewAssetHandler(rt.svc.Assets)
	r.Get("/translations/{langCode}", assetH.Translation)
	r.Get("/questions/{professionKey}", assetH.Questions)

	resumeH := handlers.NewResumeHandler(rt.svc.Generator, rt.svc.Store)
	r.Post("/generate-resume", resumeH.Generate)
	r.Get("/resume/{id}", resumeH.Get)

	speechH := handlers.NewSpeechHandler(rt.svc.Speech)
	r.Post("/tts", speechH.Synthesize)
	r.Post("/stt", speechH.Transcribe)

	return r
}
