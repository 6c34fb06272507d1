package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/astroservice/internal/config"
	"github.com/xavierca1/astroservice/internal/infra/evaluator"
	"github.com/xavierca1/astroservice/internal/infra/http/handlers"
	"github.com/xavierca1/astroservice/internal/infra/http/middleware"
	"github.com/xavierca1/astroservice/internal/infra/integration/manychat"
	"github.com/xavierca1/astroservice/internal/infra/mail"
	"github.com/xavierca1/astroservice/internal/usecase"
)

type app struct {
	router  http.Handler
	limiter *middleware.RateLimiter
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	return newAppWithEvaluator(cfg, log, evaluator.NewMagicPlaces())
}

func newAppWithEvaluator(cfg *config.Config, log zerolog.Logger, eval usecase.Evaluator) (*app, error) {
	// 1. Canais de entrega, na ordem de DELIVERY_CHANNELS
	emailSender := mail.NewEmailSender(cfg.SMTP, cfg.EmailMandatory(), log)

	channels := make([]usecase.DeliveryChannel, 0, len(cfg.Channels))
	for _, name := range cfg.Channels {
		switch name {
		case config.ChannelManyChat:
			client, err := manychat.NewClient(cfg.ManyChat, log)
			if err != nil {
				return nil, err
			}
			channels = append(channels, client)
		case config.ChannelEmail:
			channels = append(channels, emailSender)
		default:
			return nil, fmt.Errorf("unknown delivery channel %q", name)
		}
	}

	// 2. UseCase
	intakeUC := usecase.NewHandleIntakeUseCase(cfg.WebhookSecret, eval, channels, log)

	// 3. Handlers
	webhookHandler := handlers.NewWebhookHandler(intakeUC, log)
	healthHandler := handlers.NewHealthHandler(cfg, emailSender)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	}

	// 4. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", handlers.AuthHeader},
	}))

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Handle)
	r.Get("/mc/test", handlers.HandleTest)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Handler)
		}
		r.Post("/webhook", webhookHandler.Handle)
		r.Post("/mc/webhook", webhookHandler.Handle)
	})

	return &app{router: r, limiter: limiter}, nil
}
