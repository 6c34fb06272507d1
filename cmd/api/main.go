package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/astroservice/internal/config"
	"github.com/xavierca1/astroservice/internal/logger"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("❌ Configuração inválida")
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		boot.Fatal().Err(err).Msg("❌ LOG_LEVEL inválido")
	}

	for _, warning := range cfg.Warnings() {
		log.Warn().Msg("⚠️ " + warning)
	}

	app, err := newApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Falha ao montar a aplicação")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.limiter != nil {
		go app.limiter.Cleanup(10*time.Minute, ctx.Done())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Strs("channels", cfg.Channels).
			Str("manychat", cfg.ManyChat.TokenState()).
			Bool("smtp_configured", cfg.SMTP.Configured()).
			Msg("🔥 Astroservice rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Servidor caiu")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("⚠️ Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Shutdown com erro")
	}
}
