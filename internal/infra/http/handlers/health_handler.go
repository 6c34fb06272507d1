package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/astroservice/internal/config"
)

type SMTPProber interface {
	Probe(ctx context.Context) error
}

type HealthHandler struct {
	Config    *config.Config
	Prober    SMTPProber
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(cfg *config.Config, prober SMTPProber) *HealthHandler {
	return &HealthHandler{
		Config:    cfg,
		Prober:    prober,
		StartTime: time.Now(),
	}
}

// Handle reports which channels are set up without ever echoing secrets.
// ?probe=smtp additionally opens a TCP connection to the SMTP server.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	channels := "preview-only"
	if len(h.Config.Channels) > 0 {
		channels = strings.Join(h.Config.Channels, ",")
	}
	deps["channels"] = channels

	if h.Config.SMTP.Configured() {
		deps["smtp"] = "configured"
	} else {
		deps["smtp"] = "not configured"
	}
	deps["smtp_tls"] = h.Config.SMTP.TLSMode
	deps["manychat"] = h.Config.ManyChat.TokenState()

	if h.Config.WebhookSecret != "" {
		deps["webhook_secret"] = "configured"
	} else {
		deps["webhook_secret"] = "not configured"
	}

	status := "ok"
	if r.URL.Query().Get("probe") == "smtp" && h.Prober != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.Prober.Probe(ctx); err != nil {
			deps["smtp_reachable"] = "unreachable"
			status = "degraded"
		} else {
			deps["smtp_reachable"] = "reachable"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Service:      "astroservice",
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "astroservice",
		"health":  "/health",
	})
}
