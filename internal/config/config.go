package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	ChannelManyChat = "manychat"
	ChannelEmail    = "email"

	TLSModeSSL      = "ssl"
	TLSModeSTARTTLS = "starttls"

	PayloadSendMessage = "sendMessage"
	PayloadSendContent = "sendContent"

	// ManyChatPlaceholderToken é o valor de exemplo que vinha no .env de deploy.
	ManyChatPlaceholderToken = "DEIN_MANYCHAT_API_KEY"
)

type Config struct {
	Port     string `koanf:"port"`
	LogLevel string `koanf:"log_level"`
	Env      string `koanf:"app_env"`

	WebhookSecret string `koanf:"webhook_secret"`

	// RateLimit is webhook requests per minute per client IP; 0 disables it.
	RateLimit int `koanf:"webhook_rate_limit"`

	// Channels lists the enabled delivery channels in priority order.
	// Empty means preview-only: the text is returned, nothing is sent.
	Channels    []string `koanf:"delivery_channels"`
	CORSOrigins []string `koanf:"cors_origins"`

	SMTP     SMTPConfig     `koanf:",squash"`
	ManyChat ManyChatConfig `koanf:",squash"`
}

type SMTPConfig struct {
	Host     string        `koanf:"smtp_host"`
	Port     int           `koanf:"smtp_port"`
	User     string        `koanf:"smtp_user"`
	Pass     string        `koanf:"smtp_pass"`
	From     string        `koanf:"smtp_from"`
	Bcc      []string      `koanf:"smtp_bcc"`
	TLSMode  string        `koanf:"smtp_tls"`
	Subject  string        `koanf:"smtp_subject"`
	Timeout  time.Duration `koanf:"smtp_timeout"`
	Required string        `koanf:"smtp_required"`
}

type ManyChatConfig struct {
	Token      string        `koanf:"manychat_token"`
	SendURL    string        `koanf:"manychat_send_url"`
	Payload    string        `koanf:"manychat_payload"`
	MessageTag string        `koanf:"manychat_message_tag"`
	Timeout    time.Duration `koanf:"manychat_timeout"`
}

// New returns a Config filled with defaults.
func New() *Config {
	return &Config{
		Port:        "8080",
		LogLevel:    "info",
		Env:         "production",
		RateLimit:   60,
		Channels:    []string{ChannelManyChat},
		CORSOrigins: []string{"*"},
		SMTP: SMTPConfig{
			Port:    465,
			Subject: "Deine Traumorte 🌍✨",
			Timeout: 20 * time.Second,
		},
		ManyChat: ManyChatConfig{
			SendURL: "https://api.manychat.com/fb/sending/sendMessage",
			Payload: PayloadSendMessage,
			Timeout: 20 * time.Second,
		},
	}
}

// Validate checks the values that would otherwise only blow up at request
// time. Missing SMTP credentials are not rejected here: the email channel
// reports them per request as a configuration failure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WebhookSecret) == "" {
		return fmt.Errorf("%w: WEBHOOK_SECRET is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("%w: PORT must not be empty", ErrInvalidConfig)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("%w: WEBHOOK_RATE_LIMIT must not be negative", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		switch ch {
		case ChannelManyChat, ChannelEmail:
		default:
			return fmt.Errorf("%w: unknown delivery channel %q", ErrInvalidConfig, ch)
		}
		if seen[ch] {
			return fmt.Errorf("%w: delivery channel %q listed twice", ErrInvalidConfig, ch)
		}
		seen[ch] = true
	}

	switch c.SMTP.TLSMode {
	case TLSModeSSL, TLSModeSTARTTLS:
	default:
		return fmt.Errorf("%w: SMTP_TLS must be %q or %q", ErrInvalidConfig, TLSModeSSL, TLSModeSTARTTLS)
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("%w: invalid SMTP_PORT %d", ErrInvalidConfig, c.SMTP.Port)
	}
	if c.SMTP.Required != "" && c.SMTP.Required != "true" && c.SMTP.Required != "false" {
		return fmt.Errorf("%w: SMTP_REQUIRED must be true or false", ErrInvalidConfig)
	}

	switch c.ManyChat.Payload {
	case PayloadSendMessage, PayloadSendContent:
	default:
		return fmt.Errorf("%w: unknown MANYCHAT_PAYLOAD %q", ErrInvalidConfig, c.ManyChat.Payload)
	}
	if c.ManyChat.Timeout <= 0 || c.SMTP.Timeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) normalize() {
	channels := make([]string, 0, len(c.Channels))
	for _, ch := range c.Channels {
		ch = strings.ToLower(strings.TrimSpace(ch))
		if ch != "" {
			channels = append(channels, ch)
		}
	}
	c.Channels = channels

	bcc := make([]string, 0, len(c.SMTP.Bcc))
	for _, addr := range c.SMTP.Bcc {
		if addr = strings.TrimSpace(addr); addr != "" {
			bcc = append(bcc, addr)
		}
	}
	c.SMTP.Bcc = bcc

	c.SMTP.TLSMode = strings.ToLower(strings.TrimSpace(c.SMTP.TLSMode))
	if c.SMTP.TLSMode == "" {
		// 465 é SSL implícito; qualquer outra porta (587, 25) usa STARTTLS.
		if c.SMTP.Port == 465 {
			c.SMTP.TLSMode = TLSModeSSL
		} else {
			c.SMTP.TLSMode = TLSModeSTARTTLS
		}
	}
	c.SMTP.Required = strings.ToLower(c.SMTP.Required)
}

// HasChannel reports whether name is among the enabled channels.
func (c *Config) HasChannel(name string) bool {
	for _, ch := range c.Channels {
		if ch == name {
			return true
		}
	}
	return false
}

// EmailMandatory is true when SMTP_REQUIRED says so or, when unset, when
// email is the only enabled channel.
func (c *Config) EmailMandatory() bool {
	switch c.SMTP.Required {
	case "true":
		return true
	case "false":
		return false
	}
	return len(c.Channels) == 1 && c.Channels[0] == ChannelEmail
}

// Warnings lists settings that pass Validate but will make requests fail
// or degrade. They are logged once at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.HasChannel(ChannelEmail) && !c.SMTP.Configured() {
		if c.EmailMandatory() {
			warnings = append(warnings, "email é obrigatório mas SMTP_HOST/SMTP_USER/SMTP_PASS/SMTP_FROM estão incompletos: todo webhook vai falhar com 500")
		} else {
			warnings = append(warnings, "email habilitado sem SMTP_HOST/SMTP_USER/SMTP_PASS/SMTP_FROM completos")
		}
	}
	if c.HasChannel(ChannelManyChat) && c.ManyChat.TokenState() != "configured" {
		warnings = append(warnings, "manychat habilitado sem MANYCHAT_TOKEN: envios serão ignorados")
	}
	return warnings
}

// Configured reports whether host, user, pass and from are all set.
func (s SMTPConfig) Configured() bool {
	return strings.TrimSpace(s.Host) != "" &&
		strings.TrimSpace(s.User) != "" &&
		s.Pass != "" &&
		strings.TrimSpace(s.From) != ""
}

// TokenState is "configured", "placeholder" or "not configured".
func (m ManyChatConfig) TokenState() string {
	switch strings.TrimSpace(m.Token) {
	case "":
		return "not configured"
	case ManyChatPlaceholderToken:
		return "placeholder"
	}
	return "configured"
}
