package manychat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/xavierca1/astroservice/internal/config"
	"github.com/xavierca1/astroservice/internal/entity"
	"github.com/xavierca1/astroservice/internal/logger"
)

const (
	ChannelName = "manychat"

	// SuccessStatus is what ManyChat puts in "status" when the message went out.
	SuccessStatus = "success"

	maxResponseBytes = 1 << 20
	maxRawChars      = 1000
)

type Client struct {
	token   string
	sendURL string
	builder PayloadBuilder
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.ManyChatConfig, log zerolog.Logger) (*Client, error) {
	builder, err := BuilderFor(cfg.Payload, cfg.MessageTag)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		token:   strings.TrimSpace(cfg.Token),
		sendURL: cfg.SendURL,
		builder: builder,
		http: &http.Client{
			Timeout: timeout,
		},
		log: logger.OrNop(log).With().Str("channel", ChannelName).Logger(),
	}, nil
}

func (c *Client) Name() string             { return ChannelName }
func (c *Client) DestinationField() string { return "external_id" }
func (c *Client) Mandatory() bool          { return false }

func (c *Client) Destination(lead entity.Lead) string {
	return lead.ExternalID
}

// Send posts the text to one subscriber. A missing or placeholder token is
// a skip; HTTP 200 without status "success" is a failure.
func (c *Client) Send(ctx context.Context, subscriberID, text string) entity.DeliveryOutcome {
	if c.token == "" || c.token == config.ManyChatPlaceholderToken {
		c.log.Warn().Msg("⚠️ ManyChat: MANYCHAT_TOKEN não configurado, envio ignorado")
		return entity.Skipped(ChannelName, "token missing")
	}

	body, err := json.Marshal(c.builder.Build(subscriberID, text))
	if err != nil {
		return entity.Failed(ChannelName, entity.FailureUnexpected, fmt.Errorf("encode payload: %w", err), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return entity.Failed(ChannelName, entity.FailureConfiguration, fmt.Errorf("invalid MANYCHAT_SEND_URL: %w", err), nil)
	}
	c.addAuthHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		c.log.Error().Err(err).Str("failure", string(kind)).Msg("❌ ManyChat: falha de comunicação")
		return entity.Failed(ChannelName, kind, err, nil)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return entity.Failed(ChannelName, classifyTransportError(err), fmt.Errorf("read response: %w", err), nil)
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		diag := map[string]any{
			"http_status": resp.StatusCode,
			"raw":         truncate(string(respBody), maxRawChars),
		}
		c.log.Warn().Int("http_status", resp.StatusCode).Msg("⚠️ ManyChat: resposta não é JSON")
		return entity.Failed(ChannelName, failureForStatus(resp.StatusCode), fmt.Errorf("non-JSON response (HTTP %d)", resp.StatusCode), diag)
	}

	result := responseOf(parsed)
	if result.Status != SuccessStatus {
		msg := fmt.Sprintf("status %q (HTTP %d)", result.Status, resp.StatusCode)
		if result.Message != "" {
			msg += ": " + result.Message
		}
		c.log.Warn().Int("http_status", resp.StatusCode).Str("status", result.Status).Msg("⚠️ ManyChat: envio não confirmado")
		return entity.Failed(ChannelName, failureForStatus(resp.StatusCode), errors.New(msg), parsed)
	}

	c.log.Info().Str("subscriber_id", subscriberID).Msg("✅ ManyChat: mensagem enviada")
	return entity.Delivered(ChannelName, parsed)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// responseOf reads status and message from an already decoded body; a
// non-string value counts as absent.
func responseOf(parsed map[string]any) SendResponse {
	status, _ := parsed["status"].(string)
	message, _ := parsed["message"].(string)
	return SendResponse{Status: status, Message: message}
}

func failureForStatus(code int) entity.FailureKind {
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return entity.FailureAuth
	}
	return entity.FailureProtocol
}

func classifyTransportError(err error) entity.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.FailureTimeout
	}
	if errors.Is(err, context.Canceled) {
		return entity.FailureUnexpected
	}
	return entity.FailureConnect
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
