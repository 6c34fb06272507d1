package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/astroservice/internal/config"
	"github.com/xavierca1/astroservice/internal/entity"
)

const annaBody = `{"first_name":"Anna","birth_date":"04.07.1983","birth_time":"12:10","birth_place":"Linz","external_id":"u123"}`

type SpyEvaluator struct {
	mock.Mock
}

func (s *SpyEvaluator) Evaluate(birthDate, birthTime, birthPlace string) entity.EvaluationResult {
	args := s.Called(birthDate, birthTime, birthPlace)
	return args.Get(0).(entity.EvaluationResult)
}

func annaEvaluator() *SpyEvaluator {
	e := new(SpyEvaluator)
	e.On("Evaluate", "04.07.1983", "12:10", "Linz").Return(entity.EvaluationResult{
		Love:   []string{"Berlin"},
		Career: []string{"New York"},
		Health: []string{"Bali"},
	})
	return e
}

func testConfig(manyChatURL string) *config.Config {
	cfg := config.New()
	cfg.WebhookSecret = "s3cret"
	cfg.RateLimit = 0
	cfg.SMTP.TLSMode = config.TLSModeSSL
	cfg.ManyChat.Token = "mc-token"
	cfg.ManyChat.SendURL = manyChatURL
	return cfg
}

func manyChatServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mc-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func serve(t *testing.T, a *app, method, target, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Auth-Token", token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestWebhookEndToEndDelivered(t *testing.T) {
	srv := manyChatServer(t, `{"status":"success"}`)
	a, err := newAppWithEvaluator(testConfig(srv.URL), zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	w, body := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")

	require.Equal(t, http.StatusOK, w.Code)
	preview := body["preview"].(string)
	assert.Contains(t, preview, "❤️ Liebe → Berlin")
	assert.Contains(t, preview, "🏆 Karriere → New York")
	assert.Contains(t, preview, "💚 Gesundheit → Bali")
	assert.Equal(t, true, body["sent"])
	assert.Equal(t, "manychat", body["channel"])
}

func TestWebhookEndToEndMissingSuccessMarker(t *testing.T) {
	srv := manyChatServer(t, `{"data":{}}`)
	a, err := newAppWithEvaluator(testConfig(srv.URL), zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	w, body := serve(t, a, http.MethodPost, "/mc/webhook", annaBody, "s3cret")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["sent"])
	diag := body["manychat"].(map[string]any)
	assert.Equal(t, "protocol", diag["failure"])
}

func TestWebhookEndToEndPlaceholderToken(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.ManyChat.Token = config.ManyChatPlaceholderToken
	a, err := newAppWithEvaluator(cfg, zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	w, body := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["sent"])
	assert.Equal(t, "token missing", body["skipped_reason"])
	assert.NotEmpty(t, body["preview"])
}

func TestWebhookEndToEndUnauthorized(t *testing.T) {
	spy := new(SpyEvaluator)
	a, err := newAppWithEvaluator(testConfig("http://127.0.0.1:1"), zerolog.Nop(), spy)
	require.NoError(t, err)

	for _, token := range []string{"", "wrong"} {
		w, body := serve(t, a, http.MethodPost, "/webhook", annaBody, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", body["error"])

		w, body = serve(t, a, http.MethodPost, "/webhook", "{not json", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", body["error"])
	}
	spy.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookEndToEndEmailWithoutSMTPConfig(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Channels = []string{config.ChannelEmail}
	a, err := newAppWithEvaluator(cfg, zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	body := `{"first_name":"Anna","birth_date":"04.07.1983","birth_time":"12:10","birth_place":"Linz","email":"anna@example.com"}`
	w, resp := serve(t, a, http.MethodPost, "/webhook", body, "s3cret")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "CONFIGURATION_ERROR", resp["error"])
}

func TestWebhookEndToEndEmailMissingAddress(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Channels = []string{config.ChannelEmail}
	a, err := newAppWithEvaluator(cfg, zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	w, resp := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp["error"])
}

func TestWebhookEndToEndTruncatesToThree(t *testing.T) {
	srv := manyChatServer(t, `{"status":"success"}`)
	e := new(SpyEvaluator)
	e.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(entity.EvaluationResult{
		Love:   []string{"A", "B", "C", "D", "E"},
		Career: []string{"1", "2", "3", "4"},
	})
	a, err := newAppWithEvaluator(testConfig(srv.URL), zerolog.Nop(), e)
	require.NoError(t, err)

	_, body := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")

	preview := body["preview"].(string)
	assert.Contains(t, preview, "❤️ Liebe → A, B, C\n")
	assert.Contains(t, preview, "🏆 Karriere → 1, 2, 3\n")
	assert.Contains(t, preview, "💚 Gesundheit → –\n")
	assert.Len(t, body["love_top3"], 3)
	assert.Len(t, body["health_top3"], 0)
}

func TestPreviewOnlyMode(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Channels = nil
	a, err := newAppWithEvaluator(cfg, zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	w, body := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "none", body["channel"])
	assert.Equal(t, false, body["sent"])
}

func TestOperatorEndpoints(t *testing.T) {
	a, err := newApp(testConfig("http://127.0.0.1:1"), zerolog.Nop())
	require.NoError(t, err)

	w, body := serve(t, a, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "astroservice", body["service"])

	w, body = serve(t, a, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, w.Body.String(), "mc-token")

	w, _ = serve(t, a, http.MethodGet, "/mc/test?subscriber_id=1", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = serve(t, a, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestWebhookRateLimited(t *testing.T) {
	srv := manyChatServer(t, `{"status":"success"}`)
	cfg := testConfig(srv.URL)
	cfg.RateLimit = 1
	a, err := newAppWithEvaluator(cfg, zerolog.Nop(), annaEvaluator())
	require.NoError(t, err)

	w, _ := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body := serve(t, a, http.MethodPost, "/webhook", annaBody, "s3cret")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", body["error"])
}
