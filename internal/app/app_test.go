package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xuanlung-gov/tthc-assistant/internal/assistant"
	"github.com/xuanlung-gov/tthc-assistant/internal/catalog"
	"github.com/xuanlung-gov/tthc-assistant/internal/config"
	"github.com/xuanlung-gov/tthc-assistant/internal/feed"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/ratelimit"
	"github.com/xuanlung-gov/tthc-assistant/internal/warmup"
)

type stubAnswerer struct{ reply string }

func (s stubAnswerer) Answer(_ context.Context, _ string) (*assistant.Answer, error) {
	return &assistant.Answer{Reply: s.reply, Outcome: assistant.OutcomeAnswered}, nil
}

func (stubAnswerer) Busy() string { return "busy" }

// setupTestApp creates an Application with an unconfigured procedure feed
// and a stub answerer. mutate may adjust the config before the router is built.
func setupTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()

	cfg := &config.Config{
		CommuneName:      config.DefaultCommuneName,
		ChatTimeout:      time.Second,
		MaxMessageLength: 100,
		CORSOrigins:      []string{"*"},
		MetricsUsername:  "prometheus",
		WarmupTimeout:    time.Minute,
	}
	if mutate != nil {
		mutate(cfg)
	}

	registry := prometheus.NewRegistry()
	log := logger.NewWithWriter("error", io.Discard)
	procedures := feed.New(feed.NewClient(time.Second), catalog.DecodeProcedures, feed.Options{Name: ProcedureFeedName})

	a := &Application{
		cfg:            cfg,
		logger:         log,
		metrics:        metrics.New(registry),
		registry:       registry,
		answerer:       stubAnswerer{reply: "Xin chào Ông/Bà"},
		feeds:          []feedStatus{procedures},
		readinessState: warmup.NewReadinessState(cfg.WarmupTimeout, nil),
	}
	a.router = a.buildRouter()
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	return w
}

func postChat(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, ChatPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLivenessCheck(t *testing.T) {
	a := setupTestApp(t, nil)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestServiceInfo(t *testing.T) {
	a := setupTestApp(t, nil)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tthc-assistant", body["service"])
	assert.Equal(t, ChatPath, body["chat"])
	assert.Equal(t, config.DefaultCommuneName, body["commune"])
}

func TestReadinessCheck(t *testing.T) {
	a := setupTestApp(t, nil)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "preload in progress")

	a.readinessState.MarkReady()
	w = serve(a, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string        `json:"status"`
		Feeds  []feed.Status `json:"feeds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	require.Len(t, body.Feeds, 1)
	assert.Equal(t, ProcedureFeedName, body.Feeds[0].Name)
	assert.False(t, body.Feeds[0].Configured, "an unconfigured feed does not make the service unready")
}

func TestChatEndpoint(t *testing.T) {
	a := setupTestApp(t, nil)

	w := serve(a, postChat(`{"message":"[CHẾ ĐỘ: THỦ TỤC] đăng ký khai sinh"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"Xin chào Ông/Bà"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"), "a request id is generated when none is sent")
}

func TestChatEndpoint_KeepsUpstreamRequestID(t *testing.T) {
	a := setupTestApp(t, nil)
	req := postChat(`{"message":"quy chế"}`)
	req.Header.Set("X-Request-Id", "req-123")

	w := serve(a, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
}

func TestChatEndpoint_Preflight(t *testing.T) {
	a := setupTestApp(t, nil)
	req := httptest.NewRequest(http.MethodOptions, ChatPath, nil)
	req.Header.Set("Origin", "https://xuanlung.phutho.gov.vn")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := serve(a, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, w.Body.String())
}

func TestChatEndpoint_RestrictedOrigins(t *testing.T) {
	const allowed = "https://xuanlung.phutho.gov.vn"
	a := setupTestApp(t, func(c *config.Config) { c.CORSOrigins = []string{allowed} })

	tests := []struct {
		origin string
		want   string
	}{
		{origin: allowed, want: allowed},
		{origin: "https://evil.example", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := postChat(`{"message":"hộ tịch"}`)
			req.Header.Set("Origin", tt.origin)
			w := serve(a, req)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestChatEndpoint_MethodNotAllowed(t *testing.T) {
	a := setupTestApp(t, nil)

	w := serve(a, httptest.NewRequest(http.MethodGet, ChatPath, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Only POST allowed"}`, w.Body.String())
}

func TestChatEndpoint_RateLimited(t *testing.T) {
	a := setupTestApp(t, nil)
	a.limiter = ratelimit.NewClientLimiter(ratelimit.ClientConfig{Burst: 2, RefillRate: 0.001, Metrics: a.metrics})
	t.Cleanup(a.limiter.Stop)
	a.router = a.buildRouter()

	for range 2 {
		require.Equal(t, http.StatusOK, serve(a, postChat(`{"message":"khai sinh"}`)).Code)
	}
	w := serve(a, postChat(`{"message":"khai sinh"}`))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
	assert.Equal(t, "5", w.Header().Get("Retry-After"))

	// 405 and preflight never spend tokens.
	assert.Equal(t, http.StatusMethodNotAllowed, serve(a, httptest.NewRequest(http.MethodGet, ChatPath, nil)).Code)
	assert.Equal(t, http.StatusNoContent, serve(a, httptest.NewRequest(http.MethodOptions, ChatPath, nil)).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	a := setupTestApp(t, func(c *config.Config) { c.MetricsPassword = "s3cret" })
	serve(a, postChat(`{"message":""}`))

	w := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prometheus", "s3cret")
	w = serve(a, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tthc_http_errors_total")
}

func TestBuildComponents_WithoutFeeds(t *testing.T) {
	cfg := &config.Config{
		CommuneName:      config.DefaultCommuneName,
		ProvinceName:     config.DefaultProvinceName,
		Hotline:          config.DefaultHotline,
		FeedTTL:          time.Minute,
		FeedFetchTimeout: time.Second,
		LLM: config.LLMConfig{
			Providers:    []string{config.ProviderOpenAI},
			OpenAIAPIKey: "sk-test",
			OpenAIModel:  "gpt-4o-mini",
			MaxAttempts:  1,
		},
	}
	log := logger.NewWithWriter("error", io.Discard)

	c, err := BuildComponents(t.Context(), cfg, log, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.False(t, c.Procedures.Configured())
	assert.False(t, c.Documents.Configured())

	// No feed means the no-data reply, without any network call.
	ans, err := c.Assistant.Answer(t.Context(), "[CHẾ ĐỘ: THỦ TỤC] đăng ký khai sinh")
	require.NoError(t, err)
	assert.Equal(t, assistant.OutcomeNoData, ans.Outcome)
	assert.Equal(t, c.Assistant.NoData(), ans.Reply)
}

func TestBuildComponents_NoProvider(t *testing.T) {
	cfg := &config.Config{FeedTTL: time.Minute, FeedFetchTimeout: time.Second}

	_, err := BuildComponents(t.Context(), cfg, logger.NewWithWriter("error", io.Discard), nil)
	assert.Error(t, err)
}

func init() {
	gin.SetMode(gin.TestMode)
}
