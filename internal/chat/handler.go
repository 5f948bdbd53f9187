// Package chat exposes the assistant over HTTP for the website chat widget.
//
// The endpoint accepts a JSON body {"message": "..."} or, for simple embeds,
// a "q" (or "message") query parameter. JSON callers receive {"reply": "..."};
// query callers receive plain text unless they ask for JSON.
package chat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/xuanlung-gov/tthc-assistant/internal/assistant"
	"github.com/xuanlung-gov/tthc-assistant/internal/ctxutil"
	domerrors "github.com/xuanlung-gov/tthc-assistant/internal/errors"
	"github.com/xuanlung-gov/tthc-assistant/internal/logger"
	"github.com/xuanlung-gov/tthc-assistant/internal/metrics"
	"github.com/xuanlung-gov/tthc-assistant/internal/sentry"
	"github.com/xuanlung-gov/tthc-assistant/internal/stringutil"
)

// Client-facing error texts.
const (
	ErrMsgMethodNotAllowed = "Only POST allowed"
	ErrMsgMissingMessage   = "Missing 'message' field"
	ErrMsgMessageTooLong   = "Message too long"
)

// Answerer is the pipeline behind the endpoint. *assistant.Service satisfies it.
type Answerer interface {
	Answer(ctx context.Context, raw string) (*assistant.Answer, error)
	Busy() string
}

// Request is the JSON body.
type Request struct {
	Message string `json:"message"`
}

// Response is the JSON reply.
type Response struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the JSON body of a 4xx.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	Assistant        Answerer
	Timeout          time.Duration // bounds one request; 0 disables
	MaxMessageLength int           // in runes; 0 disables
	Metrics          *metrics.Metrics
	Logger           *logger.Logger
}

// Handler serves POST /api/chat.
type Handler struct {
	assistant Answerer
	timeout   time.Duration
	maxLen    int
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewHandler creates a chat handler.
func NewHandler(cfg HandlerConfig) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewWithWriter("error", io.Discard)
	}
	return &Handler{
		assistant: cfg.Assistant,
		timeout:   cfg.Timeout,
		maxLen:    cfg.MaxMessageLength,
		metrics:   cfg.Metrics,
		logger:    log.WithModule("chat"),
	}
}

// Register mounts the endpoint on r; middleware runs before POST only.
// Every method other than POST and OPTIONS (answered by the CORS
// middleware) gets 405.
func (h *Handler) Register(r gin.IRoutes, path string, middleware ...gin.HandlerFunc) {
	r.POST(path, append(middleware, h.Handle)...)
	for _, method := range []string{
		http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead,
	} {
		r.Handle(method, path, h.MethodNotAllowed)
	}
}

// MethodNotAllowed answers 405 with the JSON error body.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", "POST, OPTIONS")
	h.metrics.RecordHTTPError("method_not_allowed", "chat")
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: ErrMsgMethodNotAllowed})
}

// Handle is the Gin handler for the chat endpoint.
func (h *Handler) Handle(c *gin.Context) {
	message, fromQuery := h.readMessage(c)
	log := h.logger
	if id, ok := ctxutil.GetRequestID(c.Request.Context()); ok {
		log = log.WithRequestID(id)
	}

	if err := h.validate(message); err != nil {
		var ve *domerrors.ValidationError
		msg := ErrMsgMissingMessage
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		h.metrics.RecordHTTPError("validation", "chat")
		log.WithError(err).DebugContext(c.Request.Context(), "Rejected chat request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	status := http.StatusOK
	ans, err := h.assistant.Answer(ctx, message)
	reply := ""
	if ans != nil {
		reply = ans.Reply
	}
	if err != nil {
		status = http.StatusInternalServerError
		reply = domerrors.GetUserMessage(err, h.assistant.Busy())
		h.metrics.RecordHTTPError("internal", "chat")
		log.WithError(err).ErrorContext(ctx, "Chat request failed")
		sentry.CaptureExceptionWithContext(ctx, err)
	}

	h.respond(c, status, reply, fromQuery)
}

// readMessage prefers the JSON body and falls back to the query string.
func (h *Handler) readMessage(c *gin.Context) (message string, fromQuery bool) {
	var req Request
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.WithError(err).DebugContext(c.Request.Context(), "Unreadable JSON body")
		}
	}
	if !stringutil.IsBlank(req.Message) {
		return strings.TrimSpace(req.Message), false
	}

	for _, key := range []string{"q", "message"} {
		if v := c.Query(key); !stringutil.IsBlank(v) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func (h *Handler) validate(message string) error {
	if message == "" {
		return domerrors.NewValidationError("message", ErrMsgMissingMessage)
	}
	if h.maxLen > 0 && utf8.RuneCountInString(message) > h.maxLen {
		return domerrors.NewValidationError("message", ErrMsgMessageTooLong)
	}
	return nil
}

func (h *Handler) respond(c *gin.Context, status int, reply string, fromQuery bool) {
	if fromQuery && c.NegotiateFormat(gin.MIMEPlain, gin.MIMEJSON) != gin.MIMEJSON {
		c.String(status, "%s", reply)
		return
	}
	c.JSON(status, Response{Reply: reply})
}
