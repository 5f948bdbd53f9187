// Package config provides centralized timeout constants for the application.
//
// A chat request performs at most two outbound calls: one feed fetch
// (spreadsheet CSV export) and one generation call. Each has its own bound,
// and the whole request is bounded by ChatProcessing.
package config

import "time"

// HTTP server timeouts
const (
	// ChatProcessing bounds a single chat request end to end.
	// Must exceed FeedFetch + LLMGeneration.
	ChatProcessing = 45 * time.Second

	// HTTPRead is the server read timeout. Chat payloads are small.
	HTTPRead = 10 * time.Second

	// HTTPWrite accommodates ChatProcessing plus serialization.
	HTTPWrite = 50 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second

	// GracefulShutdown is the default time allowed for in-flight requests.
	GracefulShutdown = 30 * time.Second
)

// Feed timeouts
const (
	// FeedFetch bounds one CSV download. Published spreadsheets usually
	// answer within a second or two but can stall on cold exports.
	FeedFetch = 10 * time.Second

	// FeedCacheTTL is how long a downloaded feed is served from memory.
	FeedCacheTTL = 5 * time.Minute
)

// LLM timeouts
const (
	// LLMGeneration bounds one generation call, fallbacks included.
	LLMGeneration = 30 * time.Second
)

// Background task timeouts
const (
	// WarmupReady is how long /readyz waits for the initial feed preload
	// before reporting ready anyway.
	WarmupReady = 30 * time.Second

	// RateLimiterCleanup is how often idle per-client limiters are dropped.
	RateLimiterCleanup = 5 * time.Minute
)
