package handlers

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"alfabeta/internal/metrics"
	"alfabeta/internal/security"

	"go.uber.org/zap"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ParentContextKey ContextKey = "parent"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.TokenManager
	csrf    *security.CSRFGenerator
	limiter *security.RateLimiter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenManager, csrf *security.CSRFGenerator, limiter *security.RateLimiter, logger *zap.Logger, m *metrics.Metrics) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		tokens:  tokens,
		csrf:    csrf,
		limiter: limiter,
		logger:  logger,
		metrics: m,
	}
}

// RequireParent is middleware that requires a valid parent token cookie
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(ParentCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		claims, err := m.tokens.Validate(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, ParentCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "Rejected parent token", err)
			return
		}

		ctx := context.WithValue(r.Context(), ParentContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect requires a CSRF token bound to the parent session on unsafe methods.
// It must run inside RequireParent.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		claims := GetParentFromContext(r.Context())
		if claims == nil || !m.csrf.ValidateToken(claims.ID, r.Header.Get(CSRFHeaderName)) {
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the limiter's budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the websocket upgrader
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Logging middleware logs HTTP requests and counts them by status
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.metrics.Request(r.Method, strconv.Itoa(rec.status))
		m.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// GetParentFromContext retrieves the parent claims from the request context
func GetParentFromContext(ctx context.Context) *security.ParentClaims {
	claims, ok := ctx.Value(ParentContextKey).(*security.ParentClaims)
	if !ok {
		return nil
	}
	return claims
}
