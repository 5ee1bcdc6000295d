package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/isdelr/expense-tracker-be/internal/api/respond"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// requestLogger attaches logger to every request and writes one access line
// per response.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	})
	return func(next http.Handler) http.Handler {
		withRequestID := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := middleware.GetReqID(r.Context()); id != "" {
				l := zerolog.Ctx(r.Context())
				l.UpdateContext(func(c zerolog.Context) zerolog.Context {
					return c.Str("request_id", id)
				})
			}
			next.ServeHTTP(w, r)
		})
		return hlog.NewHandler(logger)(access(withRequestID))
	}
}

type panicResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// recoverer turns a panic into a 500 JSON response. The stack trace is only
// included in the body when exposeStack is set.
func recoverer(exposeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := debug.Stack()
				hlog.FromRequest(r).Error().
					Interface("panic", rec).
					Bytes("stack", stack).
					Msg("Recovered from panic")

				body := panicResponse{Message: "Internal Server Error"}
				if exposeStack {
					body.Stack = string(stack)
				}
				respond.JSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// securityHeaders sets the baseline hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	h := next
	for _, header := range [][2]string{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "SAMEORIGIN"},
		{"Referrer-Policy", "no-referrer"},
		{"Cross-Origin-Opener-Policy", "same-origin"},
		{"X-DNS-Prefetch-Control", "off"},
	} {
		h = middleware.SetHeader(header[0], header[1])(h)
	}
	return h
}

type notFoundResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

func routeNotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, notFoundResponse{Message: "Route not found", Path: r.URL.RequestURI()})
}
