package middleware

import (
	"net/http"
	"time"

	"github.com/chapel-lang/github-email-notifications/internal/crashreport"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
)

// Middleware represents the middleware dependencies
type Middleware struct {
	log      *logger.Logger
	reporter *crashreport.Reporter
}

// New creates a new middleware instance
func New(log *logger.Logger, reporter *crashreport.Reporter) *Middleware {
	return &Middleware{
		log:      log,
		reporter: reporter,
	}
}

// Logging logs HTTP requests with detailed information
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a custom response writer to capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		m.log.With("method", r.Method).
			With("path", r.URL.Path).
			With("status", rw.statusCode).
			With("duration", duration.String()).
			With("remote_addr", r.RemoteAddr).
			Infof("HTTP request completed")
	})
}

// Recovery handles panics: the panic is reported to the crash
// reporter and the client gets a 500.
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.log.Errorf("Panic in HTTP handler: %v", err)
				m.reporter.Panic(err, r)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Security adds basic security headers
func (m *Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(w, r)
	})
}

// responseWriter is a wrapper for http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
