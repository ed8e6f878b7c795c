package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
)

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.statusCode = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.written += n
	return n, err
}

// * LoggingMiddleware logs one line per request. Swagger asset requests are logged at debug
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rr := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rr, r)

		duration := time.Since(start)

		if strings.Contains(r.URL.Path, "/swagger/") {
			logger.Debug("%s %s %d %dB %s", r.Method, r.RequestURI, rr.statusCode, rr.written, duration)
			return
		}
		logger.Info("%s %s %d %dB %s", r.Method, r.RequestURI, rr.statusCode, rr.written, duration)
	})
}

// * RecoverMiddleware turns a handler panic into a 500 error response
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				errors.WriteHTTPError(w, errors.New(
					errors.RefInternal,
					"Internal server error",
					"",
					fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec),
					errors.LevelFatal,
				))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
