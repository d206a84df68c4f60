package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/raymonds/internal/common"
)

const correlationHeader = "X-Correlation-ID"

type middleware func(http.Handler) http.Handler

// statusRecorder remembers what the handler sent so the access log and the
// panic handler can see it.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	started bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.started {
		return
	}
	s.status = code
	s.started = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.started {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// withRecovery turns a handler panic into a 500. Once the response has
// started only the log entry is written.
func withRecovery(logger *common.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				started := false
				if sr, ok := w.(*statusRecorder); ok {
					started = sr.started
				}
				logger.Error().
					Str("panic", fmt.Sprint(rec)).
					Str("path", r.URL.Path).
					Str("correlation_id", common.RequestID(r.Context())).
					Bool("response_started", started).
					Msg("Dashboard handler panicked")
				if !started {
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// withCorrelationID reuses the caller's X-Request-ID or X-Correlation-ID,
// or mints a short one, and threads it through the request context so
// backend calls carry it.
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = r.Header.Get(correlationHeader)
		}
		if id == "" {
			id = uuid.NewString()[:8]
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r.WithContext(common.WithRequestID(r.Context(), id)))
	})
}

// withAccessLog logs each request. Server errors log at error, client
// errors at info, everything else at trace.
func withAccessLog(logger *common.Logger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			event := logger.Trace()
			switch {
			case rec.status >= 500:
				event = logger.Error()
			case rec.status >= 400:
				event = logger.Info()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Str("correlation_id", common.RequestID(r.Context())).
				Msg("Dashboard request")
		})
	}
}

// applyMiddleware wraps handler so the first middleware listed runs first.
func applyMiddleware(handler http.Handler, logger *common.Logger) http.Handler {
	stack := []middleware{
		withCorrelationID,
		withAccessLog(logger),
		withRecovery(logger),
	}
	for i := len(stack) - 1; i >= 0; i-- {
		handler = stack[i](handler)
	}
	return handler
}
