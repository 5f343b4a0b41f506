package http

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one passed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

type contextKey string

const paramsKey contextKey = "requestParams"

// requestParams are the query flags every ladder endpoint understands.
type requestParams struct {
	// Verbose raises logging to debug while the request runs.
	Verbose bool
	// DryRun keeps notifications and event dispatch from leaving the server.
	DryRun bool
}

func parseRequestParams(r *http.Request) requestParams {
	q := r.URL.Query()
	return requestParams{
		Verbose: q.Get("verbose") == "true",
		DryRun:  q.Get("dry_run") == "true",
	}
}

// statusRecorder remembers the status a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// paramsMiddleware stores the query flags on the context and logs the
// request once it is handled, keyed by its route pattern.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		params := parseRequestParams(r)
		if params.Verbose {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		rec := &statusRecorder{ResponseWriter: w}
		ctx := context.WithValue(r.Context(), paramsKey, params)
		next.ServeHTTP(rec, r.WithContext(ctx))

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		fields := []any{"method", r.Method, "route", route, "status", rec.status, "duration_ms", time.Since(start).Milliseconds()}
		if params.DryRun {
			fields = append(fields, "dry_run", true)
		}
		if rec.status >= http.StatusInternalServerError {
			log.Warn("Handled request", fields...)
			return
		}
		log.Info("Handled request", fields...)
	})
}

func paramsFromContext(r *http.Request) requestParams {
	params, _ := r.Context().Value(paramsKey).(requestParams)
	return params
}

func isDryRunFromContext(r *http.Request) bool {
	return paramsFromContext(r).DryRun
}
