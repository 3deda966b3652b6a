package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

func NewRouter(api *APIHandler, scraping *ScrapingHandler, log *logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(log))
	api.RegisterRoutes(r)
	if scraping != nil {
		scraping.RegisterRoutes(r)
	}
	// mux skips middleware when no route matches, so these log on their own.
	logged := requestLogger(log)
	r.NotFoundHandler = logged(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}))
	r.MethodNotAllowedHandler = logged(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
