package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/primeo/api/internal/httpx"
	"github.com/primeo/api/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs method, path, status and duration for every request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Get().WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// Recover turns panics into a 500 envelope instead of killing the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Get().WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": rec,
				}).Error("panic recovered")
				httpx.Error(w, http.StatusInternalServerError, "Erreur interne du serveur", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
