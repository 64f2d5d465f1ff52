package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds the API server. WriteTimeout leaves room for a full tier
// fan-out on identity writes; net/http errors go to logger.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}
	return srv
}
