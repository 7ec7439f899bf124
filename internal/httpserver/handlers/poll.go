package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
)

// Poll triggers an immediate poll cycle
func Poll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.PollTrigger <- struct{}{}:
			d.Logger.Info("manual poll triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("poll triggered\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		default:
			d.Logger.Warn("poll already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("poll already pending, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
		}
	}
}
