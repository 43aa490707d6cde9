package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
)

const readyCheckTimeout = 2 * time.Second

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz pings every dependency. Any failure answers 503.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Ready:      true,
			Components: make(map[string]componentStatus, len(d.ReadyChecks)),
		}

		for _, c := range d.ReadyChecks {
			ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
			err := c.Ping(ctx)
			cancel()

			if err != nil {
				d.Logger.Warn("readiness check failed",
					logger.String("component", c.Name),
					logger.Error(err))
				resp.Ready = false
				resp.Components[c.Name] = componentStatus{OK: false, Error: "unreachable"}
				continue
			}
			resp.Components[c.Name] = componentStatus{OK: true}
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
