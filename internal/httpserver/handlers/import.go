package handlers

import (
	"net/http"

	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/httpserver/deps"
	"github.com/Ramakrishna365/Personal-Notes-and-Bookmanager/internal/logger"
)

// ImportBookmarks triggers a manual run of the bookmark importer.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ImportTrigger == nil {
			writeError(w, http.StatusNotFound, "Bookmark import is not configured")
			return
		}

		select {
		case d.ImportTrigger <- struct{}{}:
			d.Logger.Info("manual bookmark import triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, messageResponse{Message: "Bookmark import triggered"})
		default:
			d.Logger.Warn("bookmark import already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "Bookmark import already in progress, please wait")
		}
	}
}
