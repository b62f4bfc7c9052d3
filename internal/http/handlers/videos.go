package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"masterpiece/internal/domain"
)

// Video streams a generated video. Range requests are honored so players can
// seek; ?download=1 asks the browser to save it.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, handle, ok := a.Studio.OpenVideo(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "video not found")
		return
	}
	w.Header().Set("Content-Type", handle.MIMEType)
	w.Header().Set("Cache-Control", "private, no-store")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.DownloadFilename))
	}
	modified := handle.CreatedAt
	if modified.IsZero() {
		modified = time.Now()
	}
	http.ServeContent(w, r, domain.DownloadFilename, modified, bytes.NewReader(data))
}
