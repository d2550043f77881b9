package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (rt *Router) streamPublic(w http.ResponseWriter, r *http.Request) {
	stream, err := rt.publicUC.Stream(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer stream.Content.Close()

	if rt.metrics != nil {
		rt.metrics.RecordPublicView(serviceName, "view")
	}
	serveStream(w, stream)
}

func (rt *Router) publicQR(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid size"})
			return
		}
		size = parsed
	}

	png, err := rt.publicUC.QRCode(r.Context(), chi.URLParam(r, "token"), size)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordPublicView(serviceName, "qr")
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}
