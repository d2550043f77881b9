package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
	"github.com/mkozhevin/docvault/internal/core/usecase"
)

type documentResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Size         string    `json:"size"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags"`
	Summary      string    `json:"summary,omitempty"`
	Sensitivity  string    `json:"sensitivity,omitempty"`
	AIAnalyzed   bool      `json:"ai_analyzed"`
	Visibility   string    `json:"visibility"`
	PublicURL    string    `json:"public_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (rt *Router) documentPayload(doc *domain.Document) documentResponse {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	return documentResponse{
		ID:           doc.ID,
		OriginalName: doc.OriginalName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		Size:         doc.FormattedSize(),
		Title:        doc.Title,
		Description:  doc.Description,
		Tags:         tags,
		Summary:      doc.Summary,
		Sensitivity:  string(doc.Sensitivity),
		AIAnalyzed:   doc.AIAnalyzed,
		Visibility:   string(doc.Visibility),
		PublicURL:    rt.publicUC.PublicURL(doc),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.uploadUC.Upload(r.Context(), actorID(r), ports.UploadInput{
		Filename:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Body:        file,
	})
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, fileHeader.Size, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, rt.documentPayload(doc))
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	visibility := domain.Visibility(r.URL.Query().Get("visibility"))
	if visibility != "" && visibility != domain.VisibilityPrivate && visibility != domain.VisibilityPublic {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid visibility filter"})
		return
	}

	docs, err := rt.documentsUC.List(r.Context(), actorID(r), visibility, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]documentResponse, 0, len(docs))
	for i := range docs {
		payload = append(payload, rt.documentPayload(&docs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": payload})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documentsUC.Get(r.Context(), actorID(r), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.documentPayload(doc))
}

func (rt *Router) updateDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Tags        *[]string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.documentsUC.UpdateMetadata(r.Context(), actorID(r), chi.URLParam(r, "documentID"), usecase.MetadataUpdate{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.documentPayload(doc))
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.documentsUC.Delete(r.Context(), actorID(r), chi.URLParam(r, "documentID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request) {
	stream, err := rt.documentsUC.Download(r.Context(), actorID(r), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer stream.Content.Close()

	serveStream(w, stream)
}

func (rt *Router) publishDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documentsUC.Publish(r.Context(), actorID(r), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordVisibilityChange(serviceName, "publish")
	}
	writeJSON(w, http.StatusOK, rt.documentPayload(doc))
}

func (rt *Router) unpublishDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.documentsUC.Unpublish(r.Context(), actorID(r), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordVisibilityChange(serviceName, "unpublish")
	}
	writeJSON(w, http.StatusOK, rt.documentPayload(doc))
}

func (rt *Router) reanalyzeDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.documentsUC.Reanalyze(r.Context(), actorID(r), chi.URLParam(r, "documentID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "analysis requested"})
}

func serveStream(w http.ResponseWriter, stream *usecase.DownloadStream) {
	w.Header().Set("Content-Type", stream.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stream.Filename))
	if stream.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(stream.SizeBytes, 10))
	}
	_, _ = io.Copy(w, stream.Content)
}
