package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type recipientResponse struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CanDownload bool   `json:"can_download"`
}

type sharedDocumentResponse struct {
	Document documentResponse `json:"document"`
	Owner    ownerResponse    `json:"owner"`
}

type ownerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (rt *Router) listRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := rt.shareUC.Recipients(r.Context(), actorID(r), chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]recipientResponse, 0, len(recipients))
	for _, rec := range recipients {
		payload = append(payload, recipientResponse{
			UserID:      rec.User.ID,
			Name:        rec.User.Name,
			Email:       rec.Email,
			CanDownload: rec.CanDownload,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipients": payload})
}

func (rt *Router) grantShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		CanDownload *bool  `json:"can_download"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid json"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "email is required"})
		return
	}
	canDownload := true
	if req.CanDownload != nil {
		canDownload = *req.CanDownload
	}

	grant, err := rt.shareUC.Grant(r.Context(), actorID(r), chi.URLParam(r, "documentID"), req.Email, canDownload)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordShareOperation(serviceName, "grant")
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"document_id":  grant.DocumentID,
		"user_id":      grant.UserID,
		"can_download": grant.CanDownload,
		"created_at":   grant.CreatedAt.Format(time.RFC3339),
	})
}

func (rt *Router) updateShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CanDownload bool `json:"can_download"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid json"})
		return
	}

	err := rt.shareUC.UpdateGrant(r.Context(), actorID(r), chi.URLParam(r, "documentID"), chi.URLParam(r, "userID"), req.CanDownload)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordShareOperation(serviceName, "update")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (rt *Router) revokeShare(w http.ResponseWriter, r *http.Request) {
	err := rt.shareUC.Revoke(r.Context(), actorID(r), chi.URLParam(r, "documentID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordShareOperation(serviceName, "revoke")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) listSharedWithMe(w http.ResponseWriter, r *http.Request) {
	shared, err := rt.shareUC.SharedWith(r.Context(), actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]sharedDocumentResponse, 0, len(shared))
	for i := range shared {
		doc := shared[i].Document
		payload = append(payload, sharedDocumentResponse{
			Document: rt.documentPayload(&doc),
			Owner:    ownerResponse{ID: shared[i].Owner.ID, Name: shared[i].Owner.Name},
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": payload})
}
