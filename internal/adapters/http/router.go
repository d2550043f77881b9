package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/mkozhevin/docvault/internal/core/usecase"
	"github.com/mkozhevin/docvault/internal/observability/metrics"
)

const serviceName = "api"

// actorHeader carries the authenticated user id. Authentication itself is
// terminated upstream; this service trusts the header.
const actorHeader = "X-User-Id"

type Router struct {
	uploadUC    *usecase.UploadDocumentUseCase
	documentsUC *usecase.DocumentsUseCase
	shareUC     *usecase.ShareDocumentsUseCase
	publicUC    *usecase.PublicAccessUseCase

	metrics *metrics.HTTPServerMetrics
	limiter *rate.Limiter
}

func NewRouter(
	uploadUC *usecase.UploadDocumentUseCase,
	documentsUC *usecase.DocumentsUseCase,
	shareUC *usecase.ShareDocumentsUseCase,
	publicUC *usecase.PublicAccessUseCase,
	httpMetrics *metrics.HTTPServerMetrics,
	limiter *rate.Limiter,
) *Router {
	return &Router{
		uploadUC:    uploadUC,
		documentsUC: documentsUC,
		shareUC:     shareUC,
		publicUC:    publicUC,
		metrics:     httpMetrics,
		limiter:     limiter,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireActorMiddleware)

		r.Post("/documents", rt.uploadDocument)
		r.Get("/documents", rt.listDocuments)
		r.Get("/documents/shared", rt.listSharedWithMe)

		r.Route("/documents/{documentID}", func(r chi.Router) {
			r.Get("/", rt.getDocument)
			r.Patch("/", rt.updateDocument)
			r.Delete("/", rt.deleteDocument)
			r.Get("/download", rt.downloadDocument)
			r.Post("/publish", rt.publishDocument)
			r.Post("/unpublish", rt.unpublishDocument)
			r.Post("/reanalyze", rt.reanalyzeDocument)

			r.Get("/shares", rt.listRecipients)
			r.Post("/shares", rt.grantShare)
			r.Patch("/shares/{userID}", rt.updateShare)
			r.Delete("/shares/{userID}", rt.revokeShare)
		})
	})

	r.Get("/p/{token}", rt.streamPublic)
	r.Get("/p/{token}/qr", rt.publicQR)

	var handler http.Handler = r
	handler = rateLimitMiddleware(rt.limiter, handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func actorID(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
