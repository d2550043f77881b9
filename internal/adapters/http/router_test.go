package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
	"github.com/mkozhevin/docvault/internal/core/usecase"
)

type repoFake struct {
	docs map[string]*domain.Document
}

func newRepoFake() *repoFake {
	return &repoFake{docs: make(map[string]*domain.Document)}
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	clone := *doc
	f.docs[doc.ID] = &clone
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	clone := *doc
	return &clone, nil
}

func (f *repoFake) GetByPublicToken(_ context.Context, token string) (*domain.Document, error) {
	for _, doc := range f.docs {
		if doc.PublicToken == token && doc.Visibility == domain.VisibilityPublic {
			clone := *doc
			return &clone, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (f *repoFake) Update(_ context.Context, doc *domain.Document) error {
	clone := *doc
	f.docs[doc.ID] = &clone
	return nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *repoFake) ListByOwner(_ context.Context, ownerID string, visibility domain.Visibility) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range f.docs {
		if doc.OwnerID != ownerID {
			continue
		}
		if visibility != "" && doc.Visibility != visibility {
			continue
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (f *repoFake) ListByIDs(_ context.Context, ids []string) ([]domain.Document, error) {
	var out []domain.Document
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out, nil
}

type shareRepoFake struct {
	grants map[string]*domain.ShareGrant
}

func newShareRepoFake() *shareRepoFake {
	return &shareRepoFake{grants: make(map[string]*domain.ShareGrant)}
}

func shareKey(documentID, userID string) string { return documentID + "/" + userID }

func (f *shareRepoFake) Create(_ context.Context, grant *domain.ShareGrant) error {
	clone := *grant
	f.grants[shareKey(grant.DocumentID, grant.UserID)] = &clone
	return nil
}

func (f *shareRepoFake) Get(_ context.Context, documentID, userID string) (*domain.ShareGrant, error) {
	grant, ok := f.grants[shareKey(documentID, userID)]
	if !ok {
		return nil, domain.ErrGrantNotFound
	}
	clone := *grant
	return &clone, nil
}

func (f *shareRepoFake) Update(_ context.Context, grant *domain.ShareGrant) error {
	clone := *grant
	f.grants[shareKey(grant.DocumentID, grant.UserID)] = &clone
	return nil
}

func (f *shareRepoFake) Delete(_ context.Context, documentID, userID string) error {
	key := shareKey(documentID, userID)
	if _, ok := f.grants[key]; !ok {
		return domain.ErrGrantNotFound
	}
	delete(f.grants, key)
	return nil
}

func (f *shareRepoFake) ListRecipients(_ context.Context, documentID string) ([]domain.Recipient, error) {
	var out []domain.Recipient
	for _, grant := range f.grants {
		if grant.DocumentID == documentID {
			out = append(out, domain.Recipient{
				User:        domain.UserRef{ID: grant.UserID},
				CanDownload: grant.CanDownload,
			})
		}
	}
	return out, nil
}

func (f *shareRepoFake) ListSharedWith(_ context.Context, userID string) ([]domain.SharedDocument, error) {
	return nil, nil
}

type userDirFake struct {
	users []domain.User
}

func (f *userDirFake) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, domain.ErrRecipientNotFound
}

func (f *userDirFake) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, domain.ErrRecipientNotFound
}

type blobFake struct {
	blobs map[string][]byte
}

func newBlobFake() *blobFake {
	return &blobFake{blobs: make(map[string][]byte)}
}

func (f *blobFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.blobs[key] = raw
	return nil
}

func (f *blobFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.blobs[key]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *blobFake) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.blobs[key]
	return ok, nil
}

func (f *blobFake) Delete(_ context.Context, key string) error {
	delete(f.blobs, key)
	return nil
}

type queueFake struct {
	tasks []ports.AnalysisTask
}

func (f *queueFake) PublishAnalysisRequested(_ context.Context, task ports.AnalysisTask) error {
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *queueFake) SubscribeAnalysisRequested(context.Context, func(context.Context, ports.AnalysisTask) error) error {
	return nil
}

type searchFake struct{}

func (searchFake) Index(context.Context, domain.SearchProjection) error { return nil }
func (searchFake) Remove(context.Context, string) error                 { return nil }
func (searchFake) Search(context.Context, string, string) ([]string, error) {
	return nil, nil
}

type qrFake struct{}

func (qrFake) RenderPNG(string, int) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

type testEnv struct {
	repo    *repoFake
	blobs   *blobFake
	queue   *queueFake
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newRepoFake()
	blobs := newBlobFake()
	queue := &queueFake{}
	shares := newShareRepoFake()
	users := &userDirFake{users: []domain.User{
		{ID: "user-1", Name: "Owner", Email: "owner@example.com"},
		{ID: "user-2", Name: "Friend", Email: "friend@example.com"},
	}}

	uploadUC := usecase.NewUploadDocumentUseCase(repo, blobs, queue, searchFake{}, "documents")
	documentsUC := usecase.NewDocumentsUseCase(repo, shares, blobs, searchFake{}, queue)
	shareUC := usecase.NewShareDocumentsUseCase(repo, shares, users)
	publicUC := usecase.NewPublicAccessUseCase(repo, blobs, qrFake{}, "http://localhost:8080")

	router := NewRouter(uploadUC, documentsUC, shareUC, publicUC, nil, nil)
	return &testEnv{repo: repo, blobs: blobs, queue: queue, handler: router.Handler()}
}

func (env *testEnv) seedDocument(t *testing.T, id, ownerID string, content string) *domain.Document {
	t.Helper()
	doc := domain.NewDocument(id, ownerID, "report.txt", "text/plain", int64(len(content)), "local", "documents/"+ownerID+"/"+id+".txt")
	if err := env.repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
	env.blobs.blobs[doc.StoragePath] = []byte(content)
	return doc
}

func (env *testEnv) do(t *testing.T, method, target, actor string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id header")
	}
}

func TestUploadDocument(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("some notes"))
	_ = writer.WriteField("title", "My Notes")
	_ = writer.Close()

	rec := env.do(t, http.MethodPost, "/v1/documents", "user-1", &buf, writer.FormDataContentType())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload documentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Title != "My Notes" {
		t.Fatalf("title = %q", payload.Title)
	}
	if payload.Visibility != "private" || payload.AIAnalyzed {
		t.Fatalf("fresh document must be private and unanalyzed: %+v", payload)
	}
	if len(env.queue.tasks) != 1 {
		t.Fatalf("expected one queued analysis task, got %d", len(env.queue.tasks))
	}
}

func TestUploadRequiresFilePart(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", "No file here")
	_ = writer.Close()

	rec := env.do(t, http.MethodPost, "/v1/documents", "user-1", &buf, writer.FormDataContentType())
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUploadRequiresActor(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "notes.txt")
	_, _ = part.Write([]byte("x"))
	_ = writer.Close()

	rec := env.do(t, http.MethodPost, "/v1/documents", "", &buf, writer.FormDataContentType())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnonymousRequestsRejectedOnAuthenticatedSurface(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "hello")

	targets := []struct {
		method, path string
	}{
		{http.MethodGet, "/v1/documents"},
		{http.MethodGet, "/v1/documents/shared"},
		{http.MethodGet, "/v1/documents/doc-1"},
		{http.MethodDelete, "/v1/documents/doc-1"},
		{http.MethodPost, "/v1/documents/doc-1/publish"},
	}
	for _, target := range targets {
		rec := env.do(t, target.method, target.path, "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without user id: status = %d, want 401", target.method, target.path, rec.Code)
		}
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/v1/documents/missing", "user-1", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetDocumentForbiddenForStranger(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "hello")

	rec := env.do(t, http.MethodGet, "/v1/documents/doc-1", "user-2", nil, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUpdateDocumentMetadata(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "hello")

	body := strings.NewReader(`{"title":"Quarterly Report"}`)
	rec := env.do(t, http.MethodPatch, "/v1/documents/doc-1", "user-1", body, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload documentResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload.Title != "Quarterly Report" {
		t.Fatalf("title = %q", payload.Title)
	}
}

func TestPublishThenStreamPublic(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "public content")

	rec := env.do(t, http.MethodPost, "/v1/documents/doc-1/publish", "user-1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload documentResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload.Visibility != "public" || payload.PublicURL == "" {
		t.Fatalf("expected public document with url: %+v", payload)
	}

	token := payload.PublicURL[strings.LastIndex(payload.PublicURL, "/")+1:]
	rec = env.do(t, http.MethodGet, "/p/"+token, "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("public stream status = %d", rec.Code)
	}
	if rec.Body.String() != "public content" {
		t.Fatalf("public stream body = %q", rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/p/"+token+"/qr", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("qr status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("qr content type = %q", ct)
	}
}

func TestStreamPublicUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/p/"+strings.Repeat("x", 64), "", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPublishSensitiveDocumentRefused(t *testing.T) {
	env := newTestEnv(t)
	doc := env.seedDocument(t, "doc-1", "user-1", "secret")
	doc.Sensitivity = domain.SensitivitySensitive
	doc.AIAnalyzed = true
	_ = env.repo.Update(context.Background(), doc)

	rec := env.do(t, http.MethodPost, "/v1/documents/doc-1/publish", "user-1", nil, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "hello")

	rec := env.do(t, http.MethodDelete, "/v1/documents/doc-1", "user-1", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec = env.do(t, http.MethodGet, "/v1/documents/doc-1", "user-1", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("document still reachable after delete: %d", rec.Code)
	}
}

func TestGrantShare(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "hello")

	body := strings.NewReader(`{"email":"friend@example.com"}`)
	rec := env.do(t, http.MethodPost, "/v1/documents/doc-1/shares", "user-1", body, "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body = strings.NewReader(`{"email":"friend@example.com"}`)
	rec = env.do(t, http.MethodPost, "/v1/documents/doc-1/shares", "user-1", body, "application/json")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate grant status = %d", rec.Code)
	}
}

func TestGrantShareRequiresEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "hello")

	rec := env.do(t, http.MethodPost, "/v1/documents/doc-1/shares", "user-1", strings.NewReader(`{}`), "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDownloadDocument(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocument(t, "doc-1", "user-1", "file body")

	rec := env.do(t, http.MethodGet, "/v1/documents/doc-1/download", "user-1", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "file body" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if disp := rec.Header().Get("Content-Disposition"); !strings.Contains(disp, "report.txt") {
		t.Fatalf("disposition = %q", disp)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	repo := newRepoFake()
	blobs := newBlobFake()
	shares := newShareRepoFake()
	users := &userDirFake{}
	queue := &queueFake{}

	uploadUC := usecase.NewUploadDocumentUseCase(repo, blobs, queue, searchFake{}, "documents")
	documentsUC := usecase.NewDocumentsUseCase(repo, shares, blobs, searchFake{}, queue)
	shareUC := usecase.NewShareDocumentsUseCase(repo, shares, users)
	publicUC := usecase.NewPublicAccessUseCase(repo, blobs, qrFake{}, "http://localhost:8080")

	limiter := rate.NewLimiter(rate.Every(time.Hour), 2)
	handler := NewRouter(uploadUC, documentsUC, shareUC, publicUC, nil, limiter).Handler()

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %d", rec.Code)
	}
}

func TestRequestIDIsEchoedBack(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-abc" {
		t.Fatalf("request id = %q", got)
	}
}
