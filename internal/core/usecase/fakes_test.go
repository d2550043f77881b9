package usecase

import (
	"bytes"
	"context"
	"io"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

type repoFake struct {
	docs      map[string]*domain.Document
	getErr    error
	updateErr error
	createErr error
	deleteErr error
	updated   []*domain.Document
	deleted   []string
	listed    []domain.Document
	listedIDs []string
}

func newRepoFake(docs ...*domain.Document) *repoFake {
	f := &repoFake{docs: map[string]*domain.Document{}}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *repoFake) GetByPublicToken(_ context.Context, token string) (*domain.Document, error) {
	for _, doc := range f.docs {
		if doc.PublicToken == token && doc.Visibility == domain.VisibilityPublic {
			copyDoc := *doc
			return &copyDoc, nil
		}
	}
	return nil, domain.ErrDocumentNotFound
}

func (f *repoFake) Update(_ context.Context, doc *domain.Document) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	copyDoc := *doc
	f.updated = append(f.updated, &copyDoc)
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *repoFake) ListByOwner(_ context.Context, ownerID string, visibility domain.Visibility) ([]domain.Document, error) {
	out := []domain.Document{}
	for _, doc := range f.docs {
		if doc.OwnerID != ownerID {
			continue
		}
		if visibility != "" && doc.Visibility != visibility {
			continue
		}
		out = append(out, *doc)
	}
	f.listed = out
	return out, nil
}

func (f *repoFake) ListByIDs(_ context.Context, ids []string) ([]domain.Document, error) {
	f.listedIDs = ids
	out := []domain.Document{}
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out, nil
}

type shareRepoFake struct {
	grants     map[string]*domain.ShareGrant
	getErr     error
	createErr  error
	deleteErr  error
	created    []*domain.ShareGrant
	updated    []*domain.ShareGrant
	deletedKey []string
	recipients []domain.Recipient
	sharedWith []domain.SharedDocument
}

func newShareRepoFake() *shareRepoFake {
	return &shareRepoFake{grants: map[string]*domain.ShareGrant{}}
}

func shareKey(documentID, userID string) string { return documentID + "/" + userID }

func (f *shareRepoFake) put(grant *domain.ShareGrant) {
	f.grants[shareKey(grant.DocumentID, grant.UserID)] = grant
}

func (f *shareRepoFake) Create(_ context.Context, grant *domain.ShareGrant) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.put(grant)
	f.created = append(f.created, grant)
	return nil
}

func (f *shareRepoFake) Get(_ context.Context, documentID, userID string) (*domain.ShareGrant, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	grant, ok := f.grants[shareKey(documentID, userID)]
	if !ok {
		return nil, domain.ErrGrantNotFound
	}
	copyGrant := *grant
	return &copyGrant, nil
}

func (f *shareRepoFake) Update(_ context.Context, grant *domain.ShareGrant) error {
	if _, ok := f.grants[shareKey(grant.DocumentID, grant.UserID)]; !ok {
		return domain.ErrGrantNotFound
	}
	f.put(grant)
	f.updated = append(f.updated, grant)
	return nil
}

func (f *shareRepoFake) Delete(_ context.Context, documentID, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	key := shareKey(documentID, userID)
	if _, ok := f.grants[key]; !ok {
		return domain.ErrGrantNotFound
	}
	delete(f.grants, key)
	f.deletedKey = append(f.deletedKey, key)
	return nil
}

func (f *shareRepoFake) ListRecipients(context.Context, string) ([]domain.Recipient, error) {
	return f.recipients, nil
}

func (f *shareRepoFake) ListSharedWith(context.Context, string) ([]domain.SharedDocument, error) {
	return f.sharedWith, nil
}

type userDirectoryFake struct {
	users map[string]*domain.User
}

func newUserDirectoryFake(users ...*domain.User) *userDirectoryFake {
	f := &userDirectoryFake{users: map[string]*domain.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *userDirectoryFake) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrRecipientNotFound
	}
	return u, nil
}

func (f *userDirectoryFake) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrRecipientNotFound
}

type blobStoreFake struct {
	blobs    map[string][]byte
	saveErr  error
	openErr  error
	existErr error
	delErr   error
	deleted  []string
}

func newBlobStoreFake() *blobStoreFake {
	return &blobStoreFake{blobs: map[string][]byte{}}
}

func (f *blobStoreFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.blobs[key] = raw
	return nil
}

func (f *blobStoreFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.blobs[key]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *blobStoreFake) Exists(_ context.Context, key string) (bool, error) {
	if f.existErr != nil {
		return false, f.existErr
	}
	_, ok := f.blobs[key]
	return ok, nil
}

func (f *blobStoreFake) Delete(_ context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.blobs, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type queueFake struct {
	publishErr error
	tasks      []ports.AnalysisTask
}

func (f *queueFake) PublishAnalysisRequested(_ context.Context, task ports.AnalysisTask) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *queueFake) SubscribeAnalysisRequested(context.Context, func(context.Context, ports.AnalysisTask) error) error {
	return nil
}

type searchIndexFake struct {
	indexErr  error
	removeErr error
	searchIDs []string
	indexed   []domain.SearchProjection
	removed   []string
	queries   []string
}

func (f *searchIndexFake) Index(_ context.Context, p domain.SearchProjection) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = append(f.indexed, p)
	return nil
}

func (f *searchIndexFake) Remove(_ context.Context, documentID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, documentID)
	return nil
}

func (f *searchIndexFake) Search(_ context.Context, _, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.searchIDs, nil
}

type classifierFake struct {
	result   domain.AnalysisResult
	err      error
	requests []ports.ClassifyRequest
}

func (f *classifierFake) Classify(_ context.Context, req ports.ClassifyRequest) (domain.AnalysisResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return domain.AnalysisResult{}, f.err
	}
	return f.result, nil
}

type extractorFake struct {
	supported bool
	text      string
	err       error
}

func (f *extractorFake) Supports(string, string) bool { return f.supported }

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type qrFake struct {
	png []byte
	err error
	url string
}

func (f *qrFake) RenderPNG(url string, _ int) ([]byte, error) {
	f.url = url
	if f.err != nil {
		return nil, f.err
	}
	return f.png, nil
}
