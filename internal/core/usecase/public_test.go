package usecase

import (
	"context"
	"io"
	"testing"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

func publicFixture(t *testing.T) (*repoFake, *blobStoreFake, *qrFake, *PublicAccessUseCase, *domain.Document) {
	t.Helper()
	doc := domain.NewDocument("doc-1", "owner", "a.txt", "text/plain", 5, "local", "p")
	if err := doc.Publish(); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	repo := newRepoFake(doc)
	blobs := newBlobStoreFake()
	blobs.blobs["p"] = []byte("hello")
	qr := &qrFake{png: []byte{0x89, 'P', 'N', 'G'}}
	uc := NewPublicAccessUseCase(repo, blobs, qr, "https://docs.example.com/")
	return repo, blobs, qr, uc, doc
}

func TestPublicStreamByToken(t *testing.T) {
	_, _, _, uc, doc := publicFixture(t)

	stream, err := uc.Stream(context.Background(), doc.PublicToken)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer stream.Content.Close()

	raw, _ := io.ReadAll(stream.Content)
	if string(raw) != "hello" {
		t.Fatalf("stream content = %q", raw)
	}
	if stream.Filename != "a.txt" {
		t.Fatalf("stream filename = %q", stream.Filename)
	}
}

func TestPublicStreamUnknownToken(t *testing.T) {
	_, _, _, uc, _ := publicFixture(t)

	if _, err := uc.Stream(context.Background(), "nope"); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.Stream(context.Background(), ""); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("empty token: expected not found, got %v", err)
	}
}

func TestPublicStreamAfterUnpublish(t *testing.T) {
	repo, _, _, uc, doc := publicFixture(t)
	token := doc.PublicToken
	repo.docs["doc-1"].Unpublish()

	if _, err := uc.Stream(context.Background(), token); !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("unpublished token must 404, got %v", err)
	}
}

func TestPublicQRCodeEncodesCanonicalURL(t *testing.T) {
	_, _, qr, uc, doc := publicFixture(t)

	png, err := uc.QRCode(context.Background(), doc.PublicToken, 256)
	if err != nil {
		t.Fatalf("QRCode() error = %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty png")
	}
	want := "https://docs.example.com/p/" + doc.PublicToken
	if qr.url != want {
		t.Fatalf("qr url = %q, want %q", qr.url, want)
	}
}
