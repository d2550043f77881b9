package bootstrap

import (
	"context"
	"fmt"

	"github.com/mkozhevin/docvault/internal/config"
	"github.com/mkozhevin/docvault/internal/core/usecase"
	"github.com/mkozhevin/docvault/internal/infrastructure/extractor"
	pdfextractor "github.com/mkozhevin/docvault/internal/infrastructure/extractor/pdf"
	"github.com/mkozhevin/docvault/internal/infrastructure/extractor/plaintext"
	"github.com/mkozhevin/docvault/internal/infrastructure/extractor/xlsx"
	"github.com/mkozhevin/docvault/internal/infrastructure/llm/ollama"
	"github.com/mkozhevin/docvault/internal/infrastructure/qr"
	"github.com/mkozhevin/docvault/internal/infrastructure/queue/nats"
	"github.com/mkozhevin/docvault/internal/infrastructure/repository/postgres"
	"github.com/mkozhevin/docvault/internal/infrastructure/resilience"
	"github.com/mkozhevin/docvault/internal/infrastructure/storage/localfs"
)

// App wires all adapters behind their ports and hands ready use cases to
// the binaries. Both cmd/api and cmd/worker construct the same App and use
// the slice of it they need.
type App struct {
	Config config.Config

	Queue *nats.Queue

	UploadUC    *usecase.UploadDocumentUseCase
	DocumentsUC *usecase.DocumentsUseCase
	ShareUC     *usecase.ShareDocumentsUseCase
	PublicUC    *usecase.PublicAccessUseCase
	AnalyzeUC   *usecase.AnalyzeDocumentUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	repo := postgres.NewDocumentRepository(db)
	shares := postgres.NewShareRepository(db)
	users := postgres.NewUserDirectory(db)
	search := postgres.NewSearchIndex(db)

	blobs, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	// The queue publish sits inside the upload request, so it gets the fast
	// retry profile; the classifier runs in the background worker and can
	// afford the long one.
	publishExecutor := resilience.NewExecutor(resilience.SyncConfig())
	classifyExecutor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: publishExecutor,
	})
	if err != nil {
		return nil, fmt.Errorf("init analysis queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaModel)
	classifier := ollama.NewClassifier(ollamaClient, classifyExecutor)

	texts := extractor.NewRegistry(
		plaintext.New(blobs),
		pdfextractor.New(blobs),
		xlsx.New(blobs),
	)

	qrRenderer := qr.New()

	uploadUC := usecase.NewUploadDocumentUseCase(repo, blobs, queue, search, cfg.StorageNamespace)
	documentsUC := usecase.NewDocumentsUseCase(repo, shares, blobs, search, queue)
	shareUC := usecase.NewShareDocumentsUseCase(repo, shares, users)
	publicUC := usecase.NewPublicAccessUseCase(repo, blobs, qrRenderer, cfg.PublicBaseURL)
	analyzeUC := usecase.NewAnalyzeDocumentUseCase(repo, blobs, classifier, texts, search)

	return &App{
		Config: cfg,
		Queue:  queue,

		UploadUC:    uploadUC,
		DocumentsUC: documentsUC,
		ShareUC:     shareUC,
		PublicUC:    publicUC,
		AnalyzeUC:   analyzeUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
