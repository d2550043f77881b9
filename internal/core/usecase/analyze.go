package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

// textBudgetChars bounds how much extracted content is embedded into the
// classification prompt.
const textBudgetChars = 10000

const truncationMarker = "\n\n[Content truncated...]"

// AnalyzeDocumentUseCase orchestrates one background analysis pass: pick an
// extraction strategy, obtain a classification, merge it into the document.
// It is stateless per attempt and idempotent-safe: re-running it never
// clobbers non-empty user fields unless forced. Bounded retry around the
// classifier lives in the classifier adapter; this layer only decides when
// a failure becomes terminal.
type AnalyzeDocumentUseCase struct {
	repo       ports.DocumentRepository
	blobs      ports.BlobStore
	classifier ports.DocumentClassifier
	extractor  ports.TextExtractor
	search     ports.SearchIndex
}

func NewAnalyzeDocumentUseCase(
	repo ports.DocumentRepository,
	blobs ports.BlobStore,
	classifier ports.DocumentClassifier,
	extractor ports.TextExtractor,
	search ports.SearchIndex,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		repo:       repo,
		blobs:      blobs,
		classifier: classifier,
		extractor:  extractor,
		search:     search,
	}
}

// AnalyzeByID runs a full analysis attempt for one document. Classification
// failures are absorbed here: after the retry budget is exhausted the
// document is marked analyzed-but-unclassified and nil is returned. A
// non-nil error only signals that state could not be persisted at all.
func (uc *AnalyzeDocumentUseCase) AnalyzeByID(ctx context.Context, documentID string, force bool) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc.AIAnalyzed && !force {
		slog.Info("analysis_skipped", "document_id", doc.ID, "reason", "already analyzed")
		return nil
	}

	result, err := uc.classify(ctx, doc)
	if err != nil {
		slog.Warn("analysis_failed", "document_id", doc.ID, "error", err)
		return uc.markFailed(ctx, doc.ID)
	}

	// An edit or a competing attempt may have landed while the classifier
	// was running; reload and re-check before writing.
	fresh, err := uc.repo.GetByID(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("reload document: %w", err)
	}
	if fresh.AIAnalyzed && !force {
		slog.Info("analysis_discarded", "document_id", doc.ID, "reason", "stale attempt")
		return nil
	}

	wasPublic := fresh.IsPublic()
	fresh.ApplyAnalysis(result.Normalized(), force)
	if err := uc.repo.Update(ctx, fresh); err != nil {
		return fmt.Errorf("apply analysis: %w", err)
	}

	if err := uc.search.Index(ctx, fresh.SearchProjection()); err != nil {
		slog.Warn("index_analysis_failed", "document_id", fresh.ID, "error", err)
	}

	slog.Info("analysis_completed",
		"document_id", fresh.ID,
		"sensitivity", string(fresh.Sensitivity),
		"forced_private", wasPublic && fresh.IsPrivate(),
	)
	return nil
}

// classify picks the extraction strategy and invokes the classifier. The
// metadata fallback path is deterministic and never touches the classifier.
func (uc *AnalyzeDocumentUseCase) classify(ctx context.Context, doc *domain.Document) (domain.AnalysisResult, error) {
	req, ok := uc.buildRequest(ctx, doc)
	if !ok {
		return fallbackResult(doc), nil
	}
	return uc.classifier.Classify(ctx, req)
}

// buildRequest returns the classifier request, or ok=false when only the
// deterministic metadata fallback applies.
func (uc *AnalyzeDocumentUseCase) buildRequest(ctx context.Context, doc *domain.Document) (ports.ClassifyRequest, bool) {
	if uc.extractor.Supports(doc.MimeType, doc.Extension()) {
		text, err := uc.extractor.Extract(ctx, doc)
		if err != nil {
			slog.Warn("text_extraction_failed", "document_id", doc.ID, "error", err)
			return ports.ClassifyRequest{}, false
		}
		if strings.TrimSpace(text) == "" {
			return ports.ClassifyRequest{}, false
		}
		return ports.ClassifyRequest{Prompt: buildTextPrompt(doc, truncate(text))}, true
	}

	// Only images carry their bytes to the model; any other binary is
	// described through the prompt, so its blob is never loaded into memory.
	if strings.HasPrefix(doc.MimeType, "image/") {
		reader, err := uc.blobs.Open(ctx, doc.StoragePath)
		if err != nil {
			slog.Warn("blob_unreadable", "document_id", doc.ID, "error", err)
			return ports.ClassifyRequest{}, false
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil || len(data) == 0 {
			return ports.ClassifyRequest{}, false
		}
		return ports.ClassifyRequest{
			Prompt: buildAttachmentPrompt(doc),
			Attachment: &ports.Attachment{
				Kind:     ports.AttachmentImage,
				MimeType: doc.MimeType,
				Data:     data,
			},
		}, true
	}

	exists, err := uc.blobs.Exists(ctx, doc.StoragePath)
	if err != nil || !exists {
		slog.Warn("blob_unreadable", "document_id", doc.ID, "error", err)
		return ports.ClassifyRequest{}, false
	}
	if doc.SizeBytes == 0 {
		return ports.ClassifyRequest{}, false
	}
	return ports.ClassifyRequest{
		Prompt: buildAttachmentPrompt(doc),
		Attachment: &ports.Attachment{
			Kind:     ports.AttachmentDocument,
			MimeType: doc.MimeType,
		},
	}, true
}

func (uc *AnalyzeDocumentUseCase) markFailed(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document for terminal failure: %w", err)
	}
	doc.MarkAnalysisFailed()
	if err := uc.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("mark analysis failed: %w", err)
	}
	return nil
}

// fallbackResult synthesizes a verdict from filename, extension and mime
// type alone. Always safe, always succeeds.
func fallbackResult(doc *domain.Document) domain.AnalysisResult {
	ext := doc.Extension()
	base := strings.TrimSuffix(doc.OriginalName, "."+ext)

	result := domain.AnalysisResult{
		Title:       humanizeFilename(base),
		Description: fmt.Sprintf("A %s document.", ext),
		Tags:        []string{ext},
		Summary:     fmt.Sprintf("This is a %s file named %s.", doc.MimeType, doc.OriginalName),
		Sensitivity: domain.SensitivitySafe,
	}
	if doc.Title != "" {
		result.Title = doc.Title
	}
	if doc.Description != "" {
		result.Description = doc.Description
	}
	if ext == "" {
		result.Description = "An uploaded document."
		result.Tags = nil
	}
	return result
}

func humanizeFilename(base string) string {
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	words := strings.Fields(base)
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + word[size:]
	}
	return strings.Join(words, " ")
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= textBudgetChars {
		return text
	}
	return string(runes[:textBudgetChars]) + truncationMarker
}
