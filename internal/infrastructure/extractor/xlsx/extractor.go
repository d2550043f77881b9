package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

const spreadsheetMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Extractor struct {
	blobs ports.BlobStore
}

func New(blobs ports.BlobStore) *Extractor {
	return &Extractor{blobs: blobs}
}

func (e *Extractor) Supports(mimeType, extension string) bool {
	return mimeType == spreadsheetMime || strings.EqualFold(extension, "xlsx")
}

// Extract flattens every sheet into tab-separated rows, one sheet after
// another with the sheet name as a heading.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.blobs.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	book, err := excelize.OpenReader(reader)
	if err != nil {
		return "", fmt.Errorf("parse spreadsheet: %w", err)
	}
	defer book.Close()

	var sb strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		sb.WriteString(sheet)
		sb.WriteString("\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
