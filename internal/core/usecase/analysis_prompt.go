package usecase

import (
	"fmt"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

func buildTextPrompt(doc *domain.Document, content string) string {
	return fmt.Sprintf(`Analyze the following document content. Here is some context:

- Original filename: %s
- File type: %s
- File size: %s

Document content:
---
%s
---

Please provide:
1. A suggested title
2. A short description
3. Relevant tags (up to 5)
4. A brief summary
5. A sensitivity classification (safe, maybe_sensitive, or sensitive)`,
		doc.OriginalName, doc.MimeType, doc.FormattedSize(), content)
}

func buildAttachmentPrompt(doc *domain.Document) string {
	return fmt.Sprintf(`Analyze the attached document. Here is some context:

- Original filename: %s
- File type: %s
- File size: %s

Please provide:
1. A suggested title
2. A short description
3. Relevant tags (up to 5)
4. A brief summary
5. A sensitivity classification (safe, maybe_sensitive, or sensitive)`,
		doc.OriginalName, doc.MimeType, doc.FormattedSize())
}
