package ollama

import "github.com/mkozhevin/docvault/internal/core/ports"

const systemInstructions = `You are a document analysis assistant. You answer with a single JSON object and nothing else. The object has exactly these keys:
{
  "title": "short human-friendly title for the document",
  "description": "one or two sentence description",
  "tags": ["up to five lowercase keyword tags"],
  "summary": "brief summary of the document contents",
  "sensitivity": "safe | maybe_sensitive | sensitive"
}
Classify as "sensitive" when the document contains personal identifiers, credentials, financial or medical records. Use "maybe_sensitive" when unsure. Otherwise use "safe".`

func buildClassifyPrompt(req ports.ClassifyRequest) string {
	return systemInstructions + "\n\n" + req.Prompt
}
