package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
	"github.com/mkozhevin/docvault/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Classifier turns one document into a structured metadata verdict. The
// bounded retry and circuit breaker live here, behind the port, so the
// orchestrator only sees the final outcome.
type Classifier struct {
	client   *Client
	executor *resilience.Executor
}

func NewClassifier(client *Client, executor *resilience.Executor) *Classifier {
	return &Classifier{client: client, executor: executor}
}

func (c *Classifier) Classify(ctx context.Context, req ports.ClassifyRequest) (domain.AnalysisResult, error) {
	var respText string
	call := func(callCtx context.Context) error {
		var err error
		respText, err = c.client.generate(callCtx, req)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.classify", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.AnalysisResult{}, wrapTemporaryIfNeeded("classify document", err)
	}

	var raw struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		Summary     string   `json:"summary"`
		Sensitivity string   `json:"sensitivity"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &raw); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("parse classification json: %w", err)
	}

	result := domain.AnalysisResult{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Tags:        raw.Tags,
		Summary:     strings.TrimSpace(raw.Summary),
		Sensitivity: domain.NormalizeSensitivity(raw.Sensitivity),
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, req ports.ClassifyRequest) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": buildClassifyPrompt(req),
		"stream": false,
		"format": "json",
	}
	// Only image payloads can ride along as model input. Document
	// attachments are described through the prompt context instead.
	if req.Attachment != nil && req.Attachment.Kind == ports.AttachmentImage {
		reqBody["images"] = []string{base64.StdEncoding.EncodeToString(req.Attachment.Data)}
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
