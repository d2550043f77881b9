package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

func TestClassifyParsesVerdict(t *testing.T) {
	var capturedPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		capturedPrompt, _ = payload["prompt"].(string)
		if format, _ := payload["format"].(string); format != "json" {
			t.Fatalf("expected json format, got %q", format)
		}
		_, _ = w.Write([]byte(`{"response":"{\"title\":\"Invoice March\",\"description\":\"An invoice.\",\"tags\":[\"invoice\"],\"summary\":\"Invoice for services.\",\"sensitivity\":\"MAYBE_SENSITIVE\"}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "vision"), nil)
	result, err := classifier.Classify(context.Background(), ports.ClassifyRequest{Prompt: "Analyze invoice.pdf"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Title != "Invoice March" {
		t.Fatalf("title = %q", result.Title)
	}
	if result.Sensitivity != domain.SensitivityMaybeSensitive {
		t.Fatalf("sensitivity = %q", result.Sensitivity)
	}
	if !strings.Contains(capturedPrompt, "Analyze invoice.pdf") {
		t.Fatalf("prompt missing caller context: %s", capturedPrompt)
	}
	if !strings.Contains(capturedPrompt, "sensitivity") {
		t.Fatalf("prompt missing response schema: %s", capturedPrompt)
	}
}

func TestClassifySendsImageAttachment(t *testing.T) {
	var imageCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		images, _ := payload["images"].([]any)
		imageCount = len(images)
		_, _ = w.Write([]byte(`{"response":"{\"sensitivity\":\"safe\"}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "vision"), nil)
	_, err := classifier.Classify(context.Background(), ports.ClassifyRequest{
		Prompt: "Analyze the attached document.",
		Attachment: &ports.Attachment{
			Kind:     ports.AttachmentImage,
			MimeType: "image/png",
			Data:     []byte{1, 2, 3},
		},
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if imageCount != 1 {
		t.Fatalf("expected 1 image payload, got %d", imageCount)
	}
}

func TestClassifyRecoversJSONFromNoisyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"Here you go:\n{\"title\":\"T\",\"sensitivity\":\"safe\"}\nDone."}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "vision"), nil)
	result, err := classifier.Classify(context.Background(), ports.ClassifyRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Title != "T" {
		t.Fatalf("title = %q", result.Title)
	}
}

func TestClassifyIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusNotFound)
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "vision"), nil)
	_, err := classifier.Classify(context.Background(), ports.ClassifyRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestClassifyUnknownSensitivityDefaultsSafe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"{\"sensitivity\":\"very spicy\"}"}`))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "vision"), nil)
	result, err := classifier.Classify(context.Background(), ports.ClassifyRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Sensitivity != domain.SensitivitySafe {
		t.Fatalf("sensitivity = %q, want safe", result.Sensitivity)
	}
}
