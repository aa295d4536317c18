package text

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestGeminiCompleteReturnsFirstText(t *testing.T) {
	var captured *http.Request
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "},{"text":"hello deck"}]}}]}`), nil
	})}

	completer, err := NewGeminiCompleter(GeminiOptions{APIKey: "test-key", Model: "gemini-2.5-flash", HTTPClient: client})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := completer.Complete(context.Background(), CompletionRequest{Prompt: "make slides", Temperature: 0.4, MaxTokens: 128})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello deck" {
		t.Fatalf("completion = %q, want %q", got, "hello deck")
	}

	if captured == nil {
		t.Fatal("no request captured")
	}
	if captured.Header.Get("x-goog-api-key") != "test-key" {
		t.Fatalf("missing api key header")
	}
	if !strings.Contains(captured.URL.Path, "gemini-2.5-flash:generateContent") {
		t.Fatalf("unexpected path: %s", captured.URL.Path)
	}
}

func TestGeminiCompleteStatusError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"quota"}}`), nil
	})}

	completer, err := NewGeminiCompleter(GeminiOptions{APIKey: "k", HTTPClient: client})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = completer.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGeminiCompleteEmptyCandidates(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
	})}

	completer, err := NewGeminiCompleter(GeminiOptions{APIKey: "k", HTTPClient: client})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = completer.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "empty completion") {
		t.Fatalf("expected empty completion error, got %v", err)
	}
}

func TestNewGeminiCompleterRequiresKey(t *testing.T) {
	if _, err := NewGeminiCompleter(GeminiOptions{}); err == nil {
		t.Fatal("expected an error for missing api key")
	}
}

func TestNewOpenAICompleterRequiresKey(t *testing.T) {
	if _, err := NewOpenAICompleter(OpenAIOptions{}); err == nil {
		t.Fatal("expected an error for missing api key")
	}
}

func TestOpenAICompleteAuthHeader(t *testing.T) {
	var captured *http.Request
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`), nil
	})}

	completer, err := NewOpenAICompleter(OpenAIOptions{APIKey: "sk-test", Organization: "org-1", HTTPClient: client})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := completer.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("completion = %q, want %q", got, "ok")
	}
	if captured.Header.Get("Authorization") != "Bearer sk-test" {
		t.Fatalf("missing bearer token")
	}
	if captured.Header.Get("OpenAI-Organization") != "org-1" {
		t.Fatalf("missing organization header")
	}
}
