// Package genai is a lightweight facade over the Gemini generateContent API
// for image generation and image classification. It hides transport details
// so orchestrators can focus on model fallback and validation policy.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"deckgen/internal/domain"
)

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ImagePayload is the raw binary result of one generation call, before
// validation and normalization.
type ImagePayload struct {
	Data     []byte
	MIMEType string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
	FileData   *geminiFileData   `json:"fileData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri,omitempty"`
}

type geminiGenerationConfig struct {
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

var (
	dataURIPattern  = regexp.MustCompile(`data:(image/[a-z+.-]+);base64,([A-Za-z0-9+/=]+)`)
	imageURLPattern = regexp.MustCompile(`https?://\S+\.(?:png|jpe?g|webp|gif)\b`)
)

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a sensible timeout will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
	}
}

// GenerateImage issues one generation call against the given model and
// returns the first image payload found in the response, whether delivered
// inline, as a data URI, or as a fetchable URL embedded in text.
func (c *Client) GenerateImage(ctx context.Context, model, prompt string) (ImagePayload, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, model, payload, &response); err != nil {
		return ImagePayload{}, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			asset, err := c.decodeImagePart(ctx, part)
			if err != nil || len(asset.Data) == 0 {
				continue
			}
			if asset.MIMEType == "" {
				asset.MIMEType = "image/png"
			}
			return asset, nil
		}
	}
	return ImagePayload{}, domain.ErrNoImagePayload
}

// ClassifyImage sends the image plus an instruction to a text-capable model
// and returns the model's short answer.
func (c *Client) ClassifyImage(ctx context.Context, model, instruction string, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
				{Text: instruction},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{CandidateCount: 1},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, model, payload, &response); err != nil {
		return "", err
	}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("classify image: empty response")
}

func (c *Client) invoke(ctx context.Context, model string, payload any, out any) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &domain.ImageModelError{
			Model:      model,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, 4096))
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return strings.TrimSpace(string(data))
}

// decodeImagePart extracts binary image data from one response part.
func (c *Client) decodeImagePart(ctx context.Context, part geminiPart) (ImagePayload, error) {
	if part.InlineData != nil && part.InlineData.Data != "" {
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return ImagePayload{}, fmt.Errorf("decode inline data: %w", err)
		}
		return ImagePayload{Data: data, MIMEType: part.InlineData.MimeType}, nil
	}

	if part.FileData != nil && part.FileData.FileURI != "" {
		data, mime, err := c.downloadFile(ctx, part.FileData.FileURI)
		if err != nil {
			return ImagePayload{}, err
		}
		return ImagePayload{Data: data, MIMEType: firstNonEmpty(part.FileData.MimeType, mime)}, nil
	}

	if part.Text != "" {
		if m := dataURIPattern.FindStringSubmatch(part.Text); m != nil {
			data, err := base64.StdEncoding.DecodeString(m[2])
			if err != nil {
				return ImagePayload{}, fmt.Errorf("decode data uri: %w", err)
			}
			return ImagePayload{Data: data, MIMEType: m[1]}, nil
		}
		if target := imageURLPattern.FindString(part.Text); target != "" {
			data, mime, err := c.downloadFile(ctx, target)
			if err != nil {
				return ImagePayload{}, err
			}
			return ImagePayload{Data: data, MIMEType: mime}, nil
		}
	}

	return ImagePayload{}, nil
}

func (c *Client) downloadFile(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, "", fmt.Errorf("download file status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
