package imagegen

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"deckgen/internal/domain"
	"deckgen/internal/providers/genai"
)

type generateCall struct {
	model string
}

type fakeGenerator struct {
	calls   []generateCall
	perCall []func() (genai.ImagePayload, error)
}

func (f *fakeGenerator) GenerateImage(_ context.Context, model, _ string) (genai.ImagePayload, error) {
	f.calls = append(f.calls, generateCall{model: model})
	i := len(f.calls) - 1
	if i < len(f.perCall) {
		return f.perCall[i]()
	}
	return genai.ImagePayload{Data: testPNG(), MIMEType: "image/png"}, nil
}

type fakeValidator struct {
	verdicts []Verdict
	calls    int
}

func (f *fakeValidator) Validate(_ context.Context, _ domain.ImageCandidate) Verdict {
	i := f.calls
	f.calls++
	if i < len(f.verdicts) {
		return f.verdicts[i]
	}
	return VerdictClear
}

type fakeSink struct {
	stored  []domain.GeneratedImage
	deleted []string
}

func (f *fakeSink) StoreForSlide(_ context.Context, presentationID string, img domain.GeneratedImage) (domain.ImageRecord, error) {
	f.stored = append(f.stored, img)
	return domain.ImageRecord{
		ID:             "rec",
		PresentationID: presentationID,
		SlideIndex:     img.SlideIndex,
		URL:            "http://example.test/img",
	}, nil
}

func (f *fakeSink) DeleteForPresentation(_ context.Context, presentationID string) error {
	f.deleted = append(f.deleted, presentationID)
	return nil
}

func testPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func newTestImageOrchestrator(gen *fakeGenerator, val *fakeValidator, sink *fakeSink, models []string) *Orchestrator {
	return NewOrchestrator(Options{
		Generator: gen,
		Validator: val,
		Store:     sink,
		Models:    models,
		Policy:    domain.RetryPolicy{MaxAttempts: 3, Delay: 0},
		Logger:    zerolog.Nop(),
	})
}

func slides(titles ...string) []domain.Slide {
	out := make([]domain.Slide, len(titles))
	for i, title := range titles {
		out[i] = domain.Slide{Index: i + 1, Title: title, Bullets: []string{title + "."}}
	}
	return out
}

func TestGenerateForPresentationSuccess(t *testing.T) {
	gen := &fakeGenerator{}
	sink := &fakeSink{}
	o := newTestImageOrchestrator(gen, &fakeValidator{}, sink, []string{"model-a"})

	result, err := o.GenerateForPresentation(context.Background(), "pres-1", slides("One", "Two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %#v", result)
	}
	if len(sink.deleted) != 1 || sink.deleted[0] != "pres-1" {
		t.Fatalf("prior images not cleared: %#v", sink.deleted)
	}
	if len(sink.stored) != 2 {
		t.Fatalf("expected 2 stored images, got %d", len(sink.stored))
	}
	for _, img := range sink.stored {
		if img.MIMEType != "image/jpeg" {
			t.Fatalf("stored image not normalized: %q", img.MIMEType)
		}
	}
}

func TestGenerateForPresentationPartialFailure(t *testing.T) {
	gen := &fakeGenerator{}
	// Slide 1 passes, slide 2 burns all three validation attempts, slide 3
	// passes again.
	val := &fakeValidator{verdicts: []Verdict{
		VerdictClear,
		VerdictTextDetected, VerdictTextDetected, VerdictTextDetected,
		VerdictClear,
	}}
	sink := &fakeSink{}
	o := newTestImageOrchestrator(gen, val, sink, []string{"model-a"})

	result, err := o.GenerateForPresentation(context.Background(), "pres-1", slides("One", "Two", "Three"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 2 {
		t.Fatalf("expected 2 accepted, got %d", len(result.Accepted))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 slide error, got %#v", result.Errors)
	}
	if result.Errors[0].SlideIndex != 2 {
		t.Fatalf("error slide index = %d, want 2", result.Errors[0].SlideIndex)
	}
	if !strings.Contains(result.Errors[0].Message, "3 attempts") {
		t.Fatalf("error message = %q", result.Errors[0].Message)
	}
}

func TestGenerateForSlideModelFallback(t *testing.T) {
	gen := &fakeGenerator{perCall: []func() (genai.ImagePayload, error){
		func() (genai.ImagePayload, error) {
			return genai.ImagePayload{}, &domain.ImageModelError{Model: "model-a", StatusCode: 404, Message: "not found"}
		},
		func() (genai.ImagePayload, error) {
			return genai.ImagePayload{Data: testPNG(), MIMEType: "image/png"}, nil
		},
	}}
	sink := &fakeSink{}
	o := newTestImageOrchestrator(gen, &fakeValidator{}, sink, []string{"model-a", "model-b"})

	result, err := o.GenerateForPresentation(context.Background(), "pres-1", slides("One"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 1 {
		t.Fatalf("expected 1 accepted, got %#v", result)
	}
	if len(gen.calls) != 2 || gen.calls[0].model != "model-a" || gen.calls[1].model != "model-b" {
		t.Fatalf("unexpected call sequence: %#v", gen.calls)
	}
	if sink.stored[0].ModelUsed != "model-b" {
		t.Fatalf("stored model = %q, want model-b", sink.stored[0].ModelUsed)
	}
}

func TestGenerateForSlideNonRetryableAborts(t *testing.T) {
	gen := &fakeGenerator{perCall: []func() (genai.ImagePayload, error){
		func() (genai.ImagePayload, error) {
			return genai.ImagePayload{}, &domain.ImageModelError{Model: "model-a", StatusCode: 500, Message: "internal"}
		},
	}}
	sink := &fakeSink{}
	o := newTestImageOrchestrator(gen, &fakeValidator{}, sink, []string{"model-a", "model-b"})

	result, err := o.GenerateForPresentation(context.Background(), "pres-1", slides("One"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 slide error, got %#v", result)
	}
	if len(gen.calls) != 1 {
		t.Fatalf("non-retryable failure must not advance the chain: %#v", gen.calls)
	}
}

func TestGenerateForSlideValidatorFailsOpen(t *testing.T) {
	gen := &fakeGenerator{}
	val := &fakeValidator{verdicts: []Verdict{VerdictError}}
	sink := &fakeSink{}
	o := newTestImageOrchestrator(gen, val, sink, []string{"model-a"})

	result, err := o.GenerateForPresentation(context.Background(), "pres-1", slides("One"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Accepted) != 1 || len(result.Errors) != 0 {
		t.Fatalf("validator failure must fail open: %#v", result)
	}
}

func TestGenerateForPresentationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{perCall: []func() (genai.ImagePayload, error){
		func() (genai.ImagePayload, error) { return genai.ImagePayload{}, context.Canceled },
	}}
	o := newTestImageOrchestrator(gen, &fakeValidator{}, &fakeSink{}, []string{"model-a"})

	_, err := o.GenerateForPresentation(ctx, "pres-1", slides("One"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
