package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGenerationExhausted = errors.New("generation attempts exhausted")
	ErrNoImagePayload      = errors.New("no image payload in response")
	ErrEmptySlideArray     = errors.New("response contains no slides")
	ErrNoJob               = errors.New("no queued job")
)

// DiagnosticLimit caps how much upstream text may leak into an error message.
const DiagnosticLimit = 400

// Excerpt truncates upstream text to the diagnostic limit. Raw model payloads
// never travel further than this.
func Excerpt(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= DiagnosticLimit {
		return text
	}
	cut := text[:DiagnosticLimit]
	// Do not split a multi-byte rune at the boundary.
	for len(cut) > 0 && cut[len(cut)-1]&0xC0 == 0x80 {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// ParseError reports that upstream text could not be parsed into structured
// data even after all repair passes.
type ParseError struct {
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse slide payload: %v (excerpt: %s)", e.Err, e.Excerpt)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StructureError reports that parsed data did not contain a usable slide array.
type StructureError struct {
	Excerpt string
	Reason  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("slide payload structure: %s (excerpt: %s)", e.Reason, e.Excerpt)
}

// ImageModelError is an HTTP-level failure from the image-generation service.
type ImageModelError struct {
	Model      string
	StatusCode int
	Message    string
}

func (e *ImageModelError) Error() string {
	return fmt.Sprintf("image model %s: status %d: %s", e.Model, e.StatusCode, e.Message)
}

// Retryable reports whether the failure should advance the model fallback
// chain instead of aborting the slide. Client-class rejections and messages
// naming an unsupported or retired model mean the next model may still work;
// anything else aborts.
func (e *ImageModelError) Retryable() bool {
	switch e.StatusCode {
	case 400, 403, 404:
		return true
	}
	msg := strings.ToLower(e.Message)
	for _, marker := range []string{"unsupported", "deprecated", "not found", "no longer available"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
