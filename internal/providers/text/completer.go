// Package text contains clients for the external text-completion service.
// The service takes a single prompt plus generation parameters and returns
// free text: no guarantee of valid JSON, correct slide counts, or clean
// formatting. Everything downstream treats the result as untrusted.
package text

import "context"

// CompletionRequest carries one prompt and its generation parameters.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer is the contract implemented by all text providers.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
