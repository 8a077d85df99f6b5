package ports

import "context"

// Extractor is the external information-extraction capability used by
// evaluator nodes to turn free text into a structured record.
type Extractor interface {
	Extract(ctx context.Context, text string) (map[string]any, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, text string) (map[string]any, error)

// Extract calls the wrapped function.
func (f ExtractorFunc) Extract(ctx context.Context, text string) (map[string]any, error) {
	return f(ctx, text)
}
