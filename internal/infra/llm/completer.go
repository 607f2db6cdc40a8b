package llm

import "context"

// Models known to grade reliably. Groq currently restricts the 405B
// model to paying customers.
const (
	ModelLlama405B = "llama-3.3-405b-reasoning"
	ModelLlama70B  = "llama-3.3-70b-versatile"
	ModelLlama8B   = "llama-3.3-8b-instant"
	ModelGemini    = "gemini-1.5-flash"

	DefaultModel = ModelLlama70B
)

// Completer produces a completion for a single prompt. Both the Groq
// and Gemini clients implement it; the grading and dynamic-answer
// services depend only on this interface.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
