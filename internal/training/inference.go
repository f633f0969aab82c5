package training

import "context"

// GenerationRequest asks a loaded adapter for one response
type GenerationRequest struct {
	SystemPrompt    string  `json:"system_prompt"`
	UserInstruction string  `json:"user_instruction"`
	MaxNewTokens    int     `json:"max_new_tokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
}

// GenerationResponse carries the generated text
type GenerationResponse struct {
	Text string `json:"text"`
}

// Engine is the inference boundary: an external runtime that has loaded the
// persisted adapter directory and answers user instructions with the trained
// persona. Implementations live outside this module.
type Engine interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResponse, error)
}
