package questiongen

import "github.com/abhisek/examgen/internal/extract"

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response. Zero leaves it
	// to the provider.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxMaterialChars bounds the extracted material embedded in the
	// prompt. The cut is a hard cutoff.
	MaxMaterialChars int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		Temperature:      0.7,
		MaxMaterialChars: extract.MaxMaterialChars,
	}
}
