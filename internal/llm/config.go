// Package llm provides the text-transformer capability used by the enrichment stage.
// Model selection is by tier so callers never name a concrete model.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks such as classification
	TierLite ModelTier = "lite"
	// TierStandard is for structured output and short rewrites
	TierStandard ModelTier = "standard"
	// TierAdvanced is for longer rewrites
	TierAdvanced ModelTier = "advanced"
)

// ParseTier maps a tier name to a ModelTier
func ParseTier(name string) (ModelTier, error) {
	switch tier := ModelTier(strings.ToLower(strings.TrimSpace(name))); tier {
	case TierLite, TierStandard, TierAdvanced:
		return tier, nil
	default:
		return "", fmt.Errorf("unknown model tier: %q", name)
	}
}

// Config holds the Gemini model configuration
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
	// RequestTimeout bounds a single generation call; zero means no extra bound
	RequestTimeout time.Duration
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:    0.3,
		RequestTimeout: 60 * time.Second,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Models:         make(map[ModelTier]string, len(c.Models)+1),
		Temperature:    c.Temperature,
		RequestTimeout: c.RequestTimeout,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
