package digest

import "github.com/cartloop/insights/pkg/metrics"

// Config configures the digest generation.
type Config struct {
	Model         string
	Temperature   float32
	MaxSummaryLen int
	MaxHighlights int
	DefaultPrompt string
}

// Response is the executive digest of the latest overview snapshot.
type Response struct {
	Summary    string              `json:"summary"`
	Highlights []string            `json:"highlights"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}
