package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cartloop/insights/internal/domain/insights"
	"github.com/cartloop/insights/internal/infra/llm/chatgpt"
	apperrors "github.com/cartloop/insights/pkg/errors"
	"github.com/cartloop/insights/pkg/metrics"
)

// Service turns the latest analytics snapshot into a short executive
// digest. It is the one LLM-backed surface of the platform and is
// entirely optional: without a configured client the endpoint reports
// llm_not_configured and nothing else degrades.
type Service interface {
	Generate(ctx context.Context) (Response, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg      Config
	insights insights.Service
	client   ChatClient
	logger   *slog.Logger
	now      func() time.Time
}

// NewService is a wire provider for the digest domain. client may be
// nil when no LLM is configured.
func NewService(cfg Config, insightsSvc insights.Service, client ChatClient, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		insights: insightsSvc,
		client:   client,
		logger:   logger.With("component", "digest.service"),
		now:      time.Now,
	}
}

func (s *service) Generate(ctx context.Context) (Response, error) {
	if s.client == nil {
		return Response{}, apperrors.Wrap("llm_not_configured", "digest requires a configured llm", nil)
	}

	overview, err := s.insights.Overview(ctx)
	if err != nil {
		return Response{}, err
	}

	started := s.now()
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(overview),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return Response{}, apperrors.Wrap("llm_error", "chatgpt request failed", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, apperrors.Wrap("llm_error", "chatgpt returned no choices", nil)
	}

	content := resp.Choices[0].Message.Content
	s.logger.Debug("chatgpt response received", "content", content)

	summary, highlights, err := parseStructuredResponse(content, s.cfg.MaxHighlights)
	if err != nil {
		return Response{}, apperrors.Wrap("llm_error", "chatgpt response malformed", err)
	}

	out := Response{
		Summary:    truncate(summary, s.cfg.MaxSummaryLen),
		Highlights: highlights,
		DurationMs: s.now().Sub(started).Milliseconds(),
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if !usage.IsZero() {
		out.TokenUsage = &usage
	}
	return out, nil
}

func (s *service) buildMessages(overview insights.OverviewResponse) []chatgpt.Message {
	prompt := strings.TrimSpace(s.cfg.DefaultPrompt)
	if prompt == "" {
		prompt = "You are a retail analyst. Write a brief executive digest of the store metrics you are given. Respond with a SUMMARY: section followed by a HIGHLIGHTS: section of comma-separated bullet points."
	}
	userContent := fmt.Sprintf("Metrics:\n%s\n\nConstraints:\n- Summary must be at most %d characters.\n- Return up to %d highlights.", renderOverview(overview), s.cfg.MaxSummaryLen, s.cfg.MaxHighlights)
	return []chatgpt.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: userContent},
	}
}

// renderOverview flattens the snapshot into plain lines the model can
// read. Map iteration is sorted so prompts are reproducible.
func renderOverview(o insights.OverviewResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total revenue: %.2f\n", o.TotalRevenue)
	fmt.Fprintf(&b, "Orders: %d\n", o.Orders)
	if o.Forecast.Insufficient {
		fmt.Fprintf(&b, "Demand forecast: unavailable (%s)\n", o.Forecast.Reason)
	} else {
		fmt.Fprintf(&b, "Demand forecast: %.2f units expected over the next %d days (trend slope %.3f)\n", o.Forecast.HorizonTotal, o.Forecast.HorizonDays, o.Forecast.Slope)
	}
	if o.Seasonality.Insufficient {
		fmt.Fprintf(&b, "Seasonality: unavailable (%s)\n", o.Seasonality.Reason)
	} else if o.Seasonality.Summary != nil {
		fmt.Fprintf(&b, "Seasonality: peak %s, trough %s, trend %s\n", o.Seasonality.Summary.PeakMonth, o.Seasonality.Summary.TroughMonth, o.Seasonality.Summary.TrendDirection)
	}
	writeCounts(&b, "Customer segments", segmentLines(o.SegmentCounts))
	writeCounts(&b, "Inventory actions", actionLines(o.ActionCounts))
	writeCounts(&b, "Portfolio", portfolioLines(o.Portfolio))
	return strings.TrimRight(b.String(), "\n")
}

func segmentLines(counts map[insights.Segment]int) []string {
	out := make([]string, 0, len(counts))
	for k, v := range counts {
		out = append(out, fmt.Sprintf("%s=%d", k, v))
	}
	return out
}

func actionLines(counts map[insights.StockAction]int) []string {
	out := make([]string, 0, len(counts))
	for k, v := range counts {
		out = append(out, fmt.Sprintf("%s=%d", k, v))
	}
	return out
}

func portfolioLines(counts map[insights.PortfolioCategory]int) []string {
	out := make([]string, 0, len(counts))
	for k, v := range counts {
		out = append(out, fmt.Sprintf("%s=%d", k, v))
	}
	return out
}

func writeCounts(b *strings.Builder, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sort.Strings(lines)
	fmt.Fprintf(b, "%s: %s\n", label, strings.Join(lines, ", "))
}

func parseStructuredResponse(content string, highlightLimit int) (string, []string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", nil, errors.New("empty llm response")
	}

	summaryIdx := findMarker(content, "SUMMARY:")
	if summaryIdx == -1 {
		return "", nil, errors.New("missing SUMMARY section")
	}

	body := content[summaryIdx+len("SUMMARY:"):]
	highlightsIdx := findMarker(body, "HIGHLIGHTS:")
	var highlightsRaw string
	if highlightsIdx != -1 {
		highlightsRaw = body[highlightsIdx+len("HIGHLIGHTS:"):]
		body = body[:highlightsIdx]
	}

	summary := strings.TrimSpace(body)
	if summary == "" {
		return "", nil, errors.New("summary section empty")
	}

	highlights := splitHighlights(highlightsRaw, highlightLimit)
	return summary, highlights, nil
}

func splitHighlights(raw string, limit int) []string {
	raw = strings.ReplaceAll(raw, "\n", ",")
	raw = strings.ReplaceAll(raw, ";", ",")
	tokens := strings.Split(raw, ",")
	highlights := make([]string, 0, limit)
	for _, token := range tokens {
		clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "-"))
		if clean == "" {
			continue
		}
		highlights = append(highlights, clean)
		if limit > 0 && len(highlights) >= limit {
			break
		}
	}
	return highlights
}

func findMarker(content, marker string) int {
	return strings.Index(strings.ToLower(content), strings.ToLower(marker))
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	if limit <= 3 {
		return text[:limit]
	}
	return strings.TrimSpace(text[:limit-3]) + "..."
}
