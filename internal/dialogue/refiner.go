package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wonpyo/jeju-chatpi/internal/search"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

var refinerTracer = otel.Tracer("chatpi.internal.dialogue.refiner")

const (
	defaultRefineMaxTokens = 700
	refineTemperature      = 0.2
	searchContextResults   = 3
)

// SearchProvider supplies web grounding for time-sensitive questions
// (festivals, weather, operating hours). Results may be empty; the
// refiner treats search as strictly optional.
type SearchProvider interface {
	Enabled() bool
	Search(ctx context.Context, query string, max int) []search.Result
}

// RefinerOption configures optional Refiner collaborators.
type RefinerOption func(*Refiner)

// WithSearchProvider enables live web grounding.
func WithSearchProvider(sp SearchProvider) RefinerOption {
	return func(r *Refiner) {
		r.searcher = sp
	}
}

// WithGuidelines injects the knowledge-store document hints into every
// refinement prompt.
func WithGuidelines(text string) RefinerOption {
	return func(r *Refiner) {
		r.guidelines = text
	}
}

// WithMaxTokens overrides the completion token cap.
func WithMaxTokens(n int32) RefinerOption {
	return func(r *Refiner) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// WithFastMode disables the LLM entirely; drafts are served as-is.
func WithFastMode(enabled bool) RefinerOption {
	return func(r *Refiner) {
		r.fastMode = enabled
	}
}

// Refiner rewrites rule-engine drafts through the LLM under a strict
// time budget. Every failure path, including a missing client, returns
// the draft unchanged, so callers never need their own fallback.
type Refiner struct {
	llm        LLMClient
	searcher   SearchProvider
	model      string
	maxTokens  int32
	guidelines string
	fastMode   bool
	logger     *logging.Logger
}

// NewRefiner builds a refiner. A nil llm is allowed and behaves like
// fast mode: the service stays up on drafts alone.
func NewRefiner(llm LLMClient, model string, logger *logging.Logger, opts ...RefinerOption) *Refiner {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Refiner{
		llm:       llm,
		model:     model,
		maxTokens: defaultRefineMaxTokens,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.llm == nil {
		r.logger.Warn("no llm client configured, drafts will be served unrefined")
	}
	return r
}

// RefineDraft returns the draft polished by the LLM, or the draft
// itself when refinement is disabled, over budget, or failing. The
// budget bounds only the completion call; the optional search lookup
// runs on its own client timeout first.
func (r *Refiner) RefineDraft(ctx context.Context, utterance, draft string, budget time.Duration) string {
	if r.fastMode || r.llm == nil || budget <= 0 {
		return draft
	}

	ctx, span := refinerTracer.Start(ctx, "dialogue.refine")
	defer span.End()
	span.SetAttributes(
		attribute.String("chatpi.llm.model", r.model),
		attribute.Int64("chatpi.budget_ms", budget.Milliseconds()),
	)

	system := buildSystemBlocks(r.guidelines)
	if r.searcher != nil && r.searcher.Enabled() && needsLiveContext(utterance) {
		if results := r.searcher.Search(ctx, utterance, searchContextResults); len(results) > 0 {
			system = append(system, webContextInstruction+search.FormatContext(results))
			span.SetAttributes(attribute.Int("chatpi.search_results", len(results)))
		}
	}

	// The model sees the original question first, then the draft it is
	// asked to polish.
	messages := make([]ChatMessage, 0, 2)
	if strings.TrimSpace(utterance) != "" {
		messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: utterance})
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: refineInstruction + draft})

	req := LLMRequest{
		Model:       r.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   r.maxTokens,
		Temperature: refineTemperature,
	}

	start := time.Now()
	text, err := RunBounded(ctx, budget, func(ctx context.Context) (string, error) {
		resp, err := r.llm.Complete(ctx, req)
		if err != nil {
			return "", err
		}
		out := strings.TrimSpace(resp.Text)
		if out == "" {
			return "", errors.New("dialogue: llm returned empty response")
		}
		if resp.Usage.InputTokens > 0 {
			llmTokensTotal.WithLabelValues(r.model, "input").Add(float64(resp.Usage.InputTokens))
		}
		if resp.Usage.OutputTokens > 0 {
			llmTokensTotal.WithLabelValues(r.model, "output").Add(float64(resp.Usage.OutputTokens))
		}
		if resp.Usage.TotalTokens > 0 {
			llmTokensTotal.WithLabelValues(r.model, "total").Add(float64(resp.Usage.TotalTokens))
		}
		return out, nil
	})
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrAttemptTimeout) {
			status = "timeout"
		}
	}
	llmLatency.WithLabelValues(r.model, status).Observe(latency.Seconds())

	if err != nil {
		span.RecordError(err)
		r.logger.Warn("draft refinement failed, serving draft",
			"model", r.model,
			"latency_ms", latency.Milliseconds(),
			"error", err,
		)
		return draft
	}

	r.logger.Info("draft refined",
		"model", r.model,
		"latency_ms", latency.Milliseconds(),
	)
	return text
}
