package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wonpyo/jeju-chatpi/internal/search"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

func TestRefineDraftReturnsRefinedText(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "  다듬어진 답변  "}}}
	refiner := NewRefiner(llm, "gpt-4o-mini", logging.Default())

	got := refiner.RefineDraft(context.Background(), "2박 코스 추천", "초안", 5*time.Second)
	if got != "다듬어진 답변" {
		t.Fatalf("expected trimmed refined text, got %q", got)
	}
	if len(llm.requests) != 1 {
		t.Fatalf("expected 1 llm call, got %d", len(llm.requests))
	}

	req := llm.requests[0]
	if req.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", req.Model)
	}
	if req.Temperature != refineTemperature {
		t.Fatalf("unexpected temperature %v", req.Temperature)
	}
	if len(req.System) == 0 || !strings.Contains(req.System[0], "챗피") {
		t.Fatalf("expected persona system block, got %#v", req.System)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected utterance and draft messages, got %#v", req.Messages)
	}
	if req.Messages[0].Role != ChatRoleUser || req.Messages[0].Content != "2박 코스 추천" {
		t.Fatalf("expected the utterance as the first user message, got %#v", req.Messages[0])
	}
	if !strings.HasPrefix(req.Messages[1].Content, refineInstruction) || !strings.Contains(req.Messages[1].Content, "초안") {
		t.Fatalf("expected instruction plus draft last, got %q", req.Messages[1].Content)
	}
}

func TestRefineDraftOmitsEmptyUtterance(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "답변"}}}
	refiner := NewRefiner(llm, "m", logging.Default())

	refiner.RefineDraft(context.Background(), "   ", "초안", time.Second)

	req := llm.requests[0]
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "초안") {
		t.Fatalf("blank utterance must leave only the draft message, got %#v", req.Messages)
	}
}

func TestRefineDraftPassthroughs(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "ignored"}}}

	fast := NewRefiner(llm, "m", logging.Default(), WithFastMode(true))
	if got := fast.RefineDraft(context.Background(), "u", "초안", time.Second); got != "초안" {
		t.Fatalf("fast mode must serve draft, got %q", got)
	}

	nilLLM := NewRefiner(nil, "m", logging.Default())
	if got := nilLLM.RefineDraft(context.Background(), "u", "초안", time.Second); got != "초안" {
		t.Fatalf("nil client must serve draft, got %q", got)
	}

	noBudget := NewRefiner(llm, "m", logging.Default())
	if got := noBudget.RefineDraft(context.Background(), "u", "초안", 0); got != "초안" {
		t.Fatalf("zero budget must serve draft, got %q", got)
	}

	if len(llm.requests) != 0 {
		t.Fatalf("llm must not be called on any passthrough, got %d calls", len(llm.requests))
	}
}

func TestRefineDraftFallsBackOnError(t *testing.T) {
	llm := &stubLLMClient{err: errors.New("backend down")}
	refiner := NewRefiner(llm, "m", logging.Default())

	if got := refiner.RefineDraft(context.Background(), "u", "초안", time.Second); got != "초안" {
		t.Fatalf("expected draft on llm error, got %q", got)
	}
}

func TestRefineDraftFallsBackOnEmptyCompletion(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "   "}}}
	refiner := NewRefiner(llm, "m", logging.Default())

	if got := refiner.RefineDraft(context.Background(), "u", "초안", time.Second); got != "초안" {
		t.Fatalf("expected draft on empty completion, got %q", got)
	}
}

func TestRefineDraftFallsBackOnTimeout(t *testing.T) {
	llm := &stubLLMClient{
		responses: []LLMResponse{{Text: "too late"}},
		delay:     500 * time.Millisecond,
	}
	refiner := NewRefiner(llm, "m", logging.Default())

	if got := refiner.RefineDraft(context.Background(), "u", "초안", 50*time.Millisecond); got != "초안" {
		t.Fatalf("expected draft on timeout, got %q", got)
	}
}

func TestRefineDraftAddsWebContextForLiveQuestions(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "답변"}}}
	searcher := &stubSearchProvider{
		enabled: true,
		results: []search.Result{{Title: "들불축제", Snippet: "3월 개최", Link: "https://example.com/festival"}},
	}
	refiner := NewRefiner(llm, "m", logging.Default(), WithSearchProvider(searcher))

	refiner.RefineDraft(context.Background(), "이번주 제주 축제 일정 알려줘", "초안", time.Second)

	if len(searcher.queries) != 1 {
		t.Fatalf("expected 1 search, got %d", len(searcher.queries))
	}
	req := llm.requests[0]
	last := req.System[len(req.System)-1]
	if !strings.Contains(last, "Web context") || !strings.Contains(last, "들불축제") {
		t.Fatalf("expected web context block, got %q", last)
	}
}

func TestRefineDraftSkipsSearchForEvergreenQuestions(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "답변"}}}
	searcher := &stubSearchProvider{enabled: true}
	refiner := NewRefiner(llm, "m", logging.Default(), WithSearchProvider(searcher))

	refiner.RefineDraft(context.Background(), "2박 3일 코스 짜줘", "초안", time.Second)

	if len(searcher.queries) != 0 {
		t.Fatalf("expected no search for evergreen question, got %d", len(searcher.queries))
	}
}

func TestRefineDraftIncludesGuidelines(t *testing.T) {
	llm := &stubLLMClient{responses: []LLMResponse{{Text: "답변"}}}
	refiner := NewRefiner(llm, "m", logging.Default(), WithGuidelines("혼잡 시 대체 코스를 우선한다"))

	refiner.RefineDraft(context.Background(), "u", "초안", time.Second)

	req := llm.requests[0]
	found := false
	for _, block := range req.System {
		if strings.Contains(block, "혼잡 시 대체 코스") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected guidelines in system blocks, got %#v", req.System)
	}
}

type stubLLMClient struct {
	responses []LLMResponse
	requests  []LLMRequest
	err       error
	delay     time.Duration
	calls     int
}

func (s *stubLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.requests = append(s.requests, req)
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return LLMResponse{}, ctx.Err()
		}
	}
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	if len(s.responses) == 0 {
		return LLMResponse{Text: "ok"}, nil
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

type stubSearchProvider struct {
	enabled bool
	results []search.Result
	queries []string
}

func (s *stubSearchProvider) Enabled() bool { return s.enabled }

func (s *stubSearchProvider) Search(ctx context.Context, query string, max int) []search.Result {
	s.queries = append(s.queries, query)
	return s.results
}
