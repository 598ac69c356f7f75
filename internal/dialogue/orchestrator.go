package dialogue

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wonpyo/jeju-chatpi/internal/kakao"
	"github.com/wonpyo/jeju-chatpi/internal/knowledge"
	"github.com/wonpyo/jeju-chatpi/internal/planner"
	"github.com/wonpyo/jeju-chatpi/internal/search"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

var turnTracer = otel.Tracer("chatpi.internal.dialogue.orchestrator")

const greetingReply = `안녕하세요! 제주 여행플래너 챗피예요 🍊
맞춤 코스를 추천해 드릴게요. 아래를 알려주세요.

1) 몇 박 일정이세요? (예: 2박)
2) 숙소 유형은요? (호텔/리조트/펜션/게스트하우스)
3) 원하는 분위기는요? (바다/산·자연/도심·문화)
4) 음식 취향은요? (해산물/흑돼지/한식/카페·디저트)
5) 동행은 어떻게 되세요? (혼자/커플/가족/친구)

"처음부터"라고 하시면 언제든 다시 시작할 수 있어요!`

const resetReply = "네, 처음부터 다시 시작할게요!\n"

const callbackWaitingText = "맞춤 코스를 만들고 있어요! 잠시 후 답변을 보내드릴게요 🍊"

// TurnRequest is one inbound webhook turn, already unwrapped from the
// platform envelope.
type TurnRequest struct {
	UserID      string
	Utterance   string
	CallbackURL string
}

// TurnResult carries the synchronous response plus routing facts for
// logging. Deferred means the real answer follows via callback.
type TurnResult struct {
	Response kakao.SkillResponse
	Intent   Intent
	Deferred bool
}

// OrchestratorOption configures optional orchestrator behavior.
type OrchestratorOption func(*Orchestrator)

// WithPublisher enables the deferred-callback path.
func WithPublisher(pub *Publisher) OrchestratorOption {
	return func(o *Orchestrator) {
		o.publisher = pub
	}
}

// WithCallbackWindow sets the platform callback validity ceiling and
// the safety margin subtracted from it.
func WithCallbackWindow(window, safety time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if window > 0 {
			o.callbackWindow = window
		}
		if safety > 0 {
			o.callbackSafety = safety
		}
	}
}

// WithSyncBudget bounds the synchronous LLM refinement attempt.
func WithSyncBudget(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.syncBudget = d
		}
	}
}

// WithGuardEnabled toggles the internal-probe guard. Disabled, probe
// utterances fall through to the generic path.
func WithGuardEnabled(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.guardEnabled = enabled
	}
}

// WithTurnSearch supplies the search client used for weather link
// lookups on the card shortcut path.
func WithTurnSearch(sp SearchProvider) OrchestratorOption {
	return func(o *Orchestrator) {
		o.searcher = sp
	}
}

// Orchestrator is the per-turn state machine. It evaluates the handling
// states in a fixed order, first match terminal: guard, reset,
// greeting, address card, spots card, weather card, slot filling, and
// finally recommendation dispatch (synchronous or callback-deferred).
// It never returns an error: every failure degrades to the best locally
// computable reply.
type Orchestrator struct {
	sessions  SessionStore
	store     *knowledge.Store
	refiner   *Refiner
	searcher  SearchProvider
	publisher *Publisher
	logger    *logging.Logger

	guardEnabled   bool
	syncBudget     time.Duration
	callbackWindow time.Duration
	callbackSafety time.Duration
}

// NewOrchestrator wires the turn pipeline. Sessions, store, and refiner
// are required; everything else is optional.
func NewOrchestrator(sessions SessionStore, store *knowledge.Store, refiner *Refiner, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if sessions == nil {
		panic("dialogue: session store cannot be nil")
	}
	if store == nil {
		panic("dialogue: knowledge store cannot be nil")
	}
	if refiner == nil {
		panic("dialogue: refiner cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		sessions:       sessions,
		store:          store,
		refiner:        refiner,
		logger:         logger,
		guardEnabled:   true,
		syncBudget:     15 * time.Second,
		callbackWindow: time.Minute,
		callbackSafety: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleTurn processes one inbound turn and always produces a valid
// response envelope.
func (o *Orchestrator) HandleTurn(ctx context.Context, req TurnRequest) TurnResult {
	ctx, span := turnTracer.Start(ctx, "dialogue.turn")
	defer span.End()

	intent, pair := Classify(req.Utterance)
	if intent == IntentProbe && !o.guardEnabled {
		intent = IntentGeneric
	}
	span.SetAttributes(attribute.String("chatpi.intent", string(intent)))
	turnsTotal.WithLabelValues(string(intent)).Inc()

	lang := kakao.DetectLanguage(req.Utterance)

	switch intent {
	case IntentProbe:
		reason, _ := DetectProbe(req.Utterance)
		o.logger.Warn("internal probe refused", "user_id", req.UserID, "keyword", reason)
		return TurnResult{Response: kakao.TextResponse(GuardRefusalReply), Intent: intent}

	case IntentReset:
		if err := o.sessions.Reset(ctx, req.UserID); err != nil {
			span.RecordError(err)
			o.logger.Error("session reset failed", "user_id", req.UserID, "error", err)
		}
		return TurnResult{Response: kakao.TextResponse(resetReply + Question(SlotNights)), Intent: intent}

	case IntentGreeting:
		return TurnResult{Response: kakao.TextResponse(greetingReply), Intent: intent}

	case IntentAddress:
		card := planner.DirectionsCard(pair.Origin, pair.Destination, lang)
		return TurnResult{Response: kakao.TextWithCardResponse(planner.DirectionsGuide(lang), card), Intent: intent}

	case IntentSpots:
		return TurnResult{Response: kakao.CarouselResponse(planner.SpotsCarouselText, planner.SpotsCarousel()...), Intent: intent}

	case IntentWeather:
		guide, card := planner.WeatherCard(o.weatherLinks(ctx, req.Utterance), lang)
		return TurnResult{Response: kakao.TextWithCardResponse(guide, card), Intent: intent}
	}

	sess := o.mergeSession(ctx, req.UserID, ExtractSlots(req.Utterance))

	if next := sess.Slots.FirstUnset(); next != "" {
		reply := Question(next)
		if summary := planner.SummarizePreferences(sess.Slots.ToPreferences()); summary != "" {
			reply = summary + "\n\n" + reply
		}
		return TurnResult{Response: kakao.TextResponse(reply), Intent: intent}
	}

	return o.dispatch(ctx, req, sess, intent)
}

// mergeSession folds freshly extracted slots into the user's session.
// A store failure downgrades the turn to just-extracted slots so the
// conversation keeps moving.
func (o *Orchestrator) mergeSession(ctx context.Context, userID string, extracted Slots) Session {
	sess, err := o.sessions.Update(ctx, userID, extracted)
	if err != nil {
		o.logger.Error("session update failed", "user_id", userID, "error", err)
		return Session{Slots: extracted, UpdatedAt: time.Now()}
	}
	return sess
}

func (o *Orchestrator) weatherLinks(ctx context.Context, utterance string) planner.WeatherLinks {
	if o.searcher == nil || !o.searcher.Enabled() {
		return planner.WeatherLinks{}
	}
	results := o.searcher.Search(ctx, utterance, 5)
	return planner.PickWeatherLinks(search.Links(results))
}

// dispatch produces the recommendation once every slot is known. With
// callback mode available it acknowledges immediately and hands the
// heavy work to the queue; otherwise it refines inline under the
// synchronous budget.
func (o *Orchestrator) dispatch(ctx context.Context, req TurnRequest, sess Session, intent Intent) TurnResult {
	draft := planner.BuildDraft(o.store)
	if summary := planner.SummarizePreferences(sess.Slots.ToPreferences()); summary != "" {
		draft = summary + "\n\n" + draft
	}

	if o.publisher != nil && req.CallbackURL != "" {
		deadline := time.Now().Add(o.callbackWindow - o.callbackSafety)
		job := CallbackJob{
			UserID:      req.UserID,
			Utterance:   req.Utterance,
			Draft:       draft,
			CallbackURL: req.CallbackURL,
			Deadline:    deadline,
		}
		if err := o.publisher.EnqueueCallback(ctx, job); err != nil {
			o.logger.Error("callback enqueue failed, answering synchronously", "user_id", req.UserID, "error", err)
		} else {
			return TurnResult{Response: kakao.CallbackWaitingResponse(callbackWaitingText), Intent: intent, Deferred: true}
		}
	}

	text := o.refiner.RefineDraft(ctx, req.Utterance, draft, o.syncBudget)
	outcome := "refined"
	if text == draft {
		outcome = "draft"
	}
	refineOutcomeTotal.WithLabelValues("sync", outcome).Inc()
	return TurnResult{Response: kakao.TextResponse(text), Intent: intent}
}
