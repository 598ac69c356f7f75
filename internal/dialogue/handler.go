package dialogue

import (
	"encoding/json"
	"net/http"

	"github.com/wonpyo/jeju-chatpi/internal/kakao"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// apologyReply is the last-resort answer when a turn panics. The platform
// treats any non-200 as a skill outage, so we always hand back an envelope.
const apologyReply = "죄송합니다. 잠시 후 다시 시도해 주세요."

// Handler wires the Kakao skill webhook to the orchestrator.
type Handler struct {
	orchestrator *Orchestrator
	logger       *logging.Logger
}

// NewHandler creates the skill webhook handler.
func NewHandler(orchestrator *Orchestrator, logger *logging.Logger) *Handler {
	if orchestrator == nil {
		panic("dialogue: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Skill handles POST /skill. The platform expects HTTP 200 with a valid
// envelope for every request, so a malformed body degrades to an empty
// payload instead of a 4xx.
func (h *Handler) Skill(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("skill turn panicked", "panic", rec)
			h.writeJSON(w, http.StatusOK, kakao.TextResponse(apologyReply))
		}
	}()

	var payload kakao.SkillPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn("failed to decode skill payload, using empty payload", "error", err)
		payload = kakao.SkillPayload{}
	}

	req := TurnRequest{
		UserID:      payload.UserID(),
		Utterance:   payload.Utterance(),
		CallbackURL: payload.CallbackURL(),
	}
	result := h.orchestrator.HandleTurn(r.Context(), req)

	h.logger.Info("skill turn handled",
		"user_id", req.UserID,
		"intent", string(result.Intent),
		"deferred", result.Deferred,
	)
	h.writeJSON(w, http.StatusOK, result.Response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
