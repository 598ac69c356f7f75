package kakao

import "strings"

// SkillPayload is the inbound Kakao Skill webhook body. Kakao sends a
// deeply nested document; every level is optional on the wire, so the
// accessors degrade to empty strings instead of failing.
type SkillPayload struct {
	UserRequest *UserRequest `json:"userRequest"`
}

// UserRequest carries the utterance and requester identity for one turn.
type UserRequest struct {
	Utterance   string `json:"utterance"`
	CallbackURL string `json:"callbackUrl"`
	User        *User  `json:"user"`
}

// User identifies the requester. The ID is opaque and bot-scoped.
type User struct {
	ID string `json:"id"`
}

// Utterance returns the trimmed user utterance, or "" when absent.
func (p *SkillPayload) Utterance() string {
	if p == nil || p.UserRequest == nil {
		return ""
	}
	return strings.TrimSpace(p.UserRequest.Utterance)
}

// UserID returns the opaque user identifier, or "" when absent.
func (p *SkillPayload) UserID() string {
	if p == nil || p.UserRequest == nil || p.UserRequest.User == nil {
		return ""
	}
	return p.UserRequest.User.ID
}

// CallbackURL returns the one-shot callback address Kakao supplied for
// this turn, or "" when the skill is not callback-enabled.
func (p *SkillPayload) CallbackURL() string {
	if p == nil || p.UserRequest == nil {
		return ""
	}
	return strings.TrimSpace(p.UserRequest.CallbackURL)
}
