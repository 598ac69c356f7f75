package kakao

import (
	"encoding/json"
	"testing"
)

func TestSkillPayloadAccessors(t *testing.T) {
	raw := `{
		"userRequest": {
			"utterance": "  제주 여행 코스 알려줘  ",
			"callbackUrl": "https://bot.example/callback/abc",
			"user": {"id": "u-100"}
		}
	}`

	var p SkillPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if got := p.Utterance(); got != "제주 여행 코스 알려줘" {
		t.Fatalf("expected trimmed utterance, got %q", got)
	}
	if got := p.UserID(); got != "u-100" {
		t.Fatalf("expected user id, got %q", got)
	}
	if got := p.CallbackURL(); got != "https://bot.example/callback/abc" {
		t.Fatalf("expected callback url, got %q", got)
	}
}

func TestSkillPayloadToleratesMissingFields(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"empty user request", `{"userRequest": {}}`},
		{"missing user", `{"userRequest": {"utterance": "hi"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p SkillPayload
			if err := json.Unmarshal([]byte(tc.raw), &p); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if p.UserID() != "" && tc.name != "missing user" {
				t.Fatalf("expected empty user id, got %q", p.UserID())
			}
			if p.CallbackURL() != "" {
				t.Fatalf("expected empty callback url, got %q", p.CallbackURL())
			}
		})
	}
}

func TestSkillPayloadNilReceiver(t *testing.T) {
	var p *SkillPayload
	if p.Utterance() != "" || p.UserID() != "" || p.CallbackURL() != "" {
		t.Fatalf("nil payload accessors must return empty strings")
	}
}
