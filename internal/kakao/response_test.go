package kakao

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTextResponseShape(t *testing.T) {
	resp := TextResponse("안녕하세요")
	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	s := string(body)
	if !strings.Contains(s, `"version":"2.0"`) {
		t.Fatalf("missing version tag: %s", s)
	}
	if !strings.Contains(s, `"simpleText":{"text":"안녕하세요"}`) {
		t.Fatalf("missing simple text bubble: %s", s)
	}
	if strings.Contains(s, "useCallback") {
		t.Fatalf("inline response must not carry callback marker: %s", s)
	}
}

func TestTextWithCardResponseOrdersBubbles(t *testing.T) {
	card := BasicCard{
		Title:       "길찾기",
		Description: "서울 → 부산",
		Buttons:     []Button{LinkButton("Google 지도", "https://maps.example")},
	}
	resp := TextWithCardResponse("아래 버튼으로 확인하세요.", card)

	if len(resp.Template.Outputs) != 2 {
		t.Fatalf("expected 2 bubbles, got %d", len(resp.Template.Outputs))
	}
	if resp.Template.Outputs[0].SimpleText == nil {
		t.Fatalf("first bubble must be text")
	}
	if resp.Template.Outputs[1].BasicCard == nil {
		t.Fatalf("second bubble must be the card")
	}
	if got := resp.Template.Outputs[1].BasicCard.Buttons[0].Action; got != "webLink" {
		t.Fatalf("expected webLink action, got %q", got)
	}
}

func TestCarouselResponse(t *testing.T) {
	resp := CarouselResponse("제주 인기 명소 TOP 3를 추천드려요 🌴",
		BasicCard{Title: "성산일출봉"},
		BasicCard{Title: "협재해변"},
		BasicCard{Title: "한라산 국립공원"},
	)

	if len(resp.Template.Outputs) != 2 {
		t.Fatalf("expected text + carousel, got %d bubbles", len(resp.Template.Outputs))
	}
	carousel := resp.Template.Outputs[1].Carousel
	if carousel == nil {
		t.Fatalf("expected carousel bubble")
	}
	if carousel.Type != CarouselTypeBasicCard {
		t.Fatalf("expected basicCard carousel, got %q", carousel.Type)
	}
	if len(carousel.Items) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(carousel.Items))
	}
}

func TestCallbackWaitingResponseOmitsTemplate(t *testing.T) {
	resp := CallbackWaitingResponse("답변을 준비하고 있어요. 잠시만 기다려 주세요 🍊")
	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	s := string(body)
	if !strings.Contains(s, `"useCallback":true`) {
		t.Fatalf("missing callback marker: %s", s)
	}
	if strings.Contains(s, "template") {
		t.Fatalf("waiting response must not carry a template: %s", s)
	}
	if !strings.Contains(s, `"text":"답변을 준비하고 있어요. 잠시만 기다려 주세요 🍊"`) {
		t.Fatalf("missing waiting text: %s", s)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"서울에서 부산까지", "ko"},
		{"Jeju to Seoul", "en"},
		{"weather 날씨", "ko"},
		{"", "en"},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.text); got != tc.want {
			t.Fatalf("DetectLanguage(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
