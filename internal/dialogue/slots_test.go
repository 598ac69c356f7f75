package dialogue

import "testing"

func TestExtractSlotsSingleTurn(t *testing.T) {
	got := ExtractSlots("2박, 호텔, 바다, 해산물")

	if got.Nights != "2박" {
		t.Fatalf("expected nights 2박, got %q", got.Nights)
	}
	if got.Lodging != "호텔" {
		t.Fatalf("expected lodging 호텔, got %q", got.Lodging)
	}
	if got.Vibe != "바다" {
		t.Fatalf("expected vibe 바다, got %q", got.Vibe)
	}
	if got.Food != "해산물" {
		t.Fatalf("expected food 해산물, got %q", got.Food)
	}
	if got.Group != "" {
		t.Fatalf("expected group unset, got %q", got.Group)
	}
}

func TestExtractSlotsNoKeywords(t *testing.T) {
	got := ExtractSlots("음 글쎄요")
	if !got.Empty() {
		t.Fatalf("expected all slots unset, got %#v", got)
	}
}

func TestExtractSlotsNightsVariants(t *testing.T) {
	cases := map[string]string{
		"3박4일로 갈 거예요": "3박",
		"1박만 하려고요":    "1박",
		"10 박 일정":     "10박",
		"당일치기예요":      "",
	}
	for utterance, want := range cases {
		if got := ExtractSlots(utterance).Nights; got != want {
			t.Fatalf("ExtractSlots(%q).Nights = %q, want %q", utterance, got, want)
		}
	}
}

func TestExtractSlotsVibePrecedence(t *testing.T) {
	// Sea wins over mountain, mountain over urban, regardless of word order.
	if got := ExtractSlots("한라산도 좋고 바다도 좋아요").Vibe; got != "바다" {
		t.Fatalf("expected 바다, got %q", got)
	}
	if got := ExtractSlots("시내 구경하고 오름도 가고").Vibe; got != "산/자연" {
		t.Fatalf("expected 산/자연, got %q", got)
	}
	if got := ExtractSlots("쇼핑이랑 박물관 위주로").Vibe; got != "도심/문화" {
		t.Fatalf("expected 도심/문화, got %q", got)
	}
}

func TestExtractSlotsFoodComposites(t *testing.T) {
	if got := ExtractSlots("디저트 맛집 위주").Food; got != "카페·디저트" {
		t.Fatalf("expected 카페·디저트, got %q", got)
	}
	if got := ExtractSlots("감성 카페 가고 싶어").Food; got != "카페·디저트" {
		t.Fatalf("expected 카페·디저트, got %q", got)
	}
	if got := ExtractSlots("이색 맛집으로요").Food; got != "이색 체험 맛집" {
		t.Fatalf("expected 이색 체험 맛집, got %q", got)
	}
}

func TestExtractSlotsChildImpliesFamily(t *testing.T) {
	for _, utterance := range []string{"아이랑 같이 가요", "아기 데리고요", "어린이 포함 넷이요"} {
		if got := ExtractSlots(utterance).Group; got != "가족(아이 동반)" {
			t.Fatalf("ExtractSlots(%q).Group = %q, want 가족(아이 동반)", utterance, got)
		}
	}
	if got := ExtractSlots("가족 여행이에요").Group; got != "가족" {
		t.Fatalf("expected 가족, got %q", got)
	}
}

func TestMergeKeepsKnownValues(t *testing.T) {
	base := Slots{Nights: "2박", Vibe: "바다"}

	merged := base.Merge(Slots{})
	if merged != base {
		t.Fatalf("merging all-unset slots changed the session: %#v", merged)
	}

	merged = base.Merge(Slots{Lodging: "호텔", Vibe: "산/자연"})
	if merged.Nights != "2박" || merged.Lodging != "호텔" || merged.Vibe != "산/자연" {
		t.Fatalf("unexpected merge result: %#v", merged)
	}
}

func TestFirstUnsetPriorityOrder(t *testing.T) {
	s := Slots{}
	if got := s.FirstUnset(); got != SlotNights {
		t.Fatalf("expected nights first, got %q", got)
	}

	s.Nights = "2박"
	if got := s.FirstUnset(); got != SlotLodging {
		t.Fatalf("expected lodging next, got %q", got)
	}

	s.Lodging = "호텔"
	s.Vibe = "바다"
	s.Food = "해산물"
	if got := s.FirstUnset(); got != SlotGroup {
		t.Fatalf("expected group last, got %q", got)
	}

	s.Group = "커플"
	if !s.Complete() {
		t.Fatal("expected complete slots")
	}
	if got := s.FirstUnset(); got != "" {
		t.Fatalf("expected no unset slot, got %q", got)
	}
}

func TestQuestionCoversEverySlot(t *testing.T) {
	for _, name := range slotOrder {
		if Question(name) == "" {
			t.Fatalf("missing question for slot %q", name)
		}
	}
}
