package dialogue

import (
	"regexp"
	"strings"

	"github.com/wonpyo/jeju-chatpi/internal/planner"
)

// Slots are the five trip preferences collected across turns. An empty
// string means the slot is still unknown; extraction never writes empty
// strings, so merging cannot erase a known value.
type Slots struct {
	Nights  string `json:"nights,omitempty"`
	Lodging string `json:"lodging,omitempty"`
	Vibe    string `json:"vibe,omitempty"`
	Food    string `json:"food,omitempty"`
	Group   string `json:"group,omitempty"`
}

// Slot names in fill-priority order. The first unset slot decides the
// next question.
const (
	SlotNights  = "nights"
	SlotLodging = "lodging"
	SlotVibe    = "vibe"
	SlotFood    = "food"
	SlotGroup   = "group"
)

var slotOrder = [...]string{SlotNights, SlotLodging, SlotVibe, SlotFood, SlotGroup}

// slotQuestions are asked one per turn until every slot is known. The
// group question reads as optional, but the flow still waits for it.
var slotQuestions = map[string]string{
	SlotNights:  "몇 박 일정으로 오시나요? (예: 2박)",
	SlotLodging: "숙소는 어떤 유형을 선호하세요? (호텔/리조트/펜션/게스트하우스)",
	SlotVibe:    "어떤 분위기를 원하세요? (바다/산·자연/도심·문화)",
	SlotFood:    "음식 취향을 알려주세요. (해산물/흑돼지/한식/카페·디저트)",
	SlotGroup:   "동행은 어떻게 되세요? (혼자/커플/가족/친구) 선택이지만 알려주시면 코스가 더 정확해져요!",
}

func (s Slots) value(name string) string {
	switch name {
	case SlotNights:
		return s.Nights
	case SlotLodging:
		return s.Lodging
	case SlotVibe:
		return s.Vibe
	case SlotFood:
		return s.Food
	case SlotGroup:
		return s.Group
	}
	return ""
}

// Merge overlays non-empty values from update onto s and returns the
// result. Empty update values never erase known ones.
func (s Slots) Merge(update Slots) Slots {
	if update.Nights != "" {
		s.Nights = update.Nights
	}
	if update.Lodging != "" {
		s.Lodging = update.Lodging
	}
	if update.Vibe != "" {
		s.Vibe = update.Vibe
	}
	if update.Food != "" {
		s.Food = update.Food
	}
	if update.Group != "" {
		s.Group = update.Group
	}
	return s
}

// FirstUnset returns the name of the first unfilled slot in priority
// order, or "" when every slot is known.
func (s Slots) FirstUnset() string {
	for _, name := range slotOrder {
		if s.value(name) == "" {
			return name
		}
	}
	return ""
}

// Complete reports whether all five slots are filled.
func (s Slots) Complete() bool {
	return s.FirstUnset() == ""
}

// Empty reports whether no slot is filled.
func (s Slots) Empty() bool {
	for _, name := range slotOrder {
		if s.value(name) != "" {
			return false
		}
	}
	return true
}

// Question returns the canned question for a slot name.
func Question(slot string) string {
	return slotQuestions[slot]
}

// ToPreferences adapts the slots for the planner.
func (s Slots) ToPreferences() planner.Preferences {
	return planner.Preferences{
		Nights:  s.Nights,
		Lodging: s.Lodging,
		Vibe:    s.Vibe,
		Food:    s.Food,
		Group:   s.Group,
	}
}

var nightsPattern = regexp.MustCompile(`(\d+)\s*박`)

// keywordRule maps a literal keyword hit to a canonical slot value.
// Rules are ordered; the first hit wins.
type keywordRule struct {
	keyword   string
	canonical string
}

var lodgingRules = []keywordRule{
	{"호텔", "호텔"},
	{"리조트", "리조트"},
	{"펜션", "펜션"},
	{"게스트하우스", "게스트하우스"},
	{"게하", "게스트하우스"},
	{"독채", "독채"},
	{"민박", "민박"},
	{"에어비앤비", "독채"},
}

// Vibe buckets are mutually exclusive and tested sea first, then
// mountain/nature, then urban/culture. An utterance that mentions both
// the sea and a mountain keeps the sea.
var vibeRules = []keywordRule{
	{"바다", "바다"},
	{"해변", "바다"},
	{"해수욕장", "바다"},
	{"스노클링", "바다"},
	{"서핑", "바다"},
	{"오션뷰", "바다"},
	{"오름", "산/자연"},
	{"한라산", "산/자연"},
	{"등산", "산/자연"},
	{"숲", "산/자연"},
	{"트레킹", "산/자연"},
	{"둘레길", "산/자연"},
	{"자연", "산/자연"},
	{"도심", "도심/문화"},
	{"시내", "도심/문화"},
	{"쇼핑", "도심/문화"},
	{"박물관", "도심/문화"},
	{"미술관", "도심/문화"},
	{"문화", "도심/문화"},
}

// cafe and dessert hits collapse into one composite value; the special
// experience keywords collapse into another.
var foodRules = []keywordRule{
	{"해산물", "해산물"},
	{"물회", "해산물"},
	{"흑돼지", "흑돼지"},
	{"고기국수", "고기국수"},
	{"한식", "한식"},
	{"카페", "카페·디저트"},
	{"디저트", "카페·디저트"},
	{"이색", "이색 체험 맛집"},
	{"특별한", "이색 체험 맛집"},
}

// Child and infant keywords imply traveling as a family even when the
// word itself is absent.
var groupRules = []keywordRule{
	{"아이", "가족(아이 동반)"},
	{"아기", "가족(아이 동반)"},
	{"유아", "가족(아이 동반)"},
	{"어린이", "가족(아이 동반)"},
	{"애기", "가족(아이 동반)"},
	{"가족", "가족"},
	{"부모님", "부모님"},
	{"커플", "커플"},
	{"연인", "커플"},
	{"신혼", "커플"},
	{"혼자", "혼자"},
	{"혼행", "혼자"},
	{"친구", "친구"},
}

func matchFirst(utterance string, rules []keywordRule) string {
	for _, r := range rules {
		if strings.Contains(utterance, r.keyword) {
			return r.canonical
		}
	}
	return ""
}

// ExtractSlots pulls slot values out of free text. Each slot has its
// own independent matcher; a slot with no hit stays unset.
// Examples:
//   - "2박, 호텔, 바다, 해산물" → {Nights: "2박", Lodging: "호텔", Vibe: "바다", Food: "해산물"}
//   - "아이랑 오름 가고 싶어요" → {Vibe: "산/자연", Group: "가족(아이 동반)"}
func ExtractSlots(utterance string) Slots {
	var s Slots
	if m := nightsPattern.FindStringSubmatch(utterance); m != nil {
		s.Nights = m[1] + "박"
	}
	s.Lodging = matchFirst(utterance, lodgingRules)
	s.Vibe = matchFirst(utterance, vibeRules)
	s.Food = matchFirst(utterance, foodRules)
	s.Group = matchFirst(utterance, groupRules)
	return s
}
