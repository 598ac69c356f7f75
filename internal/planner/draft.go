package planner

import (
	"strings"

	"github.com/wonpyo/jeju-chatpi/internal/knowledge"
)

// topCourseCount bounds how many candidates the draft considers.
const topCourseCount = 3

// maxSectionLines caps each draft section.
const maxSectionLines = 5

var baseTips = []string{
	"이동 시간은 여유 있게 30~40분 단위로 잡아주세요.",
	"바람이 강할 수 있어 바람막이/우산을 준비하세요.",
	"주요 스팟은 주차 대기가 발생할 수 있어요.",
}

const (
	congestionTip     = "혼잡 구간이 있어 대체 시간대/인근 코스를 권장해요."
	placeholderCourse = "- 반나절 2~3곳 위주로 이동 동선 최소화"
	closingDisclaimer = "최신 운영시간과 예약은 공식 안내 확인이 필요합니다."
	tipsHeader        = "📌 여행 기본 팁"
	coursesHeader     = "📍 추천 여행지 & 코스 아이디어"
	restaurantsHeader = "🍽️ 맛집 추천"
)

var eatLines = []string{
	"- 인근 해산물/한식 위주로 동선 맞춰 추천",
	"- 카페·디저트 1곳 포함해 휴식 동선 구성",
}

// BuildDraft assembles the deterministic recommendation from the
// knowledge snapshot: top candidates filtered by the access rules,
// rendered as three capped sections plus a closing disclaimer. An empty
// snapshot degrades to a placeholder course line, never an error.
func BuildDraft(store *knowledge.Store) string {
	result := ApplyAccessRules(store.TopCourses(topCourseCount), store.Blacklist(), store.CongestionRules())

	tips := make([]string, 0, len(baseTips)+1)
	if result.CongestionNotice {
		tips = append(tips, congestionTip)
	}
	tips = append(tips, baseTips...)

	courseLines := make([]string, 0, len(result.POIs))
	for _, p := range result.POIs {
		courseLines = append(courseLines, "- "+p.DisplayName()+" ("+p.Area+") — 운영시간은 공식 안내 확인 필요")
	}
	if len(courseLines) == 0 {
		courseLines = []string{placeholderCourse}
	}

	var b strings.Builder
	writeSection(&b, tipsHeader, tips)
	b.WriteString("\n")
	writeSection(&b, coursesHeader, courseLines)
	b.WriteString("\n")
	writeSection(&b, restaurantsHeader, eatLines)
	b.WriteString("\n")
	b.WriteString(closingDisclaimer)
	return b.String()
}

func writeSection(b *strings.Builder, header string, lines []string) {
	if len(lines) > maxSectionLines {
		lines = lines[:maxSectionLines]
	}
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}
