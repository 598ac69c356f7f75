package dialogue

import "strings"

// GuardRefusalReply is the fixed reply for probe attempts. The text
// never varies, so repeated probing leaks nothing.
const GuardRefusalReply = "비밀이에요 🤫 공식적으로 공개되지 않은 정보입니다."

// probeKeywords flag attempts to extract the system prompt, rule
// tables, or source data. Matching is lowercase containment.
var probeKeywords = []string{
	"지침",
	"룰엔진",
	"만들어졌",
	"internal",
	"prompt",
	"시스템",
	"csv",
	"데이터셋",
	"코드 보여줘",
	"내용 보여줘",
}

// DetectProbe reports whether the utterance is an internal probe and,
// if so, which keyword tripped it (for logging only, never echoed).
func DetectProbe(utterance string) (string, bool) {
	lowered := strings.ToLower(utterance)
	for _, kw := range probeKeywords {
		if strings.Contains(lowered, kw) {
			return kw, true
		}
	}
	return "", false
}
