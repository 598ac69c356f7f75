package dialogue

import (
	"regexp"
	"strings"
)

// Intent is the handling path chosen for an inbound utterance.
type Intent string

const (
	IntentProbe    Intent = "internal_probe"
	IntentReset    Intent = "reset"
	IntentGreeting Intent = "short_greeting"
	IntentAddress  Intent = "address_pair"
	IntentSpots    Intent = "spot_request"
	IntentWeather  Intent = "weather_request"
	IntentGeneric  Intent = "generic"
)

// AddressPair is an origin/destination parsed out of a routing request.
type AddressPair struct {
	Origin      string
	Destination string
}

// greetingTokens match only when the whole utterance, with all
// whitespace stripped and lowercased, equals one of them.
var greetingTokens = map[string]struct{}{
	"안녕":    {},
	"안녕하세요": {},
	"하이":    {},
	"hi":    {},
	"hello": {},
	"ㅎㅇ":    {},
}

var resetKeywords = []string{"처음부터", "리셋", "초기화", "reset"}

var spotKeywords = []string{"명소", "추천", "관광지", "여행지", "볼만한 곳", "어디가 좋아"}

var weatherKeywords = []string{"날씨", "weather"}

var (
	latinRoutePattern  = regexp.MustCompile(`(?i)(.+?)\s*(?:\bto\b|->|→|⇒)\s*(.+)`)
	koreanRoutePattern = regexp.MustCompile(`(.+?)\s*에서\s*(.+?)\s*까지`)
)

// minAddressLen rejects one- or two-byte fragments such as "A" or
// stray punctuation; any Hangul place name passes.
const minAddressLen = 3

// ParseAddressPair extracts an origin and destination from "A to B",
// "A -> B", or "A에서 B까지" phrasings. Both sides must be non-trivial
// or the parse is rejected.
func ParseAddressPair(utterance string) (AddressPair, bool) {
	for _, pattern := range []*regexp.Regexp{latinRoutePattern, koreanRoutePattern} {
		m := pattern.FindStringSubmatch(utterance)
		if m == nil {
			continue
		}
		origin := strings.TrimSpace(m[1])
		dest := strings.TrimSpace(m[2])
		if len(origin) >= minAddressLen && len(dest) >= minAddressLen {
			return AddressPair{Origin: origin, Destination: dest}, true
		}
	}
	return AddressPair{}, false
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Classify routes an utterance to a handling path. Precedence is
// fixed: probe and reset are checked before everything else so a
// coincidental keyword in a later bucket can never bypass them, and
// address routing short-circuits before any keyword bucket because it
// answers without the model.
func Classify(utterance string) (Intent, *AddressPair) {
	if _, ok := DetectProbe(utterance); ok {
		return IntentProbe, nil
	}
	lowered := strings.ToLower(utterance)
	if containsAny(lowered, resetKeywords) {
		return IntentReset, nil
	}
	compact := strings.ToLower(strings.Join(strings.Fields(utterance), ""))
	if _, ok := greetingTokens[compact]; ok {
		return IntentGreeting, nil
	}
	if pair, ok := ParseAddressPair(utterance); ok {
		return IntentAddress, &pair
	}
	if containsAny(lowered, spotKeywords) {
		return IntentSpots, nil
	}
	if containsAny(lowered, weatherKeywords) {
		return IntentWeather, nil
	}
	return IntentGeneric, nil
}
