package kakao

// DetectLanguage guesses the reply language for an utterance. Any
// precomposed Hangul syllable marks the text as Korean; everything else
// falls back to English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return "ko"
		}
	}
	return "en"
}
