package kakao

// Version is the Kakao Skill protocol version this service speaks.
const Version = "2.0"

// CarouselTypeBasicCard is the only carousel item type we emit.
const CarouselTypeBasicCard = "basicCard"

// SkillResponse is the outbound webhook envelope. Exactly one of
// Template or the UseCallback/Data pair is populated: a template answers
// the turn inline, the callback pair tells Kakao a second POST will
// deliver the real answer.
type SkillResponse struct {
	Version     string            `json:"version"`
	Template    *Template         `json:"template,omitempty"`
	UseCallback bool              `json:"useCallback,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// Template holds the ordered output bubbles.
type Template struct {
	Outputs []Output `json:"outputs"`
}

// Output is one bubble. Exactly one field is set.
type Output struct {
	SimpleText *SimpleText `json:"simpleText,omitempty"`
	BasicCard  *BasicCard  `json:"basicCard,omitempty"`
	Carousel   *Carousel   `json:"carousel,omitempty"`
}

// SimpleText is a plain text bubble.
type SimpleText struct {
	Text string `json:"text"`
}

// BasicCard is a titled card with action buttons and an optional image.
type BasicCard struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	Buttons     []Button   `json:"buttons,omitempty"`
}

// Thumbnail is the card header image.
type Thumbnail struct {
	ImageURL string `json:"imageUrl"`
}

// Button is a card action. We only emit web links.
type Button struct {
	Action     string `json:"action"`
	Label      string `json:"label"`
	WebLinkURL string `json:"webLinkUrl"`
}

// Carousel is a horizontally scrollable list of cards.
type Carousel struct {
	Type  string      `json:"type"`
	Items []BasicCard `json:"items"`
}

// LinkButton builds a webLink button.
func LinkButton(label, url string) Button {
	return Button{Action: "webLink", Label: label, WebLinkURL: url}
}

// TextResponse wraps text in a single simpleText bubble.
func TextResponse(text string) SkillResponse {
	return SkillResponse{
		Version: Version,
		Template: &Template{
			Outputs: []Output{{SimpleText: &SimpleText{Text: text}}},
		},
	}
}

// TextWithCardResponse emits a text bubble followed by a card bubble.
func TextWithCardResponse(text string, card BasicCard) SkillResponse {
	return SkillResponse{
		Version: Version,
		Template: &Template{
			Outputs: []Output{
				{SimpleText: &SimpleText{Text: text}},
				{BasicCard: &card},
			},
		},
	}
}

// CarouselResponse emits a text bubble followed by a basicCard carousel.
func CarouselResponse(text string, cards ...BasicCard) SkillResponse {
	return SkillResponse{
		Version: Version,
		Template: &Template{
			Outputs: []Output{
				{SimpleText: &SimpleText{Text: text}},
				{Carousel: &Carousel{Type: CarouselTypeBasicCard, Items: cards}},
			},
		},
	}
}

// CallbackWaitingResponse acknowledges the turn and signals that the
// answer will arrive through the callback URL. Kakao shows the waiting
// text to the user in the meantime.
func CallbackWaitingResponse(waitingText string) SkillResponse {
	return SkillResponse{
		Version:     Version,
		UseCallback: true,
		Data:        map[string]string{"text": waitingText},
	}
}
