package planner

import (
	"net/url"
	"strings"

	"github.com/wonpyo/jeju-chatpi/internal/kakao"
)

const mapMarkerThumb = "https://t1.daumcdn.net/localimg/localimages/07/mapapidoc/marker_red.png"

// DirectionsCard builds the map-link card for an origin/destination
// pair in the detected reply language.
func DirectionsCard(origin, dest, lang string) kakao.BasicCard {
	o := url.QueryEscape(strings.TrimSpace(origin))
	d := url.QueryEscape(strings.TrimSpace(dest))
	gmaps := "https://www.google.com/maps/dir/?api=1&origin=" + o + "&destination=" + d
	kmap := "https://map.kakao.com/?sName=" + o + "&eName=" + d
	amap := "https://maps.apple.com/?saddr=" + o + "&daddr=" + d

	var title, desc string
	var buttons []kakao.Button
	if lang == "ko" {
		title = "길찾기"
		desc = origin + " → " + dest + "\n원하는 지도에서 열어보세요."
		buttons = []kakao.Button{
			kakao.LinkButton("Google 지도", gmaps),
			kakao.LinkButton("카카오맵(웹)", kmap),
			kakao.LinkButton("Apple 지도", amap),
		}
	} else {
		title = "Directions"
		desc = origin + " → " + dest + "\nOpen in your preferred map."
		buttons = []kakao.Button{
			kakao.LinkButton("Google Maps", gmaps),
			kakao.LinkButton("Kakao Map (Web)", kmap),
			kakao.LinkButton("Apple Maps", amap),
		}
	}

	return kakao.BasicCard{
		Title:       title,
		Description: desc,
		Thumbnail:   &kakao.Thumbnail{ImageURL: mapMarkerThumb},
		Buttons:     buttons,
	}
}

// DirectionsGuide is the text bubble shown above the directions card.
func DirectionsGuide(lang string) string {
	if lang == "ko" {
		return "아래 버튼으로 지도에서 길찾기를 확인하세요."
	}
	return "Tap a button below to open directions."
}

type spot struct {
	title string
	desc  string
	img   string
	link  string
}

var defaultSpots = []spot{
	{
		title: "성산일출봉",
		desc:  "제주의 상징적 일출 명소이자 유네스코 세계자연유산.",
		img:   "https://api.cdn.visitjeju.net/photomng/imgpath/202009/10/2020091009043672295d3c-9b69-4a9b-a0ec-2d24f8e2df4c.jpg",
		link:  "https://map.kakao.com/?q=성산일출봉",
	},
	{
		title: "협재해변",
		desc:  "에메랄드빛 바다와 하얀 모래로 유명한 서제주 대표 해변.",
		img:   "https://api.cdn.visitjeju.net/photomng/imgpath/202103/19/20210319024335214f0668-5a4f-4d1e-b31a-7a773e9482b0.jpg",
		link:  "https://map.kakao.com/?q=협재해변",
	},
	{
		title: "한라산 국립공원",
		desc:  "대한민국 최고봉. 계절마다 다른 풍경과 다양한 탐방로.",
		img:   "https://api.cdn.visitjeju.net/photomng/imgpath/201910/14/2019101409570831a2c4ff-fc02-48fa-b4c9-25ad33d93a69.jpg",
		link:  "https://map.kakao.com/?q=한라산",
	},
}

// SpotsCarouselText is the bubble shown above the spots carousel.
const SpotsCarouselText = "제주 인기 명소 TOP 3를 추천드려요 🌴"

// SpotsCarousel returns the curated top-spots cards.
func SpotsCarousel() []kakao.BasicCard {
	cards := make([]kakao.BasicCard, 0, len(defaultSpots))
	for _, s := range defaultSpots {
		cards = append(cards, kakao.BasicCard{
			Title:       s.title,
			Description: s.desc,
			Thumbnail:   &kakao.Thumbnail{ImageURL: s.img},
			Buttons:     []kakao.Button{kakao.LinkButton("지도 보기", s.link)},
		})
	}
	return cards
}

// WeatherLinks are the official weather pages pulled from live search
// results. Either field may be empty.
type WeatherLinks struct {
	KMA   string
	Naver string
}

// PickWeatherLinks extracts the weather-service links from search
// result URLs, first hit per service wins.
func PickWeatherLinks(urls []string) WeatherLinks {
	var links WeatherLinks
	for _, u := range urls {
		if links.KMA == "" && (strings.Contains(u, "weather.go.kr") || strings.Contains(u, "kma.go.kr")) {
			links.KMA = u
		}
		if links.Naver == "" && strings.Contains(u, "search.naver.com") {
			links.Naver = u
		}
	}
	return links
}

// WeatherCard builds the live-weather card. With no usable links it
// still offers a generic search button so the card never renders empty.
func WeatherCard(links WeatherLinks, lang string) (guide string, card kakao.BasicCard) {
	var buttons []kakao.Button
	if links.KMA != "" {
		buttons = append(buttons, kakao.LinkButton("기상청 날씨", links.KMA))
	}
	if links.Naver != "" {
		buttons = append(buttons, kakao.LinkButton("네이버 날씨", links.Naver))
	}
	if len(buttons) == 0 {
		buttons = append(buttons, kakao.LinkButton("네이버 검색", "https://search.naver.com/search.naver?query=제주+날씨"))
	}

	if lang == "ko" {
		card = kakao.BasicCard{
			Title:       "제주 실시간 날씨",
			Description: "공식 페이지에서 현재 기온·강수·바람 정보를 확인하세요.",
			Buttons:     buttons,
		}
		return "아래 버튼을 눌러 확인하세요.", card
	}
	card = kakao.BasicCard{
		Title:       "Jeju Weather (Live)",
		Description: "Open the official page for real-time temperature, precipitation and wind.",
		Buttons:     buttons,
	}
	return "Tap a button to check live weather.", card
}
