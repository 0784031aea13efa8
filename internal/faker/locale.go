package faker

import "golang.org/x/text/language"

// localeData holds the word lists a locale contributes to the catalog.
type localeData struct {
	firstNames   []string
	lastNames    []string
	nameOrder    func(first, last string) string
	cities       []string
	streets      []string
	addressFmt   func(g *Generator, street, city string) string
	phoneFmt     func(g *Generator) string
	companies    []string
	jobTitles    []string
	titles       []string
	sentences    []string
	words        []string
	colors       []string
	countries    []string
	emailDomains []string
}

var supported = []language.Tag{language.Korean, language.English}

// matcher falls back to the first supported tag, so unknown locales get ko.
var matcher = language.NewMatcher(supported)

var locales = map[language.Tag]*localeData{
	language.Korean:  korean,
	language.English: english,
}

// ResolveLocale maps any BCP 47 tag (ko-KR, en_US, "") onto a bundled one.
func ResolveLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

var korean = &localeData{
	firstNames: []string{"민준", "서연", "도윤", "지우", "하준", "서윤", "시우", "하은", "주원", "지민", "예준", "수아"},
	lastNames:  []string{"김", "이", "박", "최", "정", "강", "조", "윤", "장", "임", "한", "오"},
	nameOrder:  func(first, last string) string { return last + first },
	cities:     []string{"서울특별시", "부산광역시", "대구광역시", "인천광역시", "광주광역시", "대전광역시", "울산광역시", "수원시"},
	streets:    []string{"테헤란로", "세종대로", "올림픽로", "강남대로", "해운대로", "중앙로", "동성로", "한밭대로"},
	addressFmt: func(g *Generator, street, city string) string {
		return city + " " + street + " " + g.digits(1, 3)
	},
	phoneFmt: func(g *Generator) string {
		return "010-" + g.digits(4, 4) + "-" + g.digits(4, 4)
	},
	companies: []string{"한빛전자", "푸른물산", "새솔소프트", "누리통신", "다온식품", "가람건설", "별빛제약", "온새미로"},
	jobTitles: []string{"사원", "주임", "대리", "과장", "차장", "부장", "팀장", "이사"},
	titles: []string{
		"데이터베이스 설계 입문",
		"Go 언어로 시작하는 백엔드",
		"효율적인 인덱스 전략",
		"클라우드 아키텍처 기초",
		"테스트 주도 개발 실전",
		"대용량 트래픽 처리 사례",
	},
	sentences: []string{
		"테스트 목적으로 생성된 샘플 문장입니다.",
		"오늘은 날씨가 맑고 화창합니다.",
		"주문하신 상품이 곧 배송될 예정입니다.",
		"서비스 이용에 불편을 드려 죄송합니다.",
		"새로운 기능이 추가되었습니다.",
	},
	words:        []string{"사과", "바다", "하늘", "구름", "나무", "별", "바람", "노을"},
	colors:       []string{"빨강", "주황", "노랑", "초록", "파랑", "남색", "보라", "검정", "하양"},
	countries:    []string{"대한민국", "일본", "미국", "캐나다", "독일", "프랑스", "호주", "베트남"},
	emailDomains: []string{"naver.com", "daum.net", "gmail.com", "kakao.com", "example.com"},
}

var english = &localeData{
	firstNames: []string{"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"},
	lastNames:  []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"},
	nameOrder:  func(first, last string) string { return first + " " + last },
	cities:     []string{"Springfield", "Riverside", "Franklin", "Greenville", "Bristol", "Clinton", "Fairview", "Salem"},
	streets:    []string{"Main Street", "Oak Avenue", "Pine Road", "Maple Lane", "Cedar Drive", "Elm Street", "Lake View", "Hill Road"},
	addressFmt: func(g *Generator, street, city string) string {
		return g.digits(1, 4) + " " + street + ", " + city + " " + g.digits(5, 5)
	},
	phoneFmt: func(g *Generator) string {
		return "+1-" + g.digits(3, 3) + "-" + g.digits(3, 3) + "-" + g.digits(4, 4)
	},
	companies: []string{"Acme Corp", "Globex", "Initech", "Umbrella", "Hooli", "Vandelay Industries", "Stark Labs", "Wayne Enterprises"},
	jobTitles: []string{"Engineer", "Analyst", "Manager", "Designer", "Consultant", "Director", "Administrator", "Developer"},
	titles: []string{
		"Getting Started with Go",
		"Understanding Databases",
		"Web Development Best Practices",
		"Introduction to APIs",
		"Modern Software Architecture",
		"Cloud Computing Basics",
		"Data Structures and Algorithms",
		"Machine Learning Fundamentals",
	},
	sentences: []string{
		"This is a sample text generated for testing purposes.",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"The quick brown fox jumps over the lazy dog.",
		"Software development requires careful planning and execution.",
		"Database design is crucial for application performance.",
	},
	words:        []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"},
	colors:       []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet", "black", "white"},
	countries:    []string{"United States", "Canada", "United Kingdom", "Germany", "France", "Japan", "Australia", "Korea"},
	emailDomains: []string{"example.com", "test.com", "demo.com", "mail.com"},
}
