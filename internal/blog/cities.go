package blog

import "strings"

// DefaultKnownCities is the service-area gazetteer used to detect the target
// city inside a keyword and to sweep hallucinated cities out of generated
// text. It is finite, so "no wrong city present" is best-effort: a city not
// listed here cannot be detected or corrected. Callers with broader coverage
// can supply their own list to NewGenerator.
var DefaultKnownCities = []string{
	"sarasota", "port charlotte", "fort myers", "naples", "tampa", "orlando",
	"jacksonville", "miami", "bradenton", "venice", "punta gorda", "north port",
	"cape coral", "bonita springs", "estero", "lehigh acres", "englewood",
	"arcadia", "nokomis", "osprey", "lakewood ranch", "palmetto", "ellenton",
	"parrish", "ruskin", "sun city center", "apollo beach", "brandon", "riverview",
	"clearwater", "st petersburg", "largo", "pinellas park", "dunedin",
}

// detectCityInKeyword returns the first known city found in the keyword,
// title-cased, or "" when none matches. Multi-word city names match as a
// whole; a single leading word of a multi-word city ("port" in "port
// charlotte") is not enough on its own.
func detectCityInKeyword(keyword string, cities []string) string {
	kw := strings.ToLower(keyword)
	for _, city := range cities {
		if strings.Contains(kw, city) {
			return titleCase(city)
		}
	}
	return ""
}

// keywordContainsCity reports whether the keyword already names the target
// city, either as an exact substring or by its first word for multi-word
// city names ("Port Charlotte" matches a keyword containing "port").
// Downstream stages use this to suppress redundant city injection.
func keywordContainsCity(keyword, city string) bool {
	if city == "" {
		return false
	}
	kw := strings.ToLower(keyword)
	c := strings.ToLower(city)
	if strings.Contains(kw, c) {
		return true
	}
	if first, _, ok := strings.Cut(c, " "); ok {
		return strings.Contains(kw, first)
	}
	return false
}

// titleCase upper-cases the first letter of each space-separated word.
// strings.Title is deprecated and cases punctuation-adjacent runes
// differently from what city names need.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
