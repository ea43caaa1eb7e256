package blog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seoscribe/seoscribe-api/internal/logger"
)

// FixLocaleConsistency repairs location-name errors across every text field
// of a result. Three passes, each idempotent:
//
//  1. If the configured city differs from the keyword-derived city, every
//     occurrence of the configured city is replaced with the correct one.
//  2. Any other recognized city from the gazetteer found in body or FAQ text
//     is replaced with the correct city (the model sometimes hallucinates an
//     unrelated city).
//  3. Repeated city/region mentions inside a single heading or title
//     ("... in Sarasota in Sarasota") collapse to one, with whitespace and
//     punctuation repaired.
//
// The gazetteer is finite, so pass 2 is best-effort: an unlisted wrong city
// cannot be detected.
func FixLocaleConsistency(result *GenerationResult, configuredCity, correctCity, region string, knownCities []string) {
	if correctCity == "" {
		return
	}

	if configuredCity != "" && !strings.EqualFold(configuredCity, correctCity) {
		logger.Info("replacing wrong city", logger.Fields{
			"configured": configuredCity, "correct": correctCity,
		})
		replaceCityEverywhere(result, configuredCity, correctCity)
	}

	sweepKnownCities(result, correctCity, knownCities)
	collapseDuplicateLocations(result, correctCity, region)
}

// replaceCityEverywhere swaps one city name for another, case-insensitively,
// in every text field including FAQ questions and answers.
func replaceCityEverywhere(result *GenerationResult, from, to string) {
	re := cityPattern(from)
	to = titleCase(strings.ToLower(to))

	result.Title = re.ReplaceAllString(result.Title, to)
	result.H1 = re.ReplaceAllString(result.H1, to)
	result.MetaTitle = re.ReplaceAllString(result.MetaTitle, to)
	result.MetaDescription = re.ReplaceAllString(result.MetaDescription, to)
	result.Body = re.ReplaceAllString(result.Body, to)
	for i := range result.FAQItems {
		result.FAQItems[i].Question = re.ReplaceAllString(result.FAQItems[i].Question, to)
		result.FAQItems[i].Answer = re.ReplaceAllString(result.FAQItems[i].Answer, to)
	}
}

// sweepKnownCities replaces any recognized city other than the correct one
// in body and FAQ text.
func sweepKnownCities(result *GenerationResult, correctCity string, knownCities []string) {
	correctLower := strings.ToLower(correctCity)
	for _, city := range knownCities {
		if city == correctLower {
			continue
		}
		// A city whose name is contained in the correct one ("venice" vs
		// "venice gardens") would mangle it; skip those.
		if strings.Contains(correctLower, city) {
			continue
		}
		re := cityPattern(city)
		if !re.MatchString(result.Body) && !faqMentions(result.FAQItems, re) {
			continue
		}
		logger.Warn("unexpected city found in generated text, correcting", logger.Fields{
			"found": city, "correct": correctCity,
		})
		result.Body = re.ReplaceAllString(result.Body, correctCity)
		for i := range result.FAQItems {
			result.FAQItems[i].Question = re.ReplaceAllString(result.FAQItems[i].Question, correctCity)
			result.FAQItems[i].Answer = re.ReplaceAllString(result.FAQItems[i].Answer, correctCity)
		}
	}
}

func faqMentions(items []FAQItem, re *regexp.Regexp) bool {
	for _, item := range items {
		if re.MatchString(item.Question) || re.MatchString(item.Answer) {
			return true
		}
	}
	return false
}

// collapseDuplicateLocations removes repeated city/region mentions within
// titles and headings, e.g. "AC Repair in Sarasota in Sarasota: Benefits"
// or "... in Florida in Sarasota".
func collapseDuplicateLocations(result *GenerationResult, city, region string) {
	result.Title = collapseDuplicateLocation(result.Title, city, region)
	result.H1 = collapseDuplicateLocation(result.H1, city, region)
	result.MetaTitle = collapseDuplicateLocation(result.MetaTitle, city, region)
	result.MetaDescription = collapseDuplicateLocation(result.MetaDescription, city, region)

	doc := ParseDocument(result.Body)
	changed := false
	for i, b := range doc.Blocks() {
		if b.Tag != "h2" && b.Tag != "h3" {
			continue
		}
		text := HeadingText(b)
		fixed := collapseDuplicateLocation(text, city, region)
		if fixed != text {
			doc.Replace(i, b.Tag, WithHeadingText(b, fixed).HTML)
			changed = true
		}
	}
	if changed {
		result.Body = doc.String()
	}
}

// collapseDuplicateLocation collapses "in City in City" and
// "in Region in City" runs inside one string and tidies the leftovers.
func collapseDuplicateLocation(text, city, region string) string {
	if city == "" || text == "" {
		return text
	}
	cityEsc := regexp.QuoteMeta(city)

	// "in City, Region in City" / "in City in City" -> "in City(, Region)"
	dupCity := regexp.MustCompile(fmt.Sprintf(
		`(?i)\b(in|near|for)\s+%s((?:\s*,\s*\w[\w .]*)?)\s+(?:in|near)\s+%s\b`, cityEsc, cityEsc))
	var dupRegion *regexp.Regexp
	if region != "" {
		regionEsc := regexp.QuoteMeta(region)
		// "in Region in City" -> "in City"
		dupRegion = regexp.MustCompile(fmt.Sprintf(
			`(?i)\b(in|near|for)\s+%s\s+(?:in|near)\s+(%s)\b`, regionEsc, cityEsc))
	}

	// A single replacement pass leaves one duplicate behind for runs of three
	// or more mentions; repeat until the text stops changing.
	for {
		next := dupCity.ReplaceAllString(text, "$1 "+city+"$2")
		if dupRegion != nil {
			next = dupRegion.ReplaceAllString(next, "$1 $2")
		}
		if next == text {
			break
		}
		text = next
	}

	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = spaceBeforePunctRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// cityPattern builds a case-insensitive whole-word matcher for a city name.
func cityPattern(city string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(city) + `\b`)
}
