package blog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seoscribe/seoscribe-api/internal/logger"
)

const (
	metaTitleMin = 50
	metaDescMin  = 150
	metaDescMax  = 160

	minInternalLinks = 3
	minCityHeadings  = 3
	maxHeadingFixes  = 3
	minCTABlocks     = 2
	// ctaMinGapChars keeps two CTA blocks from clustering.
	ctaMinGapChars = 1500
	// The soft CTA lands at the first heading boundary in this band of the
	// document length.
	softCTALowFrac  = 0.30
	softCTAHighFrac = 0.40

	// ctaMarker is the structural marker CTA blocks are counted by.
	ctaMarker = `class="cta`
)

var (
	anchorTagRe   = regexp.MustCompile(`(?i)<a\s+href=`)
	twoLetterWord = regexp.MustCompile(`\b([A-Z][a-z])\b`)
)

// metaTitleModifiers are tried combinatorially when the model's meta title
// misses the length band.
var metaTitlePrefixes = []string{"", "Expert ", "Professional ", "Trusted ", "Top Local "}
var metaTitleSuffixes = []string{"Services", "Experts", "Specialists", "Company"}

// headingCityTemplates rewrite H2s that should mention the city.
var headingCityTemplates = []string{
	"%s in %s",
	"%s for %s Residents",
	"%s Near %s",
}

// excludedHeadingCategories are H2s never rewritten with a city mention.
var excludedHeadingCategories = []string{
	"faq", "frequently asked", "conclusion", "get started", "final thoughts",
}

// ApplySeoFixes enforces the SEO contract on a normalized result: meta tag
// length bands, internal link density, city coverage in headings, and CTA
// placement. Fixes that cannot be satisfied degrade to best effort and a
// report warning; nothing here fails generation.
func ApplySeoFixes(result *GenerationResult, req *GenerationRequest, city string, keywordHasCity bool) {
	fixH1(result, req, city)
	fixMetaTitle(result, req, city)
	fixMetaDescription(result, req, city)

	doc := ParseDocument(result.Body)
	injectInternalLinks(doc, result, req)
	if !keywordHasCity {
		ensureCityHeadings(doc, result, city)
	}
	ensureCTABlocks(doc, result, req, city)
	result.Body = doc.String()
	fixRegionAbbreviation(result, req.Region)
}

// fixH1 guarantees the keyword appears in the H1.
func fixH1(result *GenerationResult, req *GenerationRequest, city string) {
	if strings.Contains(strings.ToLower(result.H1), strings.ToLower(req.Keyword)) {
		return
	}
	result.H1 = fmt.Sprintf("%s - Expert Service in %s", titleCase(strings.ToLower(req.Keyword)), city)
	result.Report.AddWarning("h1 was missing the keyword and has been rewritten")
}

// fixMetaTitle accepts an in-band model value, otherwise synthesizes one by
// trying prefix/suffix modifiers against the keyword until a candidate fits
// 50-60 characters, falling back to truncation with an ellipsis.
func fixMetaTitle(result *GenerationResult, req *GenerationRequest, city string) {
	current := strings.TrimSpace(result.MetaTitle)
	if current != "" && !containsPlaceholder(current) &&
		len(current) >= metaTitleMin && len(current) <= metaTitleMax {
		return
	}

	kw := titleCase(strings.ToLower(req.Keyword))
	candidates := []string{
		fmt.Sprintf("%s | %s", kw, req.CompanyName),
		fmt.Sprintf("%s in %s | %s", kw, city, req.CompanyName),
	}
	for _, prefix := range metaTitlePrefixes {
		for _, suffix := range metaTitleSuffixes {
			candidates = append(candidates,
				fmt.Sprintf("%s%s %s | %s", prefix, kw, suffix, req.CompanyName),
				fmt.Sprintf("%s%s %s in %s", prefix, kw, suffix, city),
			)
		}
	}
	for _, c := range candidates {
		if len(c) >= metaTitleMin && len(c) <= metaTitleMax {
			result.MetaTitle = c
			return
		}
	}

	// Nothing landed in the band; keep the <= 60 bound via truncation.
	best := current
	if best == "" {
		best = candidates[0]
	}
	if len(best) > metaTitleMax {
		best = best[:metaTitleMax-3] + "..."
	}
	result.MetaTitle = best
	result.Report.AddWarning("no meta title candidate fit the 50-60 character band")
	logger.Warn("meta title band unsatisfiable", logger.Fields{"keyword": req.Keyword})
}

// metaDescriptionTemplates are parameterized by a shortened service phrase
// (not the full raw keyword) and a phone call to action.
func metaDescriptionCandidates(service, city, region, company, phone string) []string {
	cityRegion := strings.Trim(city+", "+region, ", ")
	call := "Call today for a free estimate."
	if phone != "" {
		call = fmt.Sprintf("Call %s for a free estimate.", phone)
	}
	return []string{
		fmt.Sprintf("Professional %s in %s. %s offers fast, reliable service from licensed local technicians. %s", service, cityRegion, company, call),
		fmt.Sprintf("Looking for %s in %s? %s delivers honest pricing, quality workmanship, and friendly local service. %s", service, cityRegion, company, call),
		fmt.Sprintf("%s provides expert %s throughout %s with upfront quotes and guaranteed workmanship from a trusted local team. %s", company, service, cityRegion, call),
	}
}

// fixMetaDescription accepts an in-band value, otherwise synthesizes one
// targeting 150-160 characters.
func fixMetaDescription(result *GenerationResult, req *GenerationRequest, city string) {
	current := strings.TrimSpace(result.MetaDescription)
	if current != "" && !containsPlaceholder(current) &&
		len(current) >= metaDescMin && len(current) <= metaDescMax {
		return
	}

	service := servicePhrase(req.Keyword, city)
	best := ""
	for _, c := range metaDescriptionCandidates(service, city, req.Region, req.CompanyName, req.Phone) {
		if len(c) >= metaDescMin && len(c) <= metaDescMax {
			result.MetaDescription = c
			return
		}
		if len(best) == 0 || lengthDistance(c) < lengthDistance(best) {
			best = c
		}
	}
	if current != "" && lengthDistance(current) < lengthDistance(best) {
		best = current
	}
	if len(best) > metaDescMax {
		best = best[:metaDescMax-3] + "..."
	}
	result.MetaDescription = best
	result.Report.AddWarning("no meta description candidate fit the 150-160 character band")
}

// lengthDistance scores how far a candidate is from the description band.
func lengthDistance(s string) int {
	if len(s) < metaDescMin {
		return metaDescMin - len(s)
	}
	if len(s) > metaDescMax {
		return len(s) - metaDescMax
	}
	return 0
}

// servicePhrase shortens a keyword to its service part by stripping the
// city's words, so "ac repair port charlotte" becomes "ac repair".
func servicePhrase(keyword, city string) string {
	phrase := strings.ToLower(keyword)
	for _, word := range strings.Fields(strings.ToLower(city)) {
		phrase = regexp.MustCompile(`\b`+regexp.QuoteMeta(word)+`\b`).ReplaceAllString(phrase, "")
	}
	phrase = strings.Join(strings.Fields(phrase), " ")
	if phrase == "" {
		return strings.ToLower(keyword)
	}
	return phrase
}

// injectInternalLinks tops the body up to three internal links, first with
// inline contextual sentences after spread-out paragraphs, then with a
// trailing "Related Articles" list for whatever remains.
func injectInternalLinks(doc *Document, result *GenerationResult, req *GenerationRequest) {
	have := len(anchorTagRe.FindAllString(doc.String(), -1))
	if have >= minInternalLinks || len(req.InternalLinks) == 0 {
		return
	}

	var candidates []InternalLink
	serialized := doc.String()
	for _, link := range req.InternalLinks {
		if link.URL == "" || link.Title == "" || strings.Contains(serialized, link.URL) {
			continue
		}
		candidates = append(candidates, link)
	}
	need := minInternalLinks - have
	if need > len(candidates) {
		need = len(candidates)
	}
	if need == 0 {
		return
	}
	logger.Info("injecting internal links", logger.Fields{
		"keyword": req.Keyword, "existing": have, "adding": need,
	})

	// Paragraph boundaries to hang contextual sentences on, spread across
	// the article.
	var paragraphs []int
	for i, b := range doc.Blocks() {
		if b.Tag == "p" {
			paragraphs = append(paragraphs, i)
		}
	}

	inserted := 0
	if len(paragraphs) >= need {
		step := len(paragraphs) / (need + 1)
		if step == 0 {
			step = 1
		}
		// Insert back to front so earlier indices stay valid.
		for n := need - 1; n >= 0; n-- {
			idx := paragraphs[(n+1)*step-1]
			link := candidates[n]
			sentence := fmt.Sprintf(`<p>For more on this topic, see our guide to <a href="%s">%s</a>.</p>`, link.URL, link.Title)
			doc.InsertAfter(idx, "p", sentence)
			inserted++
		}
	}

	if rest := candidates[inserted:]; len(rest) > 0 && inserted < need {
		var sb strings.Builder
		sb.WriteString("<ul>\n")
		for _, link := range rest {
			fmt.Fprintf(&sb, `<li><a href="%s">%s</a></li>`+"\n", link.URL, link.Title)
		}
		sb.WriteString("</ul>")
		doc.Append("h2", "<h2>Related Articles</h2>")
		doc.Append("ul", sb.String())
	}
}

// ensureCityHeadings makes at least three H2s mention the city when the
// keyword itself does not, rewriting eligible headings with positional
// templates. FAQ and conclusion-type headings are never touched.
func ensureCityHeadings(doc *Document, result *GenerationResult, city string) {
	cityLower := strings.ToLower(city)
	have := 0
	var eligible []int
	for i, b := range doc.Blocks() {
		if b.Tag != "h2" {
			continue
		}
		text := HeadingText(b)
		if text == "" {
			continue
		}
		if strings.Contains(strings.ToLower(text), cityLower) {
			have++
			continue
		}
		if excludedHeading(text) {
			continue
		}
		eligible = append(eligible, i)
	}
	if have >= minCityHeadings {
		return
	}

	fixes := minCityHeadings - have
	if fixes > maxHeadingFixes {
		fixes = maxHeadingFixes
	}
	if fixes > len(eligible) {
		fixes = len(eligible)
	}
	for n := 0; n < fixes; n++ {
		i := eligible[n]
		b := doc.Blocks()[i]
		text := HeadingText(b)
		rewritten := fmt.Sprintf(headingCityTemplates[n%len(headingCityTemplates)], text, city)
		doc.Replace(i, b.Tag, WithHeadingText(b, rewritten).HTML)
	}
	if fixes > 0 {
		logger.Info("rewrote headings for city coverage", logger.Fields{
			"city": city, "rewritten": fixes,
		})
	}
}

func excludedHeading(text string) bool {
	lower := strings.ToLower(text)
	for _, cat := range excludedHeadingCategories {
		if strings.Contains(lower, cat) {
			return true
		}
	}
	return false
}

// ensureCTABlocks guarantees at least two CTA blocks: a soft one at a
// heading boundary 30-40% into the document and a strong closing one,
// keeping a minimum character gap between any two.
func ensureCTABlocks(doc *Document, result *GenerationResult, req *GenerationRequest, city string) {
	serialized := doc.String()
	have := strings.Count(serialized, ctaMarker)
	if have >= minCTABlocks {
		return
	}

	service := servicePhrase(req.Keyword, city)
	company := result.CTA.CompanyName
	phone := result.CTA.Phone
	email := result.CTA.Email

	total := doc.TotalChars()
	var ctaOffsets []int
	for i, b := range doc.Blocks() {
		if strings.Contains(b.HTML, ctaMarker) {
			ctaOffsets = append(ctaOffsets, doc.CharOffset(i))
		}
	}

	// Soft CTA: first heading boundary inside the 30-40% band, provided it
	// keeps its distance from existing CTAs.
	if have == 0 {
		low := int(float64(total) * softCTALowFrac)
		high := int(float64(total) * softCTAHighFrac)
		for i, b := range doc.Blocks() {
			if b.Tag != "h2" {
				continue
			}
			offset := doc.CharOffset(i)
			if offset < low {
				continue
			}
			if offset > high {
				break
			}
			if !clearOfCTAs(offset, ctaOffsets) {
				continue
			}
			soft := fmt.Sprintf(
				`<div class="cta cta-soft"><p>Dealing with %s issues in %s? %s is just a phone call away at %s.</p></div>`,
				service, city, company, phone)
			doc.InsertBefore(i, "div", soft)
			ctaOffsets = append(ctaOffsets, offset)
			break
		}
	}

	// Strong closing CTA at 100% of document length.
	if clearOfCTAs(doc.TotalChars(), ctaOffsets) {
		strong := fmt.Sprintf(
			`<div class="cta cta-strong"><h2>Ready to Get Started?</h2><p>Contact %s today at %s or email %s for a free estimate on %s in %s.</p></div>`,
			company, phone, email, service, city)
		doc.Append("div", strong)
	}
}

// clearOfCTAs reports whether offset keeps the minimum gap from every
// existing CTA block.
func clearOfCTAs(offset int, ctaOffsets []int) bool {
	for _, o := range ctaOffsets {
		gap := offset - o
		if gap < 0 {
			gap = -gap
		}
		if gap < ctaMinGapChars {
			return false
		}
	}
	return true
}

// fixRegionAbbreviation upper-cases a two-letter region ("Fl" -> "FL") in
// the meta fields.
func fixRegionAbbreviation(result *GenerationResult, region string) {
	if len(region) != 2 {
		return
	}
	upper := strings.ToUpper(region)
	fix := func(s string) string {
		return twoLetterWord.ReplaceAllStringFunc(s, func(m string) string {
			if strings.EqualFold(m, upper) {
				return upper
			}
			return m
		})
	}
	result.MetaTitle = fix(result.MetaTitle)
	result.MetaDescription = fix(result.MetaDescription)
}
