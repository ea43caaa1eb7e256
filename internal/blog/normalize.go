package blog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const metaTitleMax = 60

var (
	// Any bracketed run this short is almost certainly a template stand-in
	// like "[specific detail]" rather than legitimate content.
	bracketPlaceholderRe = regexp.MustCompile(`\[[^\[\]]{1,60}\]`)
	rawBodyFieldRe       = regexp.MustCompile(`"body"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	strayBackslashTagRe  = regexp.MustCompile(`\\+([<>])`)
	strayBackslashRe     = regexp.MustCompile(`\\([^\\])`)
	embeddedFAQHeadingRe = regexp.MustCompile(`(?i)<h[23][^>]*>\s*(?:FAQs?|Frequently Asked Questions)[^<]*</h[23]>`)
	multiSpaceRe         = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunctRe   = regexp.MustCompile(`\s+([,.!?;:])`)
)

// fillerReplacements is a deterministic quality filter applied to every body,
// independent of whether the model obeyed the style instructions. Phrases are
// replaced case-insensitively; most are simply removed.
var fillerReplacements = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile(`(?i)\bwhen it comes to\b`), "for"},
	{regexp.MustCompile(`(?i)look no further(?: than)?[,.!]?\s*`), ""},
	{regexp.MustCompile(`(?i)\bsecond to none\b`), "unmatched"},
	{regexp.MustCompile(`(?i)\bin today's (?:world|market|economy)\b,?\s*`), ""},
	{regexp.MustCompile(`(?i)\bin conclusion\b,?\s*`), ""},
	{regexp.MustCompile(`(?i)\bone-stop shop\b`), "single provider"},
	{regexp.MustCompile(`(?i)\btop-notch\b`), "quality"},
	{regexp.MustCompile(`(?i)\bstate-of-the-art\b`), "modern"},
	{regexp.MustCompile(`(?i)your satisfaction is our (?:top )?priority[,.!]?\s*`), ""},
	{regexp.MustCompile(`(?i)we(?:'ve| have) got you covered[,.!]?\s*`), ""},
	{regexp.MustCompile(`(?i)\bhassle-free\b`), "straightforward"},
	{regexp.MustCompile(`(?i)\bpeace of mind\b`), "confidence"},
	{regexp.MustCompile(`(?i)\brest assured\b,?\s*`), ""},
	{regexp.MustCompile(`(?i)\bgame-changer\b`), "major improvement"},
	{regexp.MustCompile(`(?i)\bunlock the (?:full )?potential of\b`), "get the most from"},
	{regexp.MustCompile(`(?i)\belevate your\b`), "improve your"},
	{regexp.MustCompile(`(?i)\bseamless experience\b`), "smooth experience"},
	{regexp.MustCompile(`(?i)\bneedless to say\b,?\s*`), ""},
	{regexp.MustCompile(`(?i)\bat the end of the day\b,?\s*`), ""},
	{regexp.MustCompile(`(?i)\bwhether you(?:'re| are) looking to\b`), "if you want to"},
}

// normalizeResult guarantees every required field of the result, falling back
// per field: parsed value (unless it looks like a placeholder), alternate
// keys, a raw-text rescue for the body, then a deterministic value derived
// from the request. The parsed map is untrusted and discarded afterwards.
func normalizeResult(parsed map[string]any, raw string, req *GenerationRequest, report *ValidationReport) *GenerationResult {
	out := &GenerationResult{}

	title := stringField(parsed, "title")
	if isPlaceholderTitle(title, req) {
		report.AddWarning("model returned placeholder title, synthesizing from request")
		title = ""
	}
	if title == "" {
		title = stringField(parsed, "meta_title")
	}
	if title == "" {
		title = fmt.Sprintf("%s - %s", req.Keyword, req.CompanyName)
	}
	out.Title = strings.TrimSpace(title)

	h1 := stringField(parsed, "h1")
	if h1 == "" || isPlaceholderTitle(h1, req) {
		h1 = out.Title
	}
	out.H1 = strings.TrimSpace(h1)

	metaTitle := stringField(parsed, "meta_title")
	if metaTitle == "" {
		metaTitle = truncate(out.Title, metaTitleMax)
	}
	out.MetaTitle = strings.TrimSpace(metaTitle)

	out.MetaDescription = strings.TrimSpace(stringField(parsed, "meta_description"))

	body, rescued := extractBody(parsed, raw)
	if rescued {
		report.AddWarning("body recovered from raw model text after JSON parse failure")
	}
	out.Body = CleanBody(body)

	out.FAQItems = normalizeFAQItems(parsed)
	out.Tags = normalizeTags(parsed)
	out.CTA = normalizeCTA(parsed, req)

	return out
}

// stringField fetches a trimmed string value, tolerating missing keys and
// non-string values.
func stringField(parsed map[string]any, key string) string {
	v, ok := parsed[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// isPlaceholderTitle detects template stand-ins: bracketed instructions, a
// title that is just the bare keyword, or the literal "keyword | company"
// scaffold from the prompt example. The boundary between placeholder and
// legitimately short content is heuristic by design.
func isPlaceholderTitle(title string, req *GenerationRequest) bool {
	if title == "" {
		return false
	}
	if bracketPlaceholderRe.MatchString(title) {
		return true
	}
	t := strings.ToLower(strings.TrimSpace(title))
	kw := strings.ToLower(strings.TrimSpace(req.Keyword))
	if t == kw {
		return true
	}
	return t == kw+" | "+strings.ToLower(strings.TrimSpace(req.CompanyName))
}

// containsPlaceholder reports whether s contains bracket-delimited template
// text like "[specific detail]".
func containsPlaceholder(s string) bool {
	return bracketPlaceholderRe.MatchString(s)
}

// extractBody resolves the article body across the canonical key, the
// alternate keys models sometimes rename it to, and the raw-text rescue.
// The second return reports whether the rescue path produced the body.
func extractBody(parsed map[string]any, raw string) (string, bool) {
	body := stringField(parsed, "body")
	if body == "" {
		for _, alt := range []string{"html", "content", "article", "text"} {
			if body = stringField(parsed, alt); body != "" {
				break
			}
		}
	}
	if body != "" {
		return body, false
	}
	// Last resort: the overall JSON failed to parse but the body field
	// itself may be intact inside the raw text.
	body = extractBodyFromRaw(raw)
	return body, body != ""
}

// extractBodyFromRaw pulls a well-formed "body": "..." value straight out of
// otherwise unparseable text.
func extractBodyFromRaw(raw string) string {
	m := rawBodyFieldRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &s); err != nil {
		// The captured run had an invalid escape; use it literally and let
		// CleanBody strip the artifacts.
		s = m[1]
	}
	return s
}

// CleanBody strips residual escape artifacts, embedded FAQ sections, and
// the generic-filler denylist from HTML body content. It runs on the initial
// body and on every continuation fragment.
func CleanBody(body string) string {
	if body == "" {
		return body
	}

	body = strings.ReplaceAll(body, `\n`, "\n")
	body = strings.ReplaceAll(body, `\r`, "")
	body = strings.ReplaceAll(body, `\/`, "/")
	body = strings.ReplaceAll(body, `\"`, `"`)
	body = strings.ReplaceAll(body, `\'`, "'")
	body = strayBackslashTagRe.ReplaceAllString(body, "$1")
	body = strayBackslashRe.ReplaceAllString(body, "$1")
	body = strings.ReplaceAll(body, `\`, "")

	body = stripEmbeddedFAQ(body)
	body = stripFillerPhrases(body)

	return strings.TrimSpace(body)
}

// stripEmbeddedFAQ removes a FAQ section the model put in the body despite
// being told FAQs belong only in faq_items. The cut runs from the FAQ
// heading to the next <h2> or, when the section is last, to the end.
func stripEmbeddedFAQ(body string) string {
	loc := embeddedFAQHeadingRe.FindStringIndex(body)
	if loc == nil {
		return body
	}
	rest := body[loc[1]:]
	if next := strings.Index(rest, "<h2"); next != -1 {
		return body[:loc[0]] + rest[next:]
	}
	return strings.TrimSpace(body[:loc[0]])
}

// stripFillerPhrases applies the denylist substitutions and tidies the
// whitespace and punctuation the removals leave behind.
func stripFillerPhrases(s string) string {
	for _, f := range fillerReplacements {
		s = f.re.ReplaceAllString(s, f.with)
	}
	s = spaceBeforePunctRe.ReplaceAllString(s, "$1")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	// Sentences that began with a removed phrase are left starting
	// lowercase after "<p>", which reads as a tell; fix the first letter.
	s = fixParagraphCase(s)
	return s
}

var paragraphStartRe = regexp.MustCompile(`(<p[^>]*>)([a-z])`)

func fixParagraphCase(s string) string {
	return paragraphStartRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := paragraphStartRe.FindStringSubmatch(m)
		return sub[1] + strings.ToUpper(sub[2])
	})
}

func normalizeFAQItems(parsed map[string]any) []FAQItem {
	raw, ok := parsed["faq_items"]
	if !ok {
		raw = parsed["faq"]
	}
	list, ok := raw.([]any)
	if !ok {
		return []FAQItem{}
	}

	items := make([]FAQItem, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		q, _ := m["question"].(string)
		a, _ := m["answer"].(string)
		q = strings.TrimSpace(q)
		a = strings.TrimSpace(a)
		if q == "" || a == "" {
			continue
		}
		items = append(items, FAQItem{Question: q, Answer: CleanBody(a)})
	}
	return items
}

func normalizeTags(parsed map[string]any) []string {
	list, ok := parsed["tags"].([]any)
	if !ok {
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, entry := range list {
		if s, ok := entry.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
	}
	return tags
}

func normalizeCTA(parsed map[string]any, req *GenerationRequest) CTA {
	cta := CTA{
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Email:       req.Email,
	}
	m, ok := parsed["cta"].(map[string]any)
	if !ok {
		return cta
	}
	if v, ok := m["company_name"].(string); ok && strings.TrimSpace(v) != "" {
		cta.CompanyName = strings.TrimSpace(v)
	}
	if v, ok := m["phone"].(string); ok && strings.TrimSpace(v) != "" {
		cta.Phone = strings.TrimSpace(v)
	}
	if v, ok := m["email"].(string); ok && strings.TrimSpace(v) != "" {
		cta.Email = strings.TrimSpace(v)
	}
	return cta
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
