package blog

import (
	"fmt"
	"strings"
)

const (
	// maxPromptLinks caps how many inventory links are listed in the prompt.
	maxPromptLinks = 6
	// continuationTailChars is how much of the existing body the continuation
	// prompt replays so the model can pick up where it left off.
	continuationTailChars = 1500
	// defaultFAQCount is used when the request does not specify one.
	defaultFAQCount = 5
)

// systemPrompt is fixed for every request. User-supplied values are never
// interpolated here so a hostile keyword cannot rewrite the writing rules.
const systemPrompt = `You are a professional SEO content writer for local service businesses. Return ONLY valid JSON. No markdown code blocks, no commentary before or after the JSON object.

WRITING RULES:
- Write original, specific, human-sounding content. No fluff, no keyword stuffing.
- Use short paragraphs (2-4 sentences) and concrete details a homeowner would care about.
- Convert all titles to Proper Title Case.
- Use valid HTML in the body: <h2>, <h3>, <p>, <ul>, <li>, <a> only.

AVOID THESE PHRASES (never use them):
"when it comes to", "look no further", "second to none", "in today's world", "in conclusion", "one-stop shop", "top-notch", "state-of-the-art", "your satisfaction is our priority", "we've got you covered", "hassle-free", "peace of mind", "look out for", "rest assured", "game-changer", "unlock the potential", "elevate your", "seamless experience".

INSTRUCTIONS FOR TAGS:
Produce 3-6 short topical tags (2-3 words each, Proper Case) describing the post for the CMS. Do not include the city in every tag.`

// continuationSystemPrompt steers follow-up calls that extend an article.
const continuationSystemPrompt = `You are an expert SEO content writer continuing an existing article. Return ONLY valid JSON with a single body_append key containing new HTML content. No markdown code blocks.`

// PromptBuilder assembles the system and per-request prompts for blog
// generation. It has no state and no side effects.
type PromptBuilder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemPrompt returns the fixed style/rules prompt.
func (b *PromptBuilder) SystemPrompt() string {
	return systemPrompt
}

// ContinuationSystemPrompt returns the fixed prompt for continuation calls.
func (b *PromptBuilder) ContinuationSystemPrompt() string {
	return continuationSystemPrompt
}

// UserPrompt builds the per-request prompt. city is the corrected target
// city (which may differ from req.City when the keyword names another one).
func (b *PromptBuilder) UserPrompt(req *GenerationRequest, city string) string {
	region := req.Region
	if len(region) == 2 {
		region = strings.ToUpper(region)
	}
	cityRegion := strings.Trim(city+", "+region, ", ")

	industry := req.Industry
	if industry == "" {
		industry = "Professional Service"
	}

	faqCount := req.FAQCount
	if faqCount <= 0 {
		faqCount = defaultFAQCount
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, `Generate a high-quality, location-specific blog post.

STRICT GUARDRAILS (DO NOT BREAK):
- Use ONLY %q as the city name - never substitute or invent other cities
- Do NOT put the city name in <h2>/<h3> headings (write "Our Service Process", not "Our Service Process in %s")
- Write %d+ words in the body - this is CRITICAL, count your words

INPUT:
- Primary Keyword: %s
- Service: %s
- City: %s
- Region: %s
- Business Name: %s
- Phone: %s
- Email: %s
- Target Word Count: %d words MINIMUM
`,
		city, city, req.TargetWordCount,
		req.Keyword, industry, city, region,
		req.CompanyName, req.Phone, req.Email, req.TargetWordCount)

	if links := b.linkInventory(req.InternalLinks); links != "" {
		sb.WriteString("\nINTERNAL LINKS (insert 3+ as <a href> tags in the body, natural anchor text):\n")
		sb.WriteString(links)
	}

	fmt.Fprintf(&sb, `
REQUIRED STRUCTURE:

1. H1 HEADING (BLOG TITLE), 55-65 characters
   - Catchy and descriptive, includes the keyword and city ONCE
   - MUST be different from meta_title

2. META TITLE, 50-60 characters: "%s | %s"

3. META DESCRIPTION, 150-160 characters: service + city once, ends with a call to action

4. BODY, %d+ words of HTML:
   <h2>Understanding the Service</h2> 300+ words
   <h2>Benefits of Professional Service</h2> with three <h3> sub-sections, 100+ words each
   <h2>Our Service Process</h2> 200+ words
   <h2>Cost and Pricing Factors</h2> 200+ words
   <h2>Common Problems We Solve</h2> 200+ words
   <h2>Why Choose %s</h2> 200+ words, include the phone number
   <h2>Service Areas</h2> 100+ words mentioning %s and surrounding areas
   <h2>Get Started Today</h2> 150+ words with a strong call to action

5. FAQ SECTION: %d high-intent questions with detailed answers in the faq_items array, NOT in the body.

OUTPUT AS VALID JSON ONLY (no markdown):
{
  "title": "Compelling blog title with keyword - Proper Case",
  "h1": "Catchy descriptive heading with keyword and city",
  "meta_title": "%s | %s",
  "meta_description": "Professional %s in %s. ... Call today for a free estimate.",
  "body": "<h2>Understanding the Service</h2><p>...</p>...",
  "faq_items": [{"question": "...", "answer": "..."}],
  "tags": ["Tag One", "Tag Two"],
  "cta": {"company_name": %q, "phone": %q, "email": %q}
}

CRITICAL REMINDERS:
1. Body MUST have %d+ words - write detailed paragraphs
2. Do NOT put the city in <h2>/<h3> headings
3. Use ONLY %s as the city
4. Include 3+ internal links as <a href> tags in the body`,
		req.Keyword, req.CompanyName,
		req.TargetWordCount,
		req.CompanyName, cityRegion, faqCount,
		req.Keyword, req.CompanyName,
		strings.ToLower(req.Keyword), cityRegion,
		req.CompanyName, req.Phone, req.Email,
		req.TargetWordCount, city)

	return sb.String()
}

// ContinuationPrompt asks the model to append wordsNeeded more words to an
// article whose tail is replayed for context.
func (b *PromptBuilder) ContinuationPrompt(req *GenerationRequest, city, currentBody string, wordsNeeded int) string {
	tail := currentBody
	if len(tail) > continuationTailChars {
		tail = tail[len(tail)-continuationTailChars:]
	}

	return fmt.Sprintf(`You are continuing a blog post about %q for %s in %s.

TASK: Write %d MORE WORDS of high-quality content to add to the existing article.

CURRENT ARTICLE (last portion):
%s

WRITE NEW CONTENT WITH:
- A new <h2> section with detailed information
- At least 2-3 paragraphs under each heading
- Practical tips and helpful information
- Mention %s and %s naturally
- Do NOT repeat existing content

Return ONLY valid JSON:
{"body_append": "<h2>New Section Title</h2><p>...</p><p>...</p>"}

IMPORTANT: body_append must contain %d+ words of new content.`,
		req.Keyword, req.CompanyName, strings.Trim(city+", "+req.Region, ", "),
		wordsNeeded, tail,
		req.CompanyName, city, wordsNeeded)
}

func (b *PromptBuilder) linkInventory(links []InternalLink) string {
	var sb strings.Builder
	n := 0
	for _, link := range links {
		if link.URL == "" || link.Title == "" {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s\n", link.Title, link.URL)
		n++
		if n >= maxPromptLinks {
			break
		}
	}
	return sb.String()
}
