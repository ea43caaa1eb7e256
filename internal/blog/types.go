package blog

// InternalLink is one entry of the caller-supplied link inventory.
type InternalLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// FAQItem is a single question/answer pair attached to a post.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CTA is the contact block rendered at the end of a post.
type CTA struct {
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// GenerationRequest carries everything needed to generate one post.
// The pipeline never mutates it; city corrections derived from the keyword
// are tracked internally by the generator.
type GenerationRequest struct {
	Keyword         string         `json:"keyword" binding:"required"`
	TargetWordCount int            `json:"target_word_count"`
	City            string         `json:"city"`
	Region          string         `json:"region"` // state name or two-letter abbreviation
	CompanyName     string         `json:"company_name"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email"`
	Industry        string         `json:"industry"`
	InternalLinks   []InternalLink `json:"internal_links"`
	FAQCount        int            `json:"faq_count"`
	ContactURL      string         `json:"contact_url"`
	BlogURL         string         `json:"blog_url"`
}

// ValidationReport collects non-fatal issues found during generation.
// It is advisory: a populated report never blocks the result.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddWarning appends a warning to the report.
func (r *ValidationReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddError appends an error to the report.
func (r *ValidationReport) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// GenerationResult is the finished artifact handed back to the caller.
type GenerationResult struct {
	Title           string           `json:"title"`
	H1              string           `json:"h1"`
	MetaTitle       string           `json:"meta_title"`
	MetaDescription string           `json:"meta_description"`
	Body            string           `json:"body"` // HTML
	FAQItems        []FAQItem        `json:"faq_items"`
	Tags            []string         `json:"tags"`
	CTA             CTA              `json:"cta"`
	Schema          *SchemaBundle    `json:"schema,omitempty"`
	WordCount       int              `json:"word_count"`
	Report          ValidationReport `json:"report"`
}

// Usage aggregates token counts across all model calls made for one post.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates another call's usage into the total.
func (u *Usage) Add(input, output int) {
	u.InputTokens += input
	u.OutputTokens += output
	u.TotalTokens += input + output
}
