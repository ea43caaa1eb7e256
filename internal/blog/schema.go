package blog

import (
	"fmt"
	"strings"
	"time"
)

const (
	schemaContext = "https://schema.org"
	// minHowToSteps: fewer step headings than this reads as prose, not a
	// procedure, and gets no HowTo node.
	minHowToSteps = 3
)

// SchemaBundle is the structured-data payload published alongside a post: a
// single JSON-LD @graph holding every node, so publishers can embed one
// script tag.
type SchemaBundle struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

// articleSchema is the Article/BlogPosting node.
type articleSchema struct {
	Type          string           `json:"@type"`
	Headline      string           `json:"headline"`
	Description   string           `json:"description,omitempty"`
	Author        organizationRef  `json:"author"`
	Publisher     organizationRef  `json:"publisher"`
	DatePublished string           `json:"datePublished"`
	DateModified  string           `json:"dateModified"`
	WordCount     int              `json:"wordCount,omitempty"`
	Keywords      string           `json:"keywords,omitempty"`
	MainEntity    *mainEntityOfRef `json:"mainEntityOfPage,omitempty"`
}

type organizationRef struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type mainEntityOfRef struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type faqPageSchema struct {
	Type       string           `json:"@type"`
	MainEntity []questionSchema `json:"mainEntity"`
}

type questionSchema struct {
	Type           string       `json:"@type"`
	Name           string       `json:"name"`
	AcceptedAnswer answerSchema `json:"acceptedAnswer"`
}

type answerSchema struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type localBusinessSchema struct {
	Type       string         `json:"@type"`
	Name       string         `json:"name"`
	Telephone  string         `json:"telephone,omitempty"`
	Email      string         `json:"email,omitempty"`
	URL        string         `json:"url,omitempty"`
	Address    *postalAddress `json:"address,omitempty"`
	AreaServed string         `json:"areaServed,omitempty"`
}

type postalAddress struct {
	Type            string `json:"@type"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	AddressCountry  string `json:"addressCountry"`
}

type howToSchema struct {
	Type string      `json:"@type"`
	Name string      `json:"name"`
	Step []howToStep `json:"step"`
}

type howToStep struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	Text string `json:"text,omitempty"`
}

// SynthesizeSchema builds the JSON-LD bundle for a finished result. The
// Article and LocalBusiness nodes are always present; FAQPage appears when
// the result has FAQ items and HowTo when the body carries a recognizable
// step sequence. Synthesis is pure and never fails.
func SynthesizeSchema(result *GenerationResult, req *GenerationRequest, city string, now time.Time) *SchemaBundle {
	published := now.UTC().Format(time.RFC3339)

	bundle := &SchemaBundle{Context: schemaContext}

	article := articleSchema{
		Type:          "BlogPosting",
		Headline:      result.H1,
		Description:   result.MetaDescription,
		Author:        organizationRef{Type: "Organization", Name: req.CompanyName},
		Publisher:     organizationRef{Type: "Organization", Name: req.CompanyName},
		DatePublished: published,
		DateModified:  published,
		WordCount:     result.WordCount,
		Keywords:      strings.Join(result.Tags, ", "),
	}
	if req.BlogURL != "" {
		article.MainEntity = &mainEntityOfRef{Type: "WebPage", ID: req.BlogURL}
	}
	bundle.Graph = append(bundle.Graph, article)

	business := localBusinessSchema{
		Type:       "LocalBusiness",
		Name:       req.CompanyName,
		Telephone:  req.Phone,
		Email:      req.Email,
		URL:        req.ContactURL,
		AreaServed: city,
	}
	if city != "" || req.Region != "" {
		business.Address = &postalAddress{
			Type:            "PostalAddress",
			AddressLocality: city,
			AddressRegion:   strings.ToUpper(req.Region),
			AddressCountry:  "US",
		}
	}
	bundle.Graph = append(bundle.Graph, business)

	if len(result.FAQItems) > 0 {
		faq := faqPageSchema{Type: "FAQPage"}
		for _, item := range result.FAQItems {
			faq.MainEntity = append(faq.MainEntity, questionSchema{
				Type: "Question",
				Name: item.Question,
				AcceptedAnswer: answerSchema{
					Type: "Answer",
					Text: stripTags(item.Answer),
				},
			})
		}
		bundle.Graph = append(bundle.Graph, faq)
	}

	if howTo := detectHowTo(result, req.Keyword); howTo != nil {
		bundle.Graph = append(bundle.Graph, *howTo)
	}

	return bundle
}

// howToHeadingPrefixes mark a section whose subheadings form a step list.
var howToHeadingPrefixes = []string{"how to", "steps to", "step-by-step"}

// detectHowTo looks for a "How to ..." H2 followed by H3 subheadings and
// turns them into HowTo steps. Fewer than three steps is not a procedure and
// yields nil.
func detectHowTo(result *GenerationResult, keyword string) *howToSchema {
	doc := ParseDocument(result.Body)
	blocks := doc.Blocks()

	start := -1
	name := ""
	for i, b := range blocks {
		if b.Tag != "h2" {
			continue
		}
		text := HeadingText(b)
		lower := strings.ToLower(text)
		for _, prefix := range howToHeadingPrefixes {
			if strings.HasPrefix(lower, prefix) {
				start = i
				name = text
				break
			}
		}
		if start != -1 {
			break
		}
	}
	if start == -1 {
		return nil
	}

	var steps []howToStep
	for i := start + 1; i < len(blocks); i++ {
		b := blocks[i]
		if b.Tag == "h2" {
			break
		}
		if b.Tag != "h3" {
			continue
		}
		step := howToStep{Type: "HowToStep", Name: HeadingText(b)}
		// The paragraph right after the step heading becomes its text.
		if i+1 < len(blocks) && blocks[i+1].Tag == "p" {
			step.Text = strings.TrimSpace(stripTags(blocks[i+1].HTML))
		}
		steps = append(steps, step)
	}
	if len(steps) < minHowToSteps {
		return nil
	}
	if name == "" {
		name = fmt.Sprintf("How to handle %s", strings.ToLower(keyword))
	}
	return &howToSchema{Type: "HowTo", Name: name, Step: steps}
}
