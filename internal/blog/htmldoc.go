package blog

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block is one top-level node of a post body: a heading, paragraph, list,
// or other block element, carried as its serialized HTML.
type Block struct {
	Tag  string // "h2", "h3", "p", "ul", ...
	HTML string // outer HTML of the block
}

// Document is an ordered sequence of body blocks. SEO fixes mutate this
// structure and re-serialize, instead of chaining regex substitutions over
// the whole body, so an edit can never corrupt a neighboring tag.
type Document struct {
	blocks []Block
}

// ParseDocument splits HTML body content into top-level blocks. Malformed
// markup degrades to whatever the tolerant parser recovers; bare text
// between blocks is wrapped in a paragraph so nothing is dropped.
func ParseDocument(body string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return &Document{blocks: []Block{{Tag: "p", HTML: "<p>" + body + "</p>"}}}
	}

	d := &Document{}
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		if tag == "#text" {
			text := strings.TrimSpace(s.Text())
			if text != "" {
				d.blocks = append(d.blocks, Block{Tag: "p", HTML: "<p>" + text + "</p>"})
			}
			return
		}
		html, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		d.blocks = append(d.blocks, Block{Tag: tag, HTML: strings.TrimSpace(html)})
	})
	return d
}

// Blocks returns the current block sequence.
func (d *Document) Blocks() []Block {
	return d.blocks
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// String re-serializes the document to HTML, one block per line.
func (d *Document) String() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.HTML
	}
	return strings.Join(parts, "\n")
}

// Append adds a block at the end.
func (d *Document) Append(tag, html string) {
	d.blocks = append(d.blocks, Block{Tag: tag, HTML: html})
}

// InsertAfter inserts a block after index i. An out-of-range index appends.
func (d *Document) InsertAfter(i int, tag, html string) {
	if i < 0 || i >= len(d.blocks)-1 {
		d.Append(tag, html)
		return
	}
	d.blocks = append(d.blocks[:i+1], append([]Block{{Tag: tag, HTML: html}}, d.blocks[i+1:]...)...)
}

// InsertBefore inserts a block before index i. An out-of-range index appends.
func (d *Document) InsertBefore(i int, tag, html string) {
	if i < 0 || i >= len(d.blocks) {
		d.Append(tag, html)
		return
	}
	d.blocks = append(d.blocks[:i], append([]Block{{Tag: tag, HTML: html}}, d.blocks[i:]...)...)
}

// Replace swaps the block at index i.
func (d *Document) Replace(i int, tag, html string) {
	if i < 0 || i >= len(d.blocks) {
		return
	}
	d.blocks[i] = Block{Tag: tag, HTML: html}
}

// CharOffset returns the byte offset of block i within the serialized
// document, used to place insertions at a fraction of document length.
func (d *Document) CharOffset(i int) int {
	offset := 0
	for j := 0; j < i && j < len(d.blocks); j++ {
		offset += len(d.blocks[j].HTML) + 1
	}
	return offset
}

// TotalChars returns the serialized document length.
func (d *Document) TotalChars() int {
	return d.CharOffset(len(d.blocks))
}

var headingTextRe = regexp.MustCompile(`(?s)<h([23])([^>]*)>(.*?)</h[23]>`)

// HeadingText extracts the inner text of a heading block, or "" if the
// block is not a well-formed heading.
func HeadingText(b Block) string {
	m := headingTextRe.FindStringSubmatch(b.HTML)
	if len(m) < 4 {
		return ""
	}
	return strings.TrimSpace(stripTags(m[3]))
}

// WithHeadingText rebuilds a heading block with new inner text, keeping the
// level and attributes.
func WithHeadingText(b Block, text string) Block {
	m := headingTextRe.FindStringSubmatch(b.HTML)
	if len(m) < 4 {
		return b
	}
	return Block{
		Tag:  "h" + m[1],
		HTML: "<h" + m[1] + m[2] + ">" + text + "</h" + m[1] + ">",
	}
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// stripTags removes markup, leaving visible text. The tolerant goquery path
// is used for whole bodies; this cheap version serves single blocks.
func stripTags(html string) string {
	return tagRe.ReplaceAllString(html, " ")
}

// visibleText extracts the visible text of an HTML fragment.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stripTags(html)
	}
	return doc.Text()
}
