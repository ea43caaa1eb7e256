package models

import (
	"time"

	"gorm.io/gorm"
)

// BlogPost is a finished generated article. The schema bundle and report are
// stored as JSON blobs; callers that need them structured re-decode.
type BlogPost struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Keyword         string `gorm:"not null;index" json:"keyword"`
	City            string `gorm:"index" json:"city"`
	Region          string `json:"region"`
	CompanyName     string `json:"company_name"`
	Title           string `gorm:"not null" json:"title"`
	H1              string `json:"h1"`
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Body            string `gorm:"type:text;not null" json:"body"`
	FAQItems        string `gorm:"type:text" json:"faq_items"` // JSON array
	Tags            string `gorm:"type:text" json:"tags"`      // JSON array
	Schema          string `gorm:"type:text" json:"schema"`    // JSON-LD @graph
	Report          string `gorm:"type:text" json:"report"`    // JSON validation report
	WordCount       int    `gorm:"not null" json:"word_count"`
}

// GenerationLog tracks model usage and cost per generation
type GenerationLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	BlogPostID   *uint     `gorm:"index" json:"blog_post_id,omitempty"`
	BlogPost     *BlogPost `gorm:"foreignKey:BlogPostID" json:"-"`
	Keyword      string    `gorm:"not null;index" json:"keyword"`
	Model        string    `gorm:"not null" json:"model"`
	TotalTokens  int       `gorm:"not null" json:"total_tokens"`
	InputTokens  int       `gorm:"not null" json:"input_tokens"`
	OutputTokens int       `gorm:"not null" json:"output_tokens"`
	CostUSD      float64   `gorm:"not null" json:"cost_usd"`
	DurationMS   int       `gorm:"not null" json:"duration_ms"`
	RequestID    string    `gorm:"index" json:"request_id"`
}
