package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seoscribe/seoscribe-api/internal/blog"
	"github.com/seoscribe/seoscribe-api/internal/logger"
	"github.com/seoscribe/seoscribe-api/internal/models"
	"github.com/seoscribe/seoscribe-api/internal/observability"
)

const (
	maxTargetWordCount = 5000
	defaultPageSize    = 20
	maxPageSize        = 100
)

// ContentHandler serves blog post generation and retrieval
type ContentHandler struct {
	generator *blog.Generator
	db        *gorm.DB
}

func NewContentHandler(generator *blog.Generator, db *gorm.DB) *ContentHandler {
	return &ContentHandler{
		generator: generator,
		db:        db,
	}
}

// Generate runs the full pipeline for one keyword and persists the result.
// Generation itself never fails; only invalid input or a storage error can
// produce a non-200 response.
func (h *ContentHandler) Generate(c *gin.Context) {
	var req blog.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TargetWordCount < 0 || req.TargetWordCount > maxTargetWordCount {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "target_word_count must be between 0 and 5000",
		})
		return
	}

	ctx := observability.WithRequestID(c.Request.Context(), c.GetString("request_id"))

	transaction := sentry.StartTransaction(ctx, "content.generate")
	transaction.SetTag("keyword", req.Keyword)
	defer transaction.Finish()

	trace := observability.GetClient().StartTrace(ctx, "blog-generation", map[string]interface{}{
		"keyword": req.Keyword,
		"city":    req.City,
	})
	defer trace.Finish()

	result := h.generator.Generate(transaction.Context(), &req)

	post, err := h.savePost(&req, result)
	if err != nil {
		logger.Error("failed to persist blog post", err, logger.Fields{
			"request_id": c.GetString("request_id"),
			"keyword":    req.Keyword,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save post"})
		return
	}

	response := gin.H{"result": result}
	if post != nil {
		response["post_id"] = post.ID
	}
	c.JSON(http.StatusOK, response)
}

// savePost stores the finished result. A nil database (stateless deployment)
// skips persistence.
func (h *ContentHandler) savePost(req *blog.GenerationRequest, result *blog.GenerationResult) (*models.BlogPost, error) {
	if h.db == nil {
		return nil, nil
	}

	post := &models.BlogPost{
		Keyword:         req.Keyword,
		City:            req.City,
		Region:          req.Region,
		CompanyName:     req.CompanyName,
		Title:           result.Title,
		H1:              result.H1,
		MetaTitle:       result.MetaTitle,
		MetaDescription: result.MetaDescription,
		Body:            result.Body,
		FAQItems:        mustJSON(result.FAQItems),
		Tags:            mustJSON(result.Tags),
		Schema:          mustJSON(result.Schema),
		Report:          mustJSON(result.Report),
		WordCount:       result.WordCount,
	}
	if err := h.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns stored posts, newest first
func (h *ContentHandler) ListPosts(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"posts": []models.BlogPost{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var posts []models.BlogPost
	query := h.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if keyword := c.Query("keyword"); keyword != "" {
		query = query.Where("keyword = ?", keyword)
	}
	if err := query.Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost returns one stored post by ID
func (h *ContentHandler) GetPost(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.BlogPost
	if err := h.db.First(&post, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// mustJSON serializes values already known to be marshalable
func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
