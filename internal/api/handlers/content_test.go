package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoscribe/seoscribe-api/internal/blog"
	"github.com/seoscribe/seoscribe-api/internal/llm"
)

type stubProvider struct {
	content string
}

func (s *stubProvider) Complete(_ context.Context, _ *llm.CompletionRequest) (*llm.Completion, error) {
	return &llm.Completion{Content: s.content, FinishReason: "stop", InputTokens: 10, OutputTokens: 20}, nil
}

func (s *stubProvider) Name() string { return "stub" }

func testRouter(content string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	generator := blog.NewGenerator(blog.GeneratorOptions{
		Primary:      &stubProvider{content: content},
		PrimaryModel: "gpt-4o",
	})
	handler := NewContentHandler(generator, nil)

	router := gin.New()
	router.POST("/api/v1/content/generations", handler.Generate)
	router.GET("/api/v1/content/posts", handler.ListPosts)
	return router
}

func TestGenerate_ReturnsResult(t *testing.T) {
	article := `{"title": "AC Repair in Sarasota: A Guide", "h1": "ac repair sarasota help", "body": "<h2>Intro</h2><p>content here</p>"}`
	router := testRouter(article)

	payload := map[string]any{
		"keyword":           "ac repair sarasota",
		"target_word_count": 0,
		"company_name":      "Cool Breeze HVAC",
		"phone":             "(941) 555-0123",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/generations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Result blog.GenerationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "AC Repair in Sarasota: A Guide", response.Result.Title)
	assert.NotEmpty(t, response.Result.Body)
	assert.NotNil(t, response.Result.Schema)
}

func TestGenerate_MissingKeywordRejected(t *testing.T) {
	router := testRouter("{}")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/generations",
		bytes.NewReader([]byte(`{"company_name": "Cool Breeze HVAC"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_WordCountOutOfRangeRejected(t *testing.T) {
	router := testRouter("{}")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/content/generations",
		bytes.NewReader([]byte(`{"keyword": "ac repair", "target_word_count": 99999}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPosts_StatelessDeployment(t *testing.T) {
	router := testRouter("{}")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/posts", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Posts []any `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Posts)
}
