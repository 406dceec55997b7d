package main

import (
	"errors"
	"net/http"
	"time"

	"JournalSearch/internal/catalog"
	"JournalSearch/internal/daterange"
	"JournalSearch/internal/search"

	"github.com/gin-gonic/gin"
)

// httpHandler exposes the search core to the REST presentation layer.
type httpHandler struct {
	service  *search.Service
	articles catalog.ArticleCatalog
}

func newHTTPHandler(service *search.Service, articles catalog.ArticleCatalog) *httpHandler {
	return &httpHandler{service: service, articles: articles}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
	// ReferenceDate pins relative date phrases ("last week") to a specific
	// day, mostly for reproducible queries; defaults to today.
	ReferenceDate string `json:"reference_date"`
}

type searchResultItem struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	PublicationDate string  `json:"publication_date"`
	SimilarityScore float32 `json:"similarity_score"`
}

func (h *httpHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ref := time.Now()
	if req.ReferenceDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReferenceDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference_date must be YYYY-MM-DD"})
			return
		}
		ref = parsed
	}

	results, err := h.service.Search(c.Request.Context(), req.Query, ref, req.TopK)
	if err != nil {
		status := http.StatusInternalServerError
		retryable := false
		if errors.Is(err, search.ErrEmbeddingUnavailable) ||
			errors.Is(err, search.ErrIndexUnavailable) ||
			errors.Is(err, search.ErrCatalogUnavailable) {
			status = http.StatusServiceUnavailable
			retryable = true
		}
		c.JSON(status, gin.H{"error": err.Error(), "retryable": retryable})
		return
	}

	items := make([]searchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, searchResultItem{
			ID:              int64(r.Article.ID),
			Title:           r.Article.Title,
			PublicationDate: r.Article.PubDate.Format("2006-01-02"),
			SimilarityScore: r.Score,
		})
	}
	// An empty list is a legitimate outcome, not an error.
	c.JSON(http.StatusOK, gin.H{"results": items, "count": len(items)})
}

// browseByDate serves the non-semantic date-range browse of the catalog.
func (h *httpHandler) browseByDate(c *gin.Context) {
	r := daterange.Unbounded()
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		r.Start = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return
		}
		r.End = &parsed
	}

	articles, err := h.articles.GetByDateRange(c.Request.Context(), r)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retryable": true})
		return
	}

	items := make([]searchResultItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, searchResultItem{
			ID:              int64(a.ID),
			Title:           a.Title,
			PublicationDate: a.PubDate.Format("2006-01-02"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": items, "count": len(items)})
}
