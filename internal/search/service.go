package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"JournalSearch/internal/catalog"
	"JournalSearch/internal/config"
	"JournalSearch/internal/daterange"
	"JournalSearch/internal/embedding"
	"JournalSearch/internal/models"
	"JournalSearch/internal/vectorindex"
	"JournalSearch/pkg/logger"
)

// ParsedQuery is the interpreted form of a raw user query. SemanticText is
// what gets embedded; date phrases are left in because the embedding model
// tolerates the noise.
type ParsedQuery struct {
	RawText      string
	Range        daterange.Range
	SemanticText string
}

// Result pairs a hydrated article with its similarity score. Results are
// ordered by descending score; ties go to the more recently published
// article.
type Result struct {
	Article *models.Article `json:"article"`
	Score   float32         `json:"score"`
}

// Service is the hybrid search orchestrator: it fuses the exact date filter
// derived from the query with approximate vector ranking over title
// embeddings. It performs no writes, so an abandoned request leaves nothing
// to unwind.
type Service struct {
	resolver *daterange.Resolver
	embedder embedding.Embedding
	index    vectorindex.VectorIndex
	articles catalog.ArticleCatalog
	cache    *ResultCache // optional, nil disables caching
	cfg      config.SearchConfig
	log      *logger.Logger
}

// NewService wires the orchestrator. cache may be nil.
func NewService(
	resolver *daterange.Resolver,
	embedder embedding.Embedding,
	index vectorindex.VectorIndex,
	articles catalog.ArticleCatalog,
	cache *ResultCache,
	cfg config.SearchConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		resolver: resolver,
		embedder: embedder,
		index:    index,
		articles: articles,
		cache:    cache,
		cfg:      cfg,
		log:      log,
	}
}

// Parse resolves the date range implied by rawText relative to ref.
func (s *Service) Parse(rawText string, ref time.Time) ParsedQuery {
	return ParsedQuery{
		RawText:      rawText,
		Range:        s.resolver.Resolve(rawText, ref),
		SemanticText: rawText,
	}
}

// Search runs one hybrid query and returns up to topK results. An empty
// slice with a nil error is a valid "fewer results exist" outcome, distinct
// from the error returns for unavailable collaborators.
func (s *Service) Search(ctx context.Context, rawText string, ref time.Time, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}

	query := s.Parse(rawText, ref)
	s.log.WithPayload(map[string]interface{}{
		"query": rawText,
		"range": query.Range.String(),
		"top_k": topK,
	}).Info("Resolved query date range.")

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.Key(rawText, ref, topK)
		if results, ok := s.cache.Get(ctx, cacheKey); ok {
			return results, nil
		}
	}

	vector, err := s.embedder.Embed(ctx, query.SemanticText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	// Over-fetch: the date filter runs after retrieval and must not starve
	// the final result count.
	hits, err := s.index.Search(ctx, vector, s.overfetch(topK))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if len(hits) == 0 {
		return []Result{}, nil
	}

	results, err := s.hydrate(ctx, hits, query.Range)
	if err != nil {
		return nil, err
	}

	rankResults(results)
	if len(results) > topK {
		results = results[:topK]
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, results)
	}
	return results, nil
}

// overfetch computes the candidate count K for the vector search, capped to
// bound cost.
func (s *Service) overfetch(topK int) int {
	k := topK * s.cfg.OverfetchFactor
	if k > s.cfg.MaxCandidates {
		k = s.cfg.MaxCandidates
	}
	if k < topK {
		k = topK
	}
	return k
}

// hydrate joins vector hits with full catalog records and applies the date
// filter. A hit whose record no longer exists is excluded, not an error.
func (s *Service) hydrate(ctx context.Context, hits []vectorindex.Hit, r daterange.Range) ([]Result, error) {
	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ArticleID
	}

	records, err := s.articles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		article, ok := records[hit.ArticleID]
		if !ok {
			s.log.WithPayload(map[string]interface{}{"article_id": hit.ArticleID}).
				Info("Candidate has no catalog record, excluding.")
			continue
		}
		if !r.Contains(article.PubDate) {
			continue
		}
		results = append(results, Result{Article: article, Score: hit.Score})
	}
	return results, nil
}

// rankResults orders by descending score, breaking ties by more recent
// publication date. The sort is stable so equal entries keep index order.
func rankResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Article.PubDate.After(results[j].Article.PubDate)
	})
}
