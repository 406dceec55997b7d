package vectorindex

import "context"

// Hit is one approximate-nearest-neighbor match: the referenced article and
// its similarity score. Higher scores are more relevant; the absolute range
// is defined by the index metric.
type Hit struct {
	ArticleID int64
	Score     float32
}

// VectorIndex stores one title embedding per article for the active model
// and supports approximate nearest-neighbor search.
//
// Consistency: a freshly upserted vector may not be immediately searchable.
// Callers that need a barrier (tests, batch jobs) call Flush first.
type VectorIndex interface {
	// Upsert writes the vector for an article, replacing any existing
	// vector for the same article under the active model. Idempotent.
	Upsert(ctx context.Context, articleID int64, vector []float32) error

	// Search returns up to topK hits ordered by descending similarity.
	// Re-running the same query against an unchanged index returns the
	// same ordering.
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)

	// Has reports whether a live vector exists for the article under the
	// active model.
	Has(ctx context.Context, articleID int64) (bool, error)

	// Flush forces pending writes to become searchable.
	Flush(ctx context.Context) error
}
