package vectorindex

import (
	"context"
	"fmt"

	"JournalSearch/internal/database/milvus"
	"JournalSearch/pkg/logger"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusIndex is an adapter for the Milvus client wrapper implementing the
// VectorIndex interface. The model identifier is fixed at construction: each
// instance reads and writes only the vectors of its active embedding model.
type MilvusIndex struct {
	log         *logger.Logger
	client      client.Client // the raw client from the MilvusClient wrapper
	wrapper     *milvus.MilvusClient
	collection  string
	vectorField string
	metric      entity.MetricType
	model       string
}

// NewMilvusIndex creates a new MilvusIndex adapter bound to the given
// embedding model identifier.
func NewMilvusIndex(milvusClient *milvus.MilvusClient, model string, log *logger.Logger) (*MilvusIndex, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	if model == "" {
		return nil, fmt.Errorf("model identifier is required")
	}
	return &MilvusIndex{
		log:         log,
		client:      milvusClient.Client,
		wrapper:     milvusClient,
		collection:  milvusClient.Config.Collection,
		vectorField: milvusClient.Config.VectorField,
		metric:      milvusClient.MetricType(),
		model:       model,
	}, nil
}

// key builds the composite primary key for an article under the active
// model. Upserting the same key replaces the previous vector.
func (s *MilvusIndex) key(articleID int64) string {
	return fmt.Sprintf("%s:%d", s.model, articleID)
}

// modelFilter restricts operations to vectors of the active model.
func (s *MilvusIndex) modelFilter() string {
	return fmt.Sprintf(`%s == "%s"`, milvus.FieldModel, s.model)
}

// Upsert writes or replaces the vector for an article.
func (s *MilvusIndex) Upsert(ctx context.Context, articleID int64, vector []float32) error {
	idCol := entity.NewColumnVarChar(milvus.FieldID, []string{s.key(articleID)})
	articleIDCol := entity.NewColumnInt64(milvus.FieldArticleID, []int64{articleID})
	modelCol := entity.NewColumnVarChar(milvus.FieldModel, []string{s.model})
	vectorCol := entity.NewColumnFloatVector(s.vectorField, len(vector), [][]float32{vector})

	_, err := s.client.Upsert(ctx, s.collection, "" /* default partition */, idCol, articleIDCol, modelCol, vectorCol)
	if err != nil {
		return fmt.Errorf("failed to upsert vector for article %d: %w", articleID, err)
	}
	return nil
}

// Search performs an approximate nearest-neighbor search among the active
// model's vectors and returns hits in descending score order.
func (s *MilvusIndex) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	searchParams, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, s.modelFilter(),
		[]string{milvus.FieldArticleID},
		[]entity.Vector{entity.FloatVector(vector)},
		s.vectorField, s.metric, topK, searchParams,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var hits []Hit
	for _, res := range searchResults {
		var articleIDs []int64
		for _, field := range res.Fields {
			if col, ok := field.(*entity.ColumnInt64); ok && col.Name() == milvus.FieldArticleID {
				articleIDs = col.Data()
			}
		}
		if articleIDs == nil {
			s.log.Warn("Search result is missing the article_id field, skipping.")
			continue
		}

		for i := 0; i < res.ResultCount && i < len(articleIDs); i++ {
			hits = append(hits, Hit{ArticleID: articleIDs[i], Score: res.Scores[i]})
		}
	}

	return hits, nil
}

// Has reports whether a live vector exists for the article.
func (s *MilvusIndex) Has(ctx context.Context, articleID int64) (bool, error) {
	expr := fmt.Sprintf(`%s == "%s"`, milvus.FieldID, s.key(articleID))
	resultSet, err := s.client.Query(ctx, s.collection, []string{}, expr, []string{milvus.FieldID})
	if err != nil {
		return false, fmt.Errorf("failed to query Milvus for article %d: %w", articleID, err)
	}
	for _, col := range resultSet {
		if col.Name() == milvus.FieldID {
			return col.Len() > 0, nil
		}
	}
	return false, nil
}

// Flush delegates to the client wrapper as a consistency barrier.
func (s *MilvusIndex) Flush(ctx context.Context) error {
	return s.wrapper.Flush(ctx)
}

// compile-time check that the adapter implements the VectorIndex interface
var _ VectorIndex = (*MilvusIndex)(nil)
