package catalog

import (
	"context"

	"JournalSearch/internal/daterange"
	"JournalSearch/internal/models"

	"gorm.io/gorm"
)

// ArticleCatalog is the read-only view of the relational article store.
// Records are created and enriched by external pipelines; this core never
// writes to it.
type ArticleCatalog interface {
	// GetByIDs returns the articles that exist for the given ids, keyed by
	// id. Missing ids are simply absent from the map, not an error.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Article, error)

	// GetByDateRange returns articles whose publication date falls inside
	// the inclusive range, newest first.
	GetByDateRange(ctx context.Context, r daterange.Range) ([]*models.Article, error)

	// ListIDs returns every article id in the catalog, for batch ingestion.
	ListIDs(ctx context.Context) ([]int64, error)
}

// ArticleDAL provides data access methods for the articles table.
type ArticleDAL struct {
	db *gorm.DB
}

// NewArticleDAL creates a new ArticleDAL.
func NewArticleDAL(db *gorm.DB) *ArticleDAL {
	return &ArticleDAL{db: db}
}

// GetByIDs fetches articles by primary key and returns them keyed by id.
func (dal *ArticleDAL) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Article, error) {
	result := make(map[int64]*models.Article, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var articles []*models.Article
	if err := dal.db.WithContext(ctx).Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, err
	}

	for _, article := range articles {
		result[int64(article.ID)] = article
	}
	return result, nil
}

// GetByDateRange fetches articles published inside the inclusive range.
// Open bounds are omitted from the query; the unbounded range returns the
// whole catalog.
func (dal *ArticleDAL) GetByDateRange(ctx context.Context, r daterange.Range) ([]*models.Article, error) {
	query := dal.db.WithContext(ctx).Model(&models.Article{})
	if r.Start != nil {
		query = query.Where("pub_date >= ?", *r.Start)
	}
	if r.End != nil {
		query = query.Where("pub_date <= ?", *r.End)
	}

	var articles []*models.Article
	if err := query.Order("pub_date DESC").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListIDs returns every article id in the catalog.
func (dal *ArticleDAL) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := dal.db.WithContext(ctx).Model(&models.Article{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// compile-time check that the DAL satisfies the catalog interface
var _ ArticleCatalog = (*ArticleDAL)(nil)
