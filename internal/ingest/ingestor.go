package ingest

import (
	"context"
	"fmt"
	"sync"

	"JournalSearch/internal/catalog"
	"JournalSearch/internal/config"
	"JournalSearch/internal/embedding"
	"JournalSearch/internal/vectorindex"
	"JournalSearch/pkg/logger"

	"github.com/panjf2000/ants/v2"
)

// Report summarizes one sync run. Failed ids are reported instead of
// aborting the batch: one article's failure never blocks its siblings.
type Report struct {
	Synced  int
	Skipped int
	Failed  []int64
}

// merge folds another report into this one.
func (r *Report) merge(other *Report) {
	r.Synced += other.Synced
	r.Skipped += other.Skipped
	r.Failed = append(r.Failed, other.Failed...)
}

// String renders the report for logs.
func (r *Report) String() string {
	return fmt.Sprintf("synced=%d skipped=%d failed=%d", r.Synced, r.Skipped, len(r.Failed))
}

// Ingestor keeps the vector index synchronized with the article catalog:
// for each article without a live vector under the active model, it embeds
// the title and upserts the vector. Runs are idempotent and safe to repeat
// over the same batch; the only shared mutable state is the external index.
type Ingestor struct {
	articles  catalog.ArticleCatalog
	embedder  embedding.Embedding
	index     vectorindex.VectorIndex
	pool      *ants.Pool
	batchSize int
	log       *logger.Logger
}

// NewIngestor creates an Ingestor with a bounded worker pool sized from the
// config. Call Release when done with it.
func NewIngestor(
	articles catalog.ArticleCatalog,
	embedder embedding.Embedding,
	index vectorindex.VectorIndex,
	cfg config.IngestConfig,
	log *logger.Logger,
) (*Ingestor, error) {
	pool, err := ants.NewPool(cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Ingestor{
		articles:  articles,
		embedder:  embedder,
		index:     index,
		pool:      pool,
		batchSize: cfg.BatchSize,
		log:       log,
	}, nil
}

// Release frees the worker pool.
func (ing *Ingestor) Release() {
	ing.pool.Release()
}

// Sync processes one batch of article ids with bounded parallelism. Items
// that already have a vector are skipped, items whose embedding or upsert
// fails are collected into the report. The returned error covers only
// batch-level failures (catalog lookup, pool submission).
func (ing *Ingestor) Sync(ctx context.Context, ids []int64) (*Report, error) {
	records, err := ing.articles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles for batch: %w", err)
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report Report
	)

	fail := func(id int64, err error) {
		ing.log.WithError(err).WithPayload(map[string]interface{}{"article_id": id}).
			Error("Failed to index article.")
		mu.Lock()
		report.Failed = append(report.Failed, id)
		mu.Unlock()
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		wg.Add(1)
		submitErr := ing.pool.Submit(func() {
			defer wg.Done()

			article, ok := records[id]
			if !ok {
				fail(id, fmt.Errorf("article %d not found in catalog", id))
				return
			}

			// Idempotence: a live vector for this article and model means
			// there is nothing to do.
			exists, err := ing.index.Has(ctx, id)
			if err != nil {
				fail(id, err)
				return
			}
			if exists {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return
			}

			vector, err := ing.embedder.Embed(ctx, article.Title)
			if err != nil {
				fail(id, err)
				return
			}
			if err := ing.index.Upsert(ctx, id, vector); err != nil {
				fail(id, err)
				return
			}

			mu.Lock()
			report.Synced++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to submit work item: %w", submitErr)
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return &report, err
	}

	// Make the batch searchable; best-effort since the index is eventually
	// consistent anyway.
	if report.Synced > 0 {
		if err := ing.index.Flush(ctx); err != nil {
			ing.log.WithError(err).Warn("Failed to flush index after sync.")
		}
	}

	return &report, nil
}

// SyncAll walks the whole catalog in batches and syncs every article that
// is not yet embedded.
func (ing *Ingestor) SyncAll(ctx context.Context) (*Report, error) {
	ids, err := ing.articles.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog ids: %w", err)
	}

	total := &Report{}
	for start := 0; start < len(ids); start += ing.batchSize {
		end := start + ing.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		report, err := ing.Sync(ctx, ids[start:end])
		if report != nil {
			total.merge(report)
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
