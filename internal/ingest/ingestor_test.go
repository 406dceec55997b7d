package ingest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"JournalSearch/internal/config"
	"JournalSearch/internal/daterange"
	"JournalSearch/internal/models"
	"JournalSearch/internal/vectorindex"
	"JournalSearch/pkg/logger"
)

// fakeEmbedder returns a deterministic vector per text and can be told to
// fail for specific texts.
type fakeEmbedder struct {
	mu      sync.Mutex
	failFor map[string]bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFor[text] {
		return nil, errors.New("embedding backend error")
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// fakeIndex records upserts so tests can assert on the final state.
type fakeIndex struct {
	mu      sync.Mutex
	vectors map[int64][]float32
	upserts int
	flushes int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{vectors: make(map[int64][]float32)}
}

func (f *fakeIndex) Upsert(ctx context.Context, articleID int64, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.vectors[articleID] = append([]float32(nil), vector...)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, topK int) ([]vectorindex.Hit, error) {
	return nil, errors.New("not used in ingest tests")
}

func (f *fakeIndex) Has(ctx context.Context, articleID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.vectors[articleID]
	return ok, nil
}

func (f *fakeIndex) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

type fakeCatalog struct {
	articles map[int64]*models.Article
}

func (f *fakeCatalog) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Article, error) {
	out := make(map[int64]*models.Article)
	for _, id := range ids {
		if a, ok := f.articles[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByDateRange(ctx context.Context, r daterange.Range) ([]*models.Article, error) {
	return nil, errors.New("not used in ingest tests")
}

func (f *fakeCatalog) ListIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.articles))
	for id := range f.articles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func catalogOf(n int) *fakeCatalog {
	articles := make(map[int64]*models.Article, n)
	for i := 1; i <= n; i++ {
		articles[int64(i)] = &models.Article{
			ID:      uint(i),
			Title:   fmt.Sprintf("Article %d", i),
			PubDate: time.Date(2024, time.January, i, 0, 0, 0, 0, time.UTC),
		}
	}
	return &fakeCatalog{articles: articles}
}

func newIngestor(t *testing.T, cat *fakeCatalog, embedder *fakeEmbedder, index *fakeIndex) *Ingestor {
	t.Helper()
	ing, err := NewIngestor(cat, embedder, index, config.IngestConfig{Concurrency: 3, BatchSize: 4}, logger.New("test", ""))
	if err != nil {
		t.Fatalf("NewIngestor() error = %v", err)
	}
	t.Cleanup(ing.Release)
	return ing
}

func TestSyncEmbedsEveryArticleOnce(t *testing.T) {
	cat := catalogOf(6)
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	ing := newIngestor(t, cat, embedder, index)

	report, err := ing.Sync(context.Background(), []int64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if report.Synced != 6 || report.Skipped != 0 || len(report.Failed) != 0 {
		t.Errorf("unexpected report: %s", report)
	}
	if len(index.vectors) != 6 {
		t.Errorf("index holds %d vectors, want 6", len(index.vectors))
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	cat := catalogOf(4)
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	ing := newIngestor(t, cat, embedder, index)

	ids := []int64{1, 2, 3, 4}
	if _, err := ing.Sync(context.Background(), ids); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	stateAfterFirst := make(map[int64][]float32, len(index.vectors))
	for id, vec := range index.vectors {
		stateAfterFirst[id] = append([]float32(nil), vec...)
	}
	upsertsAfterFirst := index.upserts

	report, err := ing.Sync(context.Background(), ids)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	if report.Synced != 0 || report.Skipped != 4 {
		t.Errorf("second run should skip everything, got %s", report)
	}
	if index.upserts != upsertsAfterFirst {
		t.Errorf("second run performed %d extra upserts", index.upserts-upsertsAfterFirst)
	}
	if !reflect.DeepEqual(index.vectors, stateAfterFirst) {
		t.Error("index state changed on the second run")
	}
}

func TestSyncIsolatesItemFailures(t *testing.T) {
	cat := catalogOf(5)
	embedder := &fakeEmbedder{failFor: map[string]bool{"Article 3": true}}
	index := newFakeIndex()
	ing := newIngestor(t, cat, embedder, index)

	report, err := ing.Sync(context.Background(), []int64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if report.Synced != 4 {
		t.Errorf("synced = %d, want 4", report.Synced)
	}
	if len(report.Failed) != 1 || report.Failed[0] != 3 {
		t.Errorf("failed ids = %v, want [3]", report.Failed)
	}
	if _, ok := index.vectors[3]; ok {
		t.Error("failed article must not be written to the index")
	}
}

func TestSyncReportsMissingCatalogRecords(t *testing.T) {
	cat := catalogOf(2)
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	ing := newIngestor(t, cat, embedder, index)

	report, err := ing.Sync(context.Background(), []int64{1, 2, 42})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if report.Synced != 2 || len(report.Failed) != 1 || report.Failed[0] != 42 {
		t.Errorf("unexpected report: %s failed=%v", report, report.Failed)
	}
}

func TestSyncAllWalksCatalogInBatches(t *testing.T) {
	cat := catalogOf(10)
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	ing := newIngestor(t, cat, embedder, index)

	report, err := ing.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if report.Synced != 10 {
		t.Errorf("synced = %d, want 10", report.Synced)
	}
	if len(index.vectors) != 10 {
		t.Errorf("index holds %d vectors, want 10", len(index.vectors))
	}
	// BatchSize 4 over 10 ids means three batches, each flushed once.
	if index.flushes != 3 {
		t.Errorf("flushes = %d, want 3", index.flushes)
	}
}

func TestSyncStopsOnCancelledContext(t *testing.T) {
	cat := catalogOf(4)
	embedder := &fakeEmbedder{}
	index := newFakeIndex()
	ing := newIngestor(t, cat, embedder, index)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ing.Sync(ctx, []int64{1, 2, 3, 4})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
