package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/repository/memstore"
	"github.com/kailas-cloud/pkgdex/internal/usecase/embedding"
	"github.com/kailas-cloud/pkgdex/internal/usecase/fulltext"
)

// --- Mocks ---

type mockEmbedder struct {
	failOn    string // substring of the input that fails
	downAfter int    // model unavailable after this many calls (0 = never)
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.downAfter > 0 && m.calls > m.downAfter {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: process exited", domain.ErrModelUnavailable)
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: bad input", domain.ErrEmbeddingProviderError)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, text := range texts {
		res, err := m.Embed(ctx, text)
		if err != nil {
			return out, &domain.BatchItemError{Index: i, Err: err}
		}
		out = append(out, res.Embedding)
	}
	return out, nil
}

type mockSyncer struct {
	initErr error
	syncErr error
	records []catalog.PackageRecord
	inits   int
}

func (m *mockSyncer) Initialize(_ context.Context) (bool, error) {
	m.inits++
	return m.inits == 1, m.initErr
}

func (m *mockSyncer) Sync(_ context.Context, records []catalog.PackageRecord) (fulltext.SyncReport, error) {
	m.records = records
	if m.syncErr != nil {
		return fulltext.SyncReport{}, m.syncErr
	}
	return fulltext.SyncReport{Indexed: len(records), Deleted: 1}, nil
}

func seed(n int) *memstore.MemoryStore {
	store := memstore.NewMemoryStore()
	updated := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		store.Put(catalog.PackageRecord{
			ID: int64(i), Slug: fmt.Sprintf("pkg-%d", i), Name: fmt.Sprintf("pkg-%d", i),
			Language: "GO", UpdatedAt: updated,
		})
	}
	return store
}

// --- Embedding job ---

func TestEmbeddingJob_EmbedsPending(t *testing.T) {
	store := seed(5)
	job := NewEmbeddingJob(store, &mockEmbedder{}, EmbeddingOptions{PageSize: 2, CheckpointEvery: 2}, zap.NewNop())

	var calls, lastTotal int
	r, err := job.Run(context.Background(), false, func(done, total int) { calls, lastTotal = done, total })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.Processed != 5 || r.Failed != 0 {
		t.Errorf("unexpected report %+v", r)
	}
	if calls != 5 || lastTotal != 5 {
		t.Errorf("progress: done=%d total=%d", calls, lastTotal)
	}
	if n, _ := store.CountPendingEmbeddings(context.Background(), false); n != 0 {
		t.Errorf("expected no pending records, got %d", n)
	}
}

func TestEmbeddingJob_SkipsFreshUnlessForced(t *testing.T) {
	store := seed(3)
	emb := &mockEmbedder{}
	job := NewEmbeddingJob(store, emb, EmbeddingOptions{}, zap.NewNop())
	ctx := context.Background()

	if _, err := job.Run(ctx, false, nil); err != nil {
		t.Fatal(err)
	}
	r, err := job.Run(ctx, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Processed != 0 || emb.calls != 3 {
		t.Errorf("fresh records must not be re-embedded: %+v, calls=%d", r, emb.calls)
	}

	r, err = job.Run(ctx, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Processed != 3 {
		t.Errorf("force must re-embed everything, got %+v", r)
	}
}

func TestEmbeddingJob_StaleRecordReembedded(t *testing.T) {
	store := seed(1)
	job := NewEmbeddingJob(store, &mockEmbedder{}, EmbeddingOptions{}, zap.NewNop())
	job.now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	if _, err := job.Run(ctx, false, nil); err != nil {
		t.Fatal(err)
	}

	rec, _ := store.Get(1)
	rec.UpdatedAt = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	store.Put(rec)

	r, err := job.Run(ctx, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Processed != 1 {
		t.Errorf("record updated after its embedding must be re-embedded, got %+v", r)
	}
}

func TestEmbeddingJob_ItemFailureContinues(t *testing.T) {
	store := seed(4)
	job := NewEmbeddingJob(store, &mockEmbedder{failOn: "Name: pkg-2\n"}, EmbeddingOptions{}, zap.NewNop())

	r, err := job.Run(context.Background(), false, nil)
	if err != nil {
		t.Fatalf("a single failure must not abort: %v", err)
	}
	if r.Processed != 3 || r.Failed != 1 {
		t.Errorf("unexpected report %+v", r)
	}
	rec, _ := store.Get(2)
	if rec.HasEmbedding() {
		t.Error("failed record must stay without a vector")
	}
}

func TestEmbeddingJob_ModelUnavailableAborts(t *testing.T) {
	store := seed(5)
	job := NewEmbeddingJob(store, &mockEmbedder{downAfter: 2}, EmbeddingOptions{}, zap.NewNop())

	r, err := job.Run(context.Background(), false, nil)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if r.Processed != 2 {
		t.Errorf("expected partial report with 2 processed, got %+v", r)
	}
	if r.DurationMs < 0 {
		t.Errorf("duration not recorded: %+v", r)
	}
}

func TestEmbeddingJob_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewEmbeddingJob(seed(2), &mockEmbedder{}, EmbeddingOptions{}, zap.NewNop())

	if _, err := job.Run(ctx, false, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fixedDims int

func (d fixedDims) Load(context.Context) (int, error) { return int(d), nil }

func TestEmbeddingJob_BatchResumesAfterFailures(t *testing.T) {
	store := seed(6)
	inner := &mockEmbedder{failOn: "Name: pkg-3\n"}
	gen := embedding.NewGenerator(inner, fixedDims(2), embedding.Options{}, zap.NewNop())
	job := NewEmbeddingJob(store, gen, EmbeddingOptions{PageSize: 4}, zap.NewNop())

	var done int
	r, err := job.Run(context.Background(), false, func(d, _ int) { done = d })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.Processed != 5 || r.Failed != 1 {
		t.Errorf("unexpected report %+v", r)
	}
	if done != 6 {
		t.Errorf("progress must count every record, got %d", done)
	}
	for _, id := range []int64{1, 2, 4, 5, 6} {
		if rec, _ := store.Get(id); !rec.HasEmbedding() {
			t.Errorf("record %d must have a vector", id)
		}
	}
	if inner.calls != 6 {
		t.Errorf("each record must be embedded once, got %d calls", inner.calls)
	}
}

func TestEmbeddingJob_EveryItemFails(t *testing.T) {
	job := NewEmbeddingJob(seed(3), &mockEmbedder{failOn: "pkg-"}, EmbeddingOptions{}, zap.NewNop())

	r, err := job.Run(context.Background(), false, nil)
	if err != nil {
		t.Fatalf("item failures must not abort: %v", err)
	}
	if r.Processed != 0 || r.Failed != 3 {
		t.Errorf("unexpected report %+v", r)
	}
}

// --- Index job ---

func TestIndexJob_FullSnapshot(t *testing.T) {
	store := seed(7)
	syncer := &mockSyncer{}
	job := NewIndexJob(store, syncer, 3, zap.NewNop())

	var loaded int
	r, err := job.Run(context.Background(), func(done, _ int) { loaded = done })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if syncer.inits != 1 || len(syncer.records) != 7 || loaded != 7 {
		t.Errorf("inits=%d records=%d loaded=%d", syncer.inits, len(syncer.records), loaded)
	}
	for i, rec := range syncer.records {
		if rec.ID != int64(i+1) {
			t.Fatalf("snapshot out of order at %d: %d", i, rec.ID)
		}
	}
	if r.Processed != 7 || r.Deleted != 1 {
		t.Errorf("unexpected report %+v", r)
	}
}

func TestIndexJob_InitFailureIsFatal(t *testing.T) {
	syncer := &mockSyncer{initErr: domain.ErrIndexUnavailable}
	job := NewIndexJob(seed(2), syncer, 0, zap.NewNop())

	if _, err := job.Run(context.Background(), nil); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if syncer.records != nil {
		t.Error("sync must not run after a failed initialize")
	}
}

func TestIndexJob_SyncFailure(t *testing.T) {
	syncer := &mockSyncer{syncErr: fmt.Errorf("%w: every chunk failed", domain.ErrIndexUnavailable)}
	job := NewIndexJob(seed(2), syncer, 0, zap.NewNop())

	if _, err := job.Run(context.Background(), nil); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}
