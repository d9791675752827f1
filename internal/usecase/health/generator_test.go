package health

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/usecase/embedding"
)

type wrongDimsModel struct{}

func (wrongDimsModel) Load(_ context.Context) (int, error) {
	return 0, errors.New("model returned 3 dims, configured 384")
}

func (wrongDimsModel) HealthCheck(_ context.Context) error { return nil }

func (wrongDimsModel) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

func TestCheck_FailedModelLoadIsDegraded(t *testing.T) {
	model := wrongDimsModel{}
	gen := embedding.NewGenerator(
		embedding.NewInstrumentedEmbedder(model, "test", "minilm", zap.NewNop()),
		model, embedding.Options{}, zap.NewNop(),
	)
	svc := New(&mockPinger{}, nil, gen, nil)

	if r := svc.Check(context.Background()); r.Status != Healthy {
		t.Fatalf("before any load the provider is reachable, got %q", r.Status)
	}

	if _, err := gen.Embed(context.Background(), "http router"); !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}

	r := svc.Check(context.Background())
	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentEmbedding] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks[ComponentEmbedding])
	}
}
