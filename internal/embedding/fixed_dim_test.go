package embedding

import (
	"context"
	"testing"
)

// stubModel returns a fixed vector for every text.
type stubModel struct {
	vec   []float32
	calls int
}

func (s *stubModel) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vec, nil
}

func (s *stubModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func TestFixedDimBlankInputReturnsZeroVector(t *testing.T) {
	stub := &stubModel{vec: []float32{1, 2, 3}}
	m, err := NewFixedDimModel(stub, 3)
	if err != nil {
		t.Fatalf("NewFixedDimModel() error = %v", err)
	}

	for _, text := range []string{"", "   ", "\t\n"} {
		vec, err := m.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q) error = %v", text, err)
		}
		if len(vec) != 3 {
			t.Fatalf("Embed(%q) returned %d dims, want 3", text, len(vec))
		}
		for i, v := range vec {
			if v != 0 {
				t.Errorf("Embed(%q)[%d] = %f, want 0", text, i, v)
			}
		}
	}

	// The underlying model must not be called for blank input.
	if stub.calls != 0 {
		t.Errorf("underlying model called %d times for blank input", stub.calls)
	}
}

func TestFixedDimDimensionMismatch(t *testing.T) {
	stub := &stubModel{vec: []float32{1, 2, 3, 4}}
	m, err := NewFixedDimModel(stub, 3)
	if err != nil {
		t.Fatalf("NewFixedDimModel() error = %v", err)
	}

	if _, err := m.Embed(context.Background(), "some text"); err == nil {
		t.Error("expected dimension mismatch error, got nil")
	}
}

func TestFixedDimBatchMixesBlankAndRealInput(t *testing.T) {
	stub := &stubModel{vec: []float32{5, 6}}
	m, err := NewFixedDimModel(stub, 2)
	if err != nil {
		t.Fatalf("NewFixedDimModel() error = %v", err)
	}

	vecs, err := m.EmbedBatch(context.Background(), []string{"real", " ", "also real"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	if vecs[0][0] != 5 || vecs[2][0] != 5 {
		t.Error("non-blank inputs should come from the underlying model")
	}
	if vecs[1][0] != 0 || vecs[1][1] != 0 {
		t.Error("blank input should map to the zero vector")
	}
}

func TestFixedDimRejectsInvalidConstruction(t *testing.T) {
	if _, err := NewFixedDimModel(nil, 3); err == nil {
		t.Error("expected error for nil inner model")
	}
	if _, err := NewFixedDimModel(&stubModel{}, 0); err == nil {
		t.Error("expected error for non-positive dimension")
	}
}
