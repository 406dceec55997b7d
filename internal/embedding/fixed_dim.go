package embedding

import (
	"context"
	"fmt"
	"strings"
)

// FixedDimModel 包装一个 Embedding 实现并固定其向量维度。
//
// 两条规则:
//   - 空白文本不请求底层模型，直接返回全零向量。下游的相似度搜索
//     对任何维度正确的向量都有定义，空查询不应该是错误。
//   - 底层模型返回的向量维度与配置不一致时报错。维度不匹配属于
//     配置错误，必须在第一次调用时暴露，而不是污染索引。
type FixedDimModel struct {
	inner Embedding
	dim   int
}

// NewFixedDimModel 创建一个维度固定为 dim 的包装模型。
func NewFixedDimModel(inner Embedding, dim int) (*FixedDimModel, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner embedding model is nil")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dim)
	}
	return &FixedDimModel{inner: inner, dim: dim}, nil
}

// Dim 返回配置的向量维度。
func (m *FixedDimModel) Dim() int {
	return m.dim
}

// Embed 为单个文本生成嵌入向量。
func (m *FixedDimModel) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, m.dim), nil
	}
	vec, err := m.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != m.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: model returned %d, configured %d", len(vec), m.dim)
	}
	return vec, nil
}

// EmbedBatch 为一批文本生成嵌入向量。
func (m *FixedDimModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))

	// 过滤出需要真正请求模型的文本，空白文本直接占位全零向量。
	nonEmpty := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			vecs[i] = make([]float32, m.dim)
			continue
		}
		nonEmpty = append(nonEmpty, text)
		positions = append(positions, i)
	}

	if len(nonEmpty) > 0 {
		batch, err := m.inner.EmbedBatch(ctx, nonEmpty)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(nonEmpty) {
			return nil, fmt.Errorf("embedding batch size mismatch: got %d, want %d", len(batch), len(nonEmpty))
		}
		for j, vec := range batch {
			if len(vec) != m.dim {
				return nil, fmt.Errorf("embedding dimension mismatch: model returned %d, configured %d", len(vec), m.dim)
			}
			vecs[positions[j]] = vec
		}
	}

	return vecs, nil
}
