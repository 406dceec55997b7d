package embedding

import "context"

// Embedding 定义了所有 embedding 模型需要实现的接口。
// 对固定的模型，相同文本必须产生相同向量（无随机性）。
type Embedding interface {
	// Embed 为单个文本生成嵌入向量。
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch 为一批文本生成嵌入向量，返回值与输入顺序一一对应。
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
