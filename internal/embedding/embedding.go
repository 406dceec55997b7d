package embedding

import (
	"fmt"

	"JournalSearch/internal/config"
)

// NewModel 根据配置创建并返回一个 Embedding 模型实例。
// 返回的实例已经包裹了维度校验（见 FixedDimModel），空输入
// 与维度不匹配的处理遵循统一策略。
//
// 参数:
//
//	cfg: Embedding 配置，包含提供商、模型名称、API 密钥、基础 URL 和维度。
//
// 返回值:
//
//	Embedding: 新创建的 Embedding 模型实例。
//	error: 如果提供商不支持或模型初始化失败，则返回错误。
func NewModel(cfg *config.EmbeddingConfig) (Embedding, error) {
	var (
		inner Embedding
		err   error
	)
	// 根据提供商类型创建相应的 Embedding 模型实例。
	switch cfg.Provider {
	case "gemini":
		inner, err = NewGoogleModel(cfg.APIKey, cfg.Model)
	case "openai":
		inner, err = NewOpenAIModel(cfg.APIKey, cfg.Model)
	case "huggingface":
		inner, err = NewHuggingFaceModel(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "ollama":
		inner, err = NewOllamaModel(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewFixedDimModel(inner, cfg.Dimension)
}
