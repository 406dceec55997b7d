package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServiceConfig 定义了对外服务的基础配置。
type ServiceConfig struct {
	Name     string `yaml:"name"`     // 服务名称，用于结构化日志
	HTTPAddr string `yaml:"httpAddr"` // HTTP 监听地址 (例如: ":8080")
}

// MySQLConfig 定义了 MySQL 数据库的连接配置。
type MySQLConfig struct {
	Address         string `yaml:"address"`         // MySQL 服务器地址
	Username        string `yaml:"username"`        // 用户名
	Password        string `yaml:"password"`        // 密码
	Database        string `yaml:"database"`        // 数据库名称
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // 最大打开连接数
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // 最大空闲连接数
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // 连接最大生命周期 (秒)
}

// IndexConfig 定义了 Milvus 向量字段的索引配置。
type IndexConfig struct {
	IndexType  string                 `yaml:"indexType"`  // 索引类型 (例如: "IVF_FLAT", "HNSW")
	MetricType string                 `yaml:"metricType"` // 相似度度量类型 (例如: "COSINE", "IP", "L2")
	Params     map[string]interface{} `yaml:"params"`     // 索引参数 (例如: {"nlist": 128})
}

// MilvusConfig 定义了 Milvus 数据库的连接和集合配置。
type MilvusConfig struct {
	Address     string      `yaml:"address"`     // Milvus 服务地址
	Collection  string      `yaml:"collection"`  // 文章标题向量所在的集合名称
	VectorField string      `yaml:"vectorField"` // 向量字段名称
	Index       IndexConfig `yaml:"index"`       // 索引配置
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// DatabasesConfig 汇总了所有外部存储的连接配置。
type DatabasesConfig struct {
	MySQL  MySQLConfig  `yaml:"mysql"`
	Milvus MilvusConfig `yaml:"milvus"`
	Redis  RedisConfig  `yaml:"redis"`
}

// EmbeddingConfig 定义了 Embedding 模型的配置。
// 模型身份（名称、维度）属于固定配置，不是查询时状态。
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`  // 提供商 ("ollama", "openai", "gemini", "huggingface")
	Model     string `yaml:"model"`     // 模型名称，同时作为向量的 model_identifier
	APIKey    string `yaml:"apiKey"`    // API 密钥 (某些提供商不需要)
	BaseURL   string `yaml:"baseURL"`   // 服务基础 URL (可选)
	Dimension int    `yaml:"dimension"` // 向量维度，必须与 Milvus 集合的维度一致
}

// CacheConfig 定义了搜索结果缓存的配置。
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`    // 是否启用 Redis 结果缓存
	TTLSeconds int  `yaml:"ttlSeconds"` // 缓存条目的有效期 (秒)
}

// SearchConfig 定义了混合检索的行为配置。
type SearchConfig struct {
	DefaultTopK     int         `yaml:"defaultTopK"`     // 未指定 top_k 时的默认值
	OverfetchFactor int         `yaml:"overfetchFactor"` // 过取因子，向量检索数量 = top_k * factor
	MaxCandidates   int         `yaml:"maxCandidates"`   // 向量检索数量的上限
	Cache           CacheConfig `yaml:"cache"`           // 结果缓存配置
}

// IngestConfig 定义了批量向量化任务的配置。
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"` // 工作池并发上限
	BatchSize   int `yaml:"batchSize"`   // 每批处理的文章数量
}

// AppConfig 是应用程序的顶层配置。
type AppConfig struct {
	Service   ServiceConfig   `yaml:"service"`
	Databases DatabasesConfig `yaml:"databases"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	// 读取 YAML 文件内容。
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	// 将 YAML 内容解析到 cfg 结构体中。
	err = yaml.Unmarshal(yamlFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults 为缺省的搜索和批处理参数填入默认值。
func (c *AppConfig) applyDefaults() {
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 10
	}
	if c.Search.OverfetchFactor <= 0 {
		c.Search.OverfetchFactor = 5
	}
	if c.Search.MaxCandidates <= 0 {
		c.Search.MaxCandidates = 200
	}
	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = 4
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 64
	}
	if c.Databases.Milvus.VectorField == "" {
		c.Databases.Milvus.VectorField = "embedding"
	}
}
