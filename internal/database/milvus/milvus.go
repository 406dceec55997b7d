package milvus

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"JournalSearch/internal/config"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// 文章标题向量集合的固定字段。
// 主键是 "{model}:{article_id}" 形式的组合键，保证同一文章在同一模型下
// 只有一条存活向量，Upsert 即替换。
const (
	FieldID        = "id"
	FieldArticleID = "article_id"
	FieldModel     = "model"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient 包含了 Milvus 客户端实例和相关配置。
type MilvusClient struct {
	Client client.Client        // Milvus 客户端实例。
	Config *config.MilvusConfig // Milvus 配置。
}

// GetClient 使用单例模式创建并返回一个 Milvus 客户端实例。
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		// 使用配置中的地址创建 Milvus 客户端。
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("无法连接到 Milvus: %w", err)
			return
		}
		log.Println("✅ 成功连接到 Milvus!")
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close 安全地关闭与 Milvus 的连接。
func (c *MilvusClient) Close() {
	if c.Client != nil {
		c.Client.Close()
		log.Println("ℹ️ 已安全关闭 Milvus 连接。")
	}
}

// HealthCheck 检查 Milvus 连接的健康状况。
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("Milvus client is nil")
	}
	_, err := c.Client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("Milvus health check failed: %w", err)
	}
	return nil
}

// MetricType 返回配置的相似度度量类型，默认为 COSINE。
func (c *MilvusClient) MetricType() entity.MetricType {
	if c.Config.Index.MetricType == "" {
		return entity.COSINE
	}
	return entity.MetricType(c.Config.Index.MetricType)
}

// EnsureCollection 确保文章标题向量集合存在并已加载。
// dim 是 Embedding 模型的向量维度；集合只在首次运行时创建。
func (c *MilvusClient) EnsureCollection(ctx context.Context, dim int) error {
	collName := c.Config.Collection
	exists, err := c.Client.HasCollection(ctx, collName)
	if err != nil {
		return fmt.Errorf("检查集合是否存在时出错: %w", err)
	}
	if !exists {
		schema := entity.NewSchema().
			WithName(collName).
			WithDescription("Journal title embeddings").
			WithField(entity.NewField().WithName(FieldID).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(128).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldArticleID).
				WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldModel).
				WithDataType(entity.FieldTypeVarChar).WithMaxLength(128)).
			WithField(entity.NewField().WithName(c.Config.VectorField).
				WithDataType(entity.FieldTypeFloatVector).WithDim(int64(dim)))

		if err := c.Client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("创建集合失败: %w", err)
		}
		idx, err := c.buildIndexFromConfig()
		if err != nil {
			return err
		}
		if err := c.Client.CreateIndex(ctx, collName, c.Config.VectorField, idx, false); err != nil {
			return fmt.Errorf("为字段 '%s' 创建索引失败: %w", c.Config.VectorField, err)
		}
		log.Printf("✅ 成功创建集合 '%s' (dim=%d)。", collName, dim)
	}

	if err := c.Client.LoadCollection(ctx, collName, false); err != nil {
		return fmt.Errorf("加载 Milvus 集合 '%s' 失败: %w", collName, err)
	}

	return nil
}

// Dim 返回集合中向量字段的维度，用于启动时的配置一致性检查。
func (c *MilvusClient) Dim(ctx context.Context) (int, error) {
	coll, err := c.Client.DescribeCollection(ctx, c.Config.Collection)
	if err != nil {
		return 0, fmt.Errorf("无法获取集合 '%s' 的描述: %w", c.Config.Collection, err)
	}
	for _, field := range coll.Schema.Fields {
		if field.Name == c.Config.VectorField {
			dimStr, ok := field.TypeParams[entity.TypeParamDim]
			if !ok {
				return 0, fmt.Errorf("向量字段 '%s' 缺少维度参数", field.Name)
			}
			dim, err := strconv.Atoi(dimStr)
			if err != nil {
				return 0, fmt.Errorf("向量字段 '%s' 的维度参数无效: %w", field.Name, err)
			}
			return dim, nil
		}
	}
	return 0, fmt.Errorf("集合 '%s' 中不存在向量字段 '%s'", c.Config.Collection, c.Config.VectorField)
}

// Flush 手动触发一次刷新操作，将内存中的数据写入磁盘。
// 新写入的向量在刷新前可能不可搜索（最终一致）。
func (c *MilvusClient) Flush(ctx context.Context) error {
	collName := c.Config.Collection
	if err := c.Client.Flush(ctx, collName, false); err != nil {
		return fmt.Errorf("刷新集合 '%s' 失败: %w", collName, err)
	}
	return nil
}

// buildIndexFromConfig 是一个辅助函数，用于从配置构建索引实体。
func (c *MilvusClient) buildIndexFromConfig() (entity.Index, error) {
	indexCfg := c.Config.Index
	metricType := c.MetricType()

	switch indexCfg.IndexType {
	case "", "IVF_FLAT":
		nlist, ok := indexCfg.Params["nlist"].(int)
		if !ok {
			nlist = 128
		}
		return entity.NewIndexIvfFlat(metricType, nlist)
	case "HNSW":
		M, ok := indexCfg.Params["M"].(int)
		if !ok {
			M = 8
		}
		efConstruction, ok := indexCfg.Params["efConstruction"].(int)
		if !ok {
			efConstruction = 96
		}
		return entity.NewIndexHNSW(metricType, M, efConstruction)
	case "AUTOINDEX":
		return entity.NewIndexAUTOINDEX(metricType)
	default:
		return nil, fmt.Errorf("不支持的索引类型: %s", indexCfg.IndexType)
	}
}
