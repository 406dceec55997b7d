package models

import (
	"time"

	"gorm.io/datatypes"
)

// Article 代表一篇已入库的期刊文章。
// 记录由外部的爬取/摘要流水线创建和修改，本服务只读。
type Article struct {
	ID       uint      `gorm:"primaryKey"`
	Title    string    `gorm:"size:500;not null"`
	PubDate  time.Time `gorm:"type:date;index"` // 发布日期，只有日期部分
	Abstract string    `gorm:"type:text"`

	// Summary 和 Keywords 由外部的摘要服务异步回填，在此之前为空。
	Summary  *string        `gorm:"type:text"`
	Keywords datatypes.JSON // 有序的关键字列表，JSON 数组
}

func (Article) TableName() string {
	return "articles"
}
