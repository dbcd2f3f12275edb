package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportArtifact 加密报告制品
// 说明：第二步生成的密文在服务端暂存，解密密钥只下发给客户端；
// 生成新报告时旧制品软删除，解密成功后制品被消费。
type ReportArtifact struct {
	ID          uint           `gorm:"primarykey" json:"id"`                 // 主键
	Identifier  string         `gorm:"index;not null" json:"identifier"`     // 标识符（邮箱）
	ReportID    string         `gorm:"uniqueIndex;size:36" json:"report_id"` // 报告编号（UUID）
	Ciphertext  string         `gorm:"type:text;not null" json:"-"`          // 加密后的报告内容
	GeneratedAt time.Time      `gorm:"index;not null" json:"generated_at"`   // 生成时间
	ConsumedAt  *time.Time     `json:"consumed_at,omitempty"`                // 消费时间（解密成功）
	CreatedAt   time.Time      `json:"created_at"`                           // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间（被新报告替换）
}

// TableName 指定表名
func (ReportArtifact) TableName() string {
	return "report_artifacts"
}

// IsConsumed 是否已被消费
func (a *ReportArtifact) IsConsumed() bool {
	return a.ConsumedAt != nil
}
