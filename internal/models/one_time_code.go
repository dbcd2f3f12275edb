package models

import (
	"time"

	"gorm.io/gorm"
)

// OneTimeCode 一次性验证码记录
// 说明：三步验证流程的验证码按（标识符，用途）维度存储，签发新码时旧码软删除，
// 同一组合同一时刻最多存在一条有效记录。
type OneTimeCode struct {
	ID           uint           `gorm:"primarykey" json:"id"`             // 主键
	Identifier   string         `gorm:"index;not null" json:"identifier"` // 标识符（邮箱）
	UserID       *uint          `gorm:"index" json:"user_id,omitempty"`   // 关联用户（发送时已注册则记录）
	Purpose      string         `gorm:"index;not null" json:"purpose"`    // 用途（email_verify/report_access/decrypt_access）
	Code         string         `gorm:"not null" json:"-"`                // 验证码（6 位数字，不返回给前端）
	IssuedAt     time.Time      `gorm:"index;not null" json:"issued_at"`  // 签发时间
	ExpiresAt    time.Time      `gorm:"not null" json:"expires_at"`       // 过期时间
	ConsumedAt   *time.Time     `json:"consumed_at,omitempty"`            // 消费时间（验证通过）
	AttemptCount int            `gorm:"not null;default:0" json:"-"`      // 失败尝试次数
	CreatedAt    time.Time      `json:"created_at"`                       // 创建时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间（签发新码时失效旧码）
}

// TableName 指定表名
func (OneTimeCode) TableName() string {
	return "one_time_codes"
}

// IsConsumed 是否已被消费
func (c *OneTimeCode) IsConsumed() bool {
	return c.ConsumedAt != nil
}

// IsExpired 是否已过期（到达过期时刻即视为过期）
func (c *OneTimeCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
