package models

import (
	"time"

	"gorm.io/gorm"
)

// FitnessRecord 运动记录
type FitnessRecord struct {
	ID              uint           `gorm:"primarykey" json:"id"`                           // 主键
	UserID          uint           `gorm:"index;not null" json:"user_id"`                  // 用户
	ActivityType    string         `gorm:"type:varchar(30);not null" json:"activity_type"` // 运动类型（running/walking/…）
	DurationMinutes int            `gorm:"not null;default:0" json:"duration_minutes"`     // 时长（分钟）
	CaloriesBurned  int            `gorm:"not null;default:0" json:"calories_burned"`      // 消耗热量（千卡）
	Steps           int            `gorm:"not null;default:0" json:"steps"`                // 步数
	RecordedAt      time.Time      `gorm:"index;not null" json:"recorded_at"`              // 记录归属时间
	CreatedAt       time.Time      `json:"created_at"`                                     // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                     // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间
}

// TableName 指定表名
func (FitnessRecord) TableName() string {
	return "fitness_records"
}
