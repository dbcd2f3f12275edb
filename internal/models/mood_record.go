package models

import (
	"time"

	"gorm.io/gorm"
)

// MoodRecord 情绪记录
type MoodRecord struct {
	ID          uint           `gorm:"primarykey" json:"id"`                            // 主键
	UserID      uint           `gorm:"index;not null" json:"user_id"`                   // 用户
	Mood        string         `gorm:"type:varchar(20);not null" json:"mood"`           // 情绪标签（happy/calm/…）
	Intensity   int            `gorm:"not null;default:5" json:"intensity"`             // 强度（1-10）
	SleepHours  Quantity       `gorm:"type:decimal(10,1);default:0" json:"sleep_hours"` // 睡眠时长（小时）
	JournalNote string         `gorm:"type:text" json:"journal_note"`                   // 日记内容
	RecordedAt  time.Time      `gorm:"index;not null" json:"recorded_at"`               // 记录归属时间
	CreatedAt   time.Time      `json:"created_at"`                                      // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                      // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (MoodRecord) TableName() string {
	return "mood_records"
}
