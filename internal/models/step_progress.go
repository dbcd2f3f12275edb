package models

import (
	"time"

	"github.com/wellnest-next/internal/constants"
)

// StepProgress 三步验证进度记录
// 说明：按标识符唯一，三个时间戳严格线性推进；到达终态后重新发起第一步
// 即开启新一轮报告流程。过期记录由后台任务定期清理，不做软删除。
type StepProgress struct {
	ID                uint       `gorm:"primarykey" json:"id"`                   // 主键
	Identifier        string     `gorm:"uniqueIndex;not null" json:"identifier"` // 标识符（邮箱）
	UserID            *uint      `gorm:"index" json:"user_id,omitempty"`         // 关联用户（标识符已注册则记录）
	EmailVerifiedAt   *time.Time `json:"email_verified_at,omitempty"`            // 第一步通过时间
	ReportGeneratedAt *time.Time `json:"report_generated_at,omitempty"`          // 第二步通过时间
	DecryptUnlockedAt *time.Time `json:"decrypt_unlocked_at,omitempty"`          // 第三步通过时间
	CreatedAt         time.Time  `json:"created_at"`                             // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                // 更新时间
}

// TableName 指定表名
func (StepProgress) TableName() string {
	return "step_progresses"
}

// State 返回当前流程状态
func (p *StepProgress) State() string {
	if p == nil || p.EmailVerifiedAt == nil {
		return constants.StepStateUnstarted
	}
	if p.ReportGeneratedAt == nil {
		return constants.StepStateEmailVerified
	}
	if p.DecryptUnlockedAt == nil {
		return constants.StepStateReportGenerated
	}
	return constants.StepStateDecryptUnlocked
}
