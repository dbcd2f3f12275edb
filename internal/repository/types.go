package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// StepProgressListFilter 查询三步流程进度列表的过滤条件
type StepProgressListFilter struct {
	Page        int
	PageSize    int
	Identifier  string
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time
}

// WellnessRecordListFilter 查询健康记录列表的过滤条件
type WellnessRecordListFilter struct {
	Page         int
	PageSize     int
	UserID       uint
	RecordedFrom *time.Time
	RecordedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志列表的过滤条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	Role            string
	Object          string
	Method          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
