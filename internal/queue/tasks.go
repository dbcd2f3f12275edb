package queue

import (
	"encoding/json"

	"github.com/wellnest-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReportReadyEmail 报告就绪邮件通知任务
	TaskReportReadyEmail = constants.TaskReportReadyEmail
)

// ReportReadyEmailPayload 报告就绪邮件任务载荷
type ReportReadyEmailPayload struct {
	Email      string `json:"email"`
	ReportID   string `json:"report_id"`
	ReportType string `json:"report_type"`
	Locale     string `json:"locale"`
}

// NewReportReadyEmailTask 创建报告就绪邮件任务
func NewReportReadyEmailTask(payload ReportReadyEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportReadyEmail, body), nil
}
