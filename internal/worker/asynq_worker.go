package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wellnest-next/internal/logger"
	"github.com/wellnest-next/internal/provider"
	"github.com/wellnest-next/internal/queue"
	"github.com/wellnest-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReportReadyEmail, c.handleReportReadyEmail)
}

func (c *Consumer) handleReportReadyEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_report_ready_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReportReadyEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_report_ready_email_unmarshal_failed", "error", err)
		return err
	}
	receiverEmail := strings.TrimSpace(payload.Email)
	if receiverEmail == "" || strings.TrimSpace(payload.ReportID) == "" {
		logger.Debugw("worker_report_ready_email_skip_invalid_payload", "email", receiverEmail, "report_id", payload.ReportID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_report_ready_email_skip_email_service_nil", "report_id", payload.ReportID)
		return nil
	}

	locale := strings.TrimSpace(payload.Locale)
	if user, err := c.UserRepo.GetByEmail(receiverEmail); err == nil && user != nil && strings.TrimSpace(user.Locale) != "" {
		locale = strings.TrimSpace(user.Locale)
	}

	input := service.ReportReadyEmailInput{
		ReportID:   payload.ReportID,
		ReportType: payload.ReportType,
	}
	if err := c.EmailService.SendReportReadyEmail(receiverEmail, input, locale); err != nil {
		logger.Warnw("worker_report_ready_email_send_failed",
			"receiver_email", receiverEmail,
			"report_id", payload.ReportID,
			"report_type", payload.ReportType,
			"error", err,
		)
		return err
	}
	return nil
}
