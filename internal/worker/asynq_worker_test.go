package worker

import (
	"context"
	"testing"

	"github.com/wellnest-next/internal/provider"
	"github.com/wellnest-next/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleReportReadyEmailInvalidJSON(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskReportReadyEmail, []byte("{not-json"))

	if err := consumer.handleReportReadyEmail(context.Background(), task); err == nil {
		t.Fatalf("expected error for invalid payload json")
	}
}

func TestHandleReportReadyEmailSkipEmptyPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewReportReadyEmailTask(queue.ReportReadyEmailPayload{
		Email:    "   ",
		ReportID: "",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleReportReadyEmail(context.Background(), task); err != nil {
		t.Fatalf("empty payload should be skipped without error, got %v", err)
	}
}

func TestHandleReportReadyEmailSkipNilEmailService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task, err := queue.NewReportReadyEmailTask(queue.ReportReadyEmailPayload{
		Email:      "user@example.com",
		ReportID:   "rpt-123",
		ReportType: "comprehensive",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleReportReadyEmail(context.Background(), task); err != nil {
		t.Fatalf("nil email service should be skipped without error, got %v", err)
	}
}

func TestRegisterNilMux(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	// 不应 panic
	consumer.Register(nil)
}
