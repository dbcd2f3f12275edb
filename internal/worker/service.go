package worker

import (
	"context"
	"errors"
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/logger"
	"github.com/wellnest-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	codeRetention      = 24 * time.Hour
	artifactRetention  = 24 * time.Hour
	defaultPurgeEvery  = 10 * time.Minute
	defaultProgressTTL = 24 * time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.Container != nil {
		go s.runPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPurgeLoop 定期清理过期验证码、滞留的流程进度与旧报告工件。
// 正确性由读取路径的惰性过期判断保证，这里只负责控制存量。
func (s *Service) runPurgeLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.Container == nil {
		return
	}
	c := s.consumer.Container

	progressTTL := defaultProgressTTL
	purgeEvery := defaultPurgeEvery
	if c.Config != nil {
		if c.Config.StepProgress.TTLHours > 0 {
			progressTTL = time.Duration(c.Config.StepProgress.TTLHours) * time.Hour
		}
		if c.Config.StepProgress.PurgeIntervalMinutes > 0 {
			purgeEvery = time.Duration(c.Config.StepProgress.PurgeIntervalMinutes) * time.Minute
		}
	}

	runOnce := func() {
		if c.OtpService != nil {
			if _, err := c.OtpService.PurgeExpired(codeRetention); err != nil {
				logger.Warnw("worker_purge_expired_codes_failed", "error", err)
			}
		}
		if c.ThreeStepService != nil {
			if _, err := c.ThreeStepService.PurgeStale(progressTTL); err != nil {
				logger.Warnw("worker_purge_stale_progress_failed", "error", err)
			}
		}
		if c.ReportService != nil {
			if _, err := c.ReportService.PurgeArtifacts(artifactRetention); err != nil {
				logger.Warnw("worker_purge_report_artifacts_failed", "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(purgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
