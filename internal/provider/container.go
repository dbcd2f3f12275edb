package provider

import (
	"github.com/wellnest-next/internal/authz"
	"github.com/wellnest-next/internal/cache"
	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/logger"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/queue"
	"github.com/wellnest-next/internal/repository"
	"github.com/wellnest-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo             repository.AdminRepository
	UserRepo              repository.UserRepository
	OneTimeCodeRepo       repository.OneTimeCodeRepository
	StepProgressRepo      repository.StepProgressRepository
	ReportArtifactRepo    repository.ReportArtifactRepository
	WellnessRecordRepo    repository.WellnessRecordRepository
	WellnessAggregateRepo repository.WellnessAggregateRepository
	AuthzAuditLogRepo     repository.AuthzAuditLogRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	EmailService      *service.EmailService
	CaptchaService    *service.CaptchaService
	OtpService        *service.OtpService
	ReportCipher      service.ReportCipher
	ReportService     *service.ReportService
	ThreeStepService  *service.ThreeStepService
	AuthzAuditService *service.AuthzAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OneTimeCodeRepo = repository.NewOneTimeCodeRepository(db)
	c.StepProgressRepo = repository.NewStepProgressRepository(db)
	c.ReportArtifactRepo = repository.NewReportArtifactRepository(db)
	c.WellnessRecordRepo = repository.NewWellnessRecordRepository(db)
	c.WellnessAggregateRepo = repository.NewWellnessAggregateRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.OtpService = service.NewOtpService(c.Config, c.OneTimeCodeRepo, c.UserRepo, c.EmailService)

	cipher, err := service.NewFernetReportCipherFromConfig(c.Config.Report)
	if err != nil {
		logger.Errorw("provider_init_report_cipher_failed", "error", err)
		panic(err)
	}
	c.ReportCipher = cipher
	c.ReportService = service.NewReportService(c.Config, c.UserRepo, c.WellnessAggregateRepo, c.ReportArtifactRepo, c.ReportCipher)
	c.ThreeStepService = service.NewThreeStepService(c.Config, c.OtpService, c.ReportService, c.StepProgressRepo, c.UserRepo, c.QueueClient)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
}
