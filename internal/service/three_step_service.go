package service

import (
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/logger"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/queue"
	"github.com/wellnest-next/internal/repository"
)

// ThreeStepService 三步验证流程服务
// 串联验证码、流程进度与健康报告：第一步验证邮箱，第二步生成加密报告，
// 第三步凭解密令牌取回明文。步骤严格线性推进，到达终态后重新完成第一步
// 即开启新一轮。
type ThreeStepService struct {
	cfg           *config.Config
	otpService    *OtpService
	reportService *ReportService
	progressRepo  repository.StepProgressRepository
	userRepo      repository.UserRepository
	queueClient   *queue.Client
}

// NewThreeStepService 创建三步验证流程服务
func NewThreeStepService(cfg *config.Config, otpService *OtpService, reportService *ReportService, progressRepo repository.StepProgressRepository, userRepo repository.UserRepository, queueClient *queue.Client) *ThreeStepService {
	return &ThreeStepService{
		cfg:           cfg,
		otpService:    otpService,
		reportService: reportService,
		progressRepo:  progressRepo,
		userRepo:      userRepo,
		queueClient:   queueClient,
	}
}

// StepRequestResult 验证码签发结果
type StepRequestResult struct {
	Identifier       string `json:"identifier"`
	Purpose          string `json:"purpose"`
	State            string `json:"state"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// StepVerifyResult 步骤验证结果
// Report 仅第二步返回，Decrypted 仅第三步返回。
type StepVerifyResult struct {
	Identifier string                `json:"identifier"`
	State      string                `json:"state"`
	Report     *GenerateReportResult `json:"report,omitempty"`
	Decrypted  *HealthReportPayload  `json:"decrypted,omitempty"`
}

// RequestEmailVerification 第一步：签发邮箱验证码
// 任意状态均可发起，终态用户由此开启新一轮流程。
func (s *ThreeStepService) RequestEmailVerification(identifier, locale string) (*StepRequestResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	record, err := s.otpService.Issue(normalized, constants.OtpPurposeEmailVerify, locale)
	if err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.GetByIdentifier(normalized)
	if err != nil {
		return nil, err
	}
	return buildStepRequestResult(normalized, record, progress), nil
}

// VerifyEmailVerification 第一步：校验邮箱验证码
// 通过后建立或重置流程进度；标识符对应注册用户时同步记录邮箱验证时间。
func (s *ThreeStepService) VerifyEmailVerification(identifier, code, locale string) (*StepVerifyResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	if _, err := s.otpService.Verify(normalized, constants.OtpPurposeEmailVerify, code, locale); err != nil {
		return nil, err
	}

	now := time.Now()
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	progress, err := s.progressRepo.GetByIdentifier(normalized)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &models.StepProgress{
			Identifier:      normalized,
			EmailVerifiedAt: &now,
		}
		if user != nil {
			progress.UserID = &user.ID
		}
		if err := s.progressRepo.Create(progress); err != nil {
			return nil, err
		}
	} else {
		// 重新通过第一步即重置本轮：保留第一步时间，清空后续步骤
		if err := s.progressRepo.ResetCycle(progress.ID, now); err != nil {
			return nil, err
		}
	}

	if user != nil {
		if err := s.userRepo.MarkEmailVerified(user.ID, now); err != nil {
			logger.Warnw("three_step_mark_email_verified_failed",
				"identifier", normalized,
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return &StepVerifyResult{
		Identifier: normalized,
		State:      constants.StepStateEmailVerified,
	}, nil
}

// RequestReportAccess 第二步：签发报告访问验证码
// 要求第一步已通过且本轮尚未到达终态。
func (s *ThreeStepService) RequestReportAccess(identifier, locale string) (*StepRequestResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	progress, err := s.requireReportAccessReady(normalized)
	if err != nil {
		return nil, err
	}
	record, err := s.otpService.Issue(normalized, constants.OtpPurposeReportAccess, locale)
	if err != nil {
		return nil, err
	}
	return buildStepRequestResult(normalized, record, progress), nil
}

// VerifyReportAccess 第二步：校验验证码并生成加密报告
// 通过后生成新的加密报告工件（替换旧工件），密文与解密令牌一并返回，
// 同时投递报告就绪通知邮件。
func (s *ThreeStepService) VerifyReportAccess(identifier, code, locale string) (*StepVerifyResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	if err := s.otpService.ValidateCodeFormat(code); err != nil {
		return nil, err
	}
	progress, err := s.requireReportAccessReady(normalized)
	if err != nil {
		return nil, err
	}
	if _, err := s.otpService.Verify(normalized, constants.OtpPurposeReportAccess, code, locale); err != nil {
		return nil, err
	}

	report, err := s.reportService.Generate(normalized)
	if err != nil {
		return nil, err
	}
	if err := s.progressRepo.MarkReportGenerated(progress.ID, time.Now()); err != nil {
		return nil, err
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueReportReadyEmail(queue.ReportReadyEmailPayload{
			Email:      normalized,
			ReportID:   report.ReportID,
			ReportType: constants.ReportTypeComprehensive,
			Locale:     locale,
		}); err != nil {
			logger.Warnw("three_step_enqueue_report_ready_failed",
				"identifier", normalized,
				"report_id", report.ReportID,
				"error", err,
			)
		}
	}

	return &StepVerifyResult{
		Identifier: normalized,
		State:      constants.StepStateReportGenerated,
		Report:     report,
	}, nil
}

// RequestDecryptAccess 第三步：签发报告解密验证码
// 要求第二步已通过且本轮尚未到达终态。
func (s *ThreeStepService) RequestDecryptAccess(identifier, locale string) (*StepRequestResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	progress, err := s.requireDecryptAccessReady(normalized)
	if err != nil {
		return nil, err
	}
	record, err := s.otpService.Issue(normalized, constants.OtpPurposeDecryptAccess, locale)
	if err != nil {
		return nil, err
	}
	return buildStepRequestResult(normalized, record, progress), nil
}

// VerifyDecryptAccess 第三步：校验验证码并解密报告
// 报告类型在消费验证码之前校验；解密失败对本轮报告不可恢复，需重走第一步。
func (s *ThreeStepService) VerifyDecryptAccess(identifier, code, reportType, token, locale string) (*StepVerifyResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	if err := s.otpService.ValidateCodeFormat(code); err != nil {
		return nil, err
	}
	if _, err := resolveReportType(reportType); err != nil {
		return nil, err
	}
	progress, err := s.requireDecryptAccessReady(normalized)
	if err != nil {
		return nil, err
	}
	if _, err := s.otpService.Verify(normalized, constants.OtpPurposeDecryptAccess, code, locale); err != nil {
		return nil, err
	}

	payload, err := s.reportService.Decrypt(normalized, reportType, token)
	if err != nil {
		return nil, err
	}
	if err := s.progressRepo.MarkDecryptUnlocked(progress.ID, time.Now()); err != nil {
		return nil, err
	}

	return &StepVerifyResult{
		Identifier: normalized,
		State:      constants.StepStateDecryptUnlocked,
		Decrypted:  payload,
	}, nil
}

// GetProgress 查询标识符的流程进度，不存在返回 nil
func (s *ThreeStepService) GetProgress(identifier string) (*models.StepProgress, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	return s.progressRepo.GetByIdentifier(normalized)
}

// ListProgress 分页列出流程进度（管理端）
func (s *ThreeStepService) ListProgress(filter repository.StepProgressListFilter) ([]models.StepProgress, int64, error) {
	return s.progressRepo.List(filter)
}

// PurgeIdentifier 清除标识符的流程进度（管理端），下一次流程从头开始
func (s *ThreeStepService) PurgeIdentifier(identifier string) error {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return err
	}
	return s.progressRepo.DeleteByIdentifier(normalized)
}

// PurgeStale 物理清理超过保留期未更新的流程进度，返回清理条数
func (s *ThreeStepService) PurgeStale(ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return s.progressRepo.PurgeStaleBefore(time.Now().Add(-ttl))
}

// requireReportAccessReady 第二步前置：第一步已通过且未到终态
func (s *ThreeStepService) requireReportAccessReady(identifier string) (*models.StepProgress, error) {
	progress, err := s.progressRepo.GetByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if progress == nil || progress.EmailVerifiedAt == nil || progress.DecryptUnlockedAt != nil {
		return nil, ErrStepOutOfOrder
	}
	return progress, nil
}

// requireDecryptAccessReady 第三步前置：第二步已通过且未到终态
func (s *ThreeStepService) requireDecryptAccessReady(identifier string) (*models.StepProgress, error) {
	progress, err := s.progressRepo.GetByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if progress == nil || progress.ReportGeneratedAt == nil || progress.DecryptUnlockedAt != nil {
		return nil, ErrStepOutOfOrder
	}
	return progress, nil
}

func buildStepRequestResult(identifier string, record *models.OneTimeCode, progress *models.StepProgress) *StepRequestResult {
	return &StepRequestResult{
		Identifier:       identifier,
		Purpose:          record.Purpose,
		State:            progress.State(),
		ExpiresInSeconds: int(record.ExpiresAt.Sub(record.IssuedAt) / time.Second),
	}
}
