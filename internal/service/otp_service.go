package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/repository"
)

// VerifyCodeMailer 验证码投递接口
type VerifyCodeMailer interface {
	SendVerifyCode(toEmail, code, purpose, locale string) error
}

// OtpService 一次性验证码服务
// 同一（标识符，用途）组合最多保留一条有效验证码，新码签发即失效旧码。
type OtpService struct {
	cfg      *config.Config
	codeRepo repository.OneTimeCodeRepository
	userRepo repository.UserRepository
	mailer   VerifyCodeMailer
}

// NewOtpService 创建验证码服务
func NewOtpService(cfg *config.Config, codeRepo repository.OneTimeCodeRepository, userRepo repository.UserRepository, mailer VerifyCodeMailer) *OtpService {
	return &OtpService{
		cfg:      cfg,
		codeRepo: codeRepo,
		userRepo: userRepo,
		mailer:   mailer,
	}
}

// Issue 签发并投递新验证码
// 邮件发送成功后才落库；落库前先失效同组合下的旧验证码。
func (s *OtpService) Issue(identifier, purpose, locale string) (*models.OneTimeCode, error) {
	if s.mailer == nil {
		return nil, ErrEmailServiceNotConfigured
	}
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	purpose = strings.ToLower(strings.TrimSpace(purpose))
	if !isOtpPurposeSupported(purpose) {
		return nil, ErrInvalidVerifyPurpose
	}

	latest, err := s.codeRepo.GetLatest(normalized, purpose)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if latest != nil {
		interval := time.Duration(resolveSendIntervalSeconds(s.cfg.Email.VerifyCode)) * time.Second
		if !latest.IssuedAt.IsZero() && now.Sub(latest.IssuedAt) < interval {
			return nil, ErrVerifyCodeTooFrequent
		}
	}

	code, err := randomNumericCode(resolveCodeLength(s.cfg.Email.VerifyCode))
	if err != nil {
		return nil, err
	}

	record := &models.OneTimeCode{
		Identifier: normalized,
		Purpose:    purpose,
		Code:       code,
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Duration(resolvePurposeExpireMinutes(s.cfg.Email.VerifyCode, purpose)) * time.Minute),
		CreatedAt:  now,
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user != nil {
		record.UserID = &user.ID
	}

	if err := s.mailer.SendVerifyCode(normalized, code, purpose, locale); err != nil {
		return nil, err
	}

	if err := s.codeRepo.InvalidateActive(normalized, purpose); err != nil {
		return nil, err
	}
	if err := s.codeRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Verify 校验并消费验证码
// 格式不符的输入直接拒绝，不读存储；已消费视同无效；
// 已过期时自动换发新码并以 ErrVerifyCodeExpiredReissued 告知。
func (s *OtpService) Verify(identifier, purpose, code, locale string) (*models.OneTimeCode, error) {
	if !isCodeFormatValid(code, resolveCodeLength(s.cfg.Email.VerifyCode)) {
		return nil, ErrVerifyCodeFormatInvalid
	}
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	purpose = strings.ToLower(strings.TrimSpace(purpose))
	if !isOtpPurposeSupported(purpose) {
		return nil, ErrInvalidVerifyPurpose
	}

	record, err := s.codeRepo.GetLatest(normalized, purpose)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrVerifyCodeInvalid
	}
	if record.IsConsumed() {
		return nil, ErrVerifyCodeInvalid
	}

	now := time.Now()
	if record.IsExpired(now) {
		return nil, s.reissueExpired(normalized, purpose, locale)
	}

	maxAttempts := resolveMaxAttempts(s.cfg.Email.VerifyCode)
	if maxAttempts > 0 && record.AttemptCount >= maxAttempts {
		return nil, ErrVerifyCodeAttemptsExceeded
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(code) {
		_ = s.codeRepo.IncrementAttempt(record.ID)
		return nil, ErrVerifyCodeInvalid
	}

	if err := s.codeRepo.MarkConsumed(record.ID, now); err != nil {
		return nil, err
	}
	record.ConsumedAt = &now
	return record, nil
}

// ValidateCodeFormat 仅校验验证码格式，不访问存储
func (s *OtpService) ValidateCodeFormat(code string) error {
	if !isCodeFormatValid(code, resolveCodeLength(s.cfg.Email.VerifyCode)) {
		return ErrVerifyCodeFormatInvalid
	}
	return nil
}

// PurgeExpired 物理清理过期超过保留期的验证码，返回清理条数
func (s *OtpService) PurgeExpired(retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return s.codeRepo.PurgeExpiredBefore(time.Now().Add(-retention))
}

// reissueExpired 过期即换新：换发成功返回换新哨兵，失败退回普通过期错误
func (s *OtpService) reissueExpired(identifier, purpose, locale string) error {
	if _, err := s.Issue(identifier, purpose, locale); err != nil {
		return ErrVerifyCodeExpired
	}
	return ErrVerifyCodeExpiredReissued
}

func isOtpPurposeSupported(purpose string) bool {
	for _, supported := range constants.ThreeStepPurposes {
		if purpose == supported {
			return true
		}
	}
	return false
}

func isCodeFormatValid(code string, length int) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != length {
		return false
	}
	for _, ch := range trimmed {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func resolvePurposeExpireMinutes(cfg config.VerifyCodeConfig, purpose string) int {
	switch purpose {
	case constants.OtpPurposeReportAccess:
		if cfg.ReportAccessExpireMinutes > 0 {
			return cfg.ReportAccessExpireMinutes
		}
		return 15
	case constants.OtpPurposeDecryptAccess:
		if cfg.DecryptAccessExpireMinutes > 0 {
			return cfg.DecryptAccessExpireMinutes
		}
		return 20
	default:
		if cfg.EmailVerifyExpireMinutes > 0 {
			return cfg.EmailVerifyExpireMinutes
		}
		return 10
	}
}

func resolveSendIntervalSeconds(cfg config.VerifyCodeConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 60
	}
	return cfg.SendIntervalSeconds
}

func resolveMaxAttempts(cfg config.VerifyCodeConfig) int {
	if cfg.MaxAttempts <= 0 {
		return 5
	}
	return cfg.MaxAttempts
}

func resolveCodeLength(cfg config.VerifyCodeConfig) int {
	if cfg.Length < 4 || cfg.Length > 10 {
		return 6
	}
	return cfg.Length
}

func randomNumericCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String(), nil
}
