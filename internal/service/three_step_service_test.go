package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupThreeStepServiceTest(t *testing.T) (*ThreeStepService, *captureMailer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:three_step_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.OneTimeCode{},
		&models.StepProgress{},
		&models.ReportArtifact{},
		&models.DietRecord{},
		&models.FitnessRecord{},
		&models.MoodRecord{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	cfg.Email.VerifyCode = config.VerifyCodeConfig{
		EmailVerifyExpireMinutes:   10,
		ReportAccessExpireMinutes:  15,
		DecryptAccessExpireMinutes: 20,
		SendIntervalSeconds:        60,
		MaxAttempts:                5,
		Length:                     6,
	}
	cfg.Report = config.ReportConfig{AggregateWindowDays: 14}

	userRepo := repository.NewUserRepository(db)
	mailer := &captureMailer{}
	otpSvc := NewOtpService(cfg, repository.NewOneTimeCodeRepository(db), userRepo, mailer)

	cipher, err := NewFernetReportCipherFromConfig(cfg.Report)
	if err != nil {
		t.Fatalf("build cipher failed: %v", err)
	}
	reportSvc := NewReportService(
		cfg,
		userRepo,
		repository.NewWellnessAggregateRepository(db),
		repository.NewReportArtifactRepository(db),
		cipher,
	)

	svc := NewThreeStepService(cfg, otpSvc, reportSvc, repository.NewStepProgressRepository(db), userRepo, nil)
	return svc, mailer, db
}

// backdateLatestCode 回拨最近一条验证码的签发时间，绕过发送间隔限制
func backdateLatestCode(t *testing.T, db *gorm.DB, identifier, purpose string) {
	t.Helper()
	if err := db.Model(&models.OneTimeCode{}).
		Where("identifier = ? AND purpose = ?", identifier, purpose).
		Update("issued_at", time.Now().Add(-2*time.Minute)).Error; err != nil {
		t.Fatalf("backdate code failed: %v", err)
	}
}

// completeThreeStepCycle 走完一轮完整流程，返回终态结果
func completeThreeStepCycle(t *testing.T, svc *ThreeStepService, mailer *captureMailer, identifier string) *StepVerifyResult {
	t.Helper()

	if _, err := svc.RequestEmailVerification(identifier, "zh-CN"); err != nil {
		t.Fatalf("request email verification failed: %v", err)
	}
	if _, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("verify email verification failed: %v", err)
	}

	if _, err := svc.RequestReportAccess(identifier, "zh-CN"); err != nil {
		t.Fatalf("request report access failed: %v", err)
	}
	reportResult, err := svc.VerifyReportAccess(identifier, mailer.lastCode, "zh-CN")
	if err != nil {
		t.Fatalf("verify report access failed: %v", err)
	}
	if reportResult.Report == nil || reportResult.Report.DecryptionToken == "" {
		t.Fatalf("report result incomplete: %+v", reportResult)
	}

	if _, err := svc.RequestDecryptAccess(identifier, "zh-CN"); err != nil {
		t.Fatalf("request decrypt access failed: %v", err)
	}
	finalResult, err := svc.VerifyDecryptAccess(identifier, mailer.lastCode, constants.ReportTypeComprehensive, reportResult.Report.DecryptionToken, "zh-CN")
	if err != nil {
		t.Fatalf("verify decrypt access failed: %v", err)
	}
	return finalResult
}

func TestThreeStepFullFlow(t *testing.T) {
	svc, mailer, _ := setupThreeStepServiceTest(t)
	identifier := "flow@example.com"

	result, err := svc.RequestEmailVerification(identifier, "zh-CN")
	if err != nil {
		t.Fatalf("request email verification failed: %v", err)
	}
	if result.Purpose != constants.OtpPurposeEmailVerify || result.State != constants.StepStateUnstarted {
		t.Fatalf("unexpected request result: %+v", result)
	}
	if result.ExpiresInSeconds != 600 {
		t.Fatalf("email verify code expiry want 600s got %d", result.ExpiresInSeconds)
	}

	step1, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN")
	if err != nil {
		t.Fatalf("verify email verification failed: %v", err)
	}
	if step1.State != constants.StepStateEmailVerified {
		t.Fatalf("state want %s got %s", constants.StepStateEmailVerified, step1.State)
	}

	step2Req, err := svc.RequestReportAccess(identifier, "zh-CN")
	if err != nil {
		t.Fatalf("request report access failed: %v", err)
	}
	if step2Req.Purpose != constants.OtpPurposeReportAccess || step2Req.ExpiresInSeconds != 900 {
		t.Fatalf("unexpected step-2 request result: %+v", step2Req)
	}

	step2, err := svc.VerifyReportAccess(identifier, mailer.lastCode, "zh-CN")
	if err != nil {
		t.Fatalf("verify report access failed: %v", err)
	}
	if step2.State != constants.StepStateReportGenerated || step2.Report == nil {
		t.Fatalf("unexpected step-2 verify result: %+v", step2)
	}
	if step2.Report.EncryptedReport == "" || step2.Report.DecryptionToken == "" {
		t.Fatalf("report ciphertext and token should be returned")
	}

	step3Req, err := svc.RequestDecryptAccess(identifier, "zh-CN")
	if err != nil {
		t.Fatalf("request decrypt access failed: %v", err)
	}
	if step3Req.Purpose != constants.OtpPurposeDecryptAccess || step3Req.ExpiresInSeconds != 1200 {
		t.Fatalf("unexpected step-3 request result: %+v", step3Req)
	}

	step3, err := svc.VerifyDecryptAccess(identifier, mailer.lastCode, constants.ReportTypeComprehensive, step2.Report.DecryptionToken, "zh-CN")
	if err != nil {
		t.Fatalf("verify decrypt access failed: %v", err)
	}
	if step3.State != constants.StepStateDecryptUnlocked || step3.Decrypted == nil {
		t.Fatalf("unexpected step-3 verify result: %+v", step3)
	}
	if step3.Decrypted.ReportID != step2.Report.ReportID {
		t.Fatalf("decrypted report id mismatch")
	}

	progress, err := svc.GetProgress(identifier)
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if progress.State() != constants.StepStateDecryptUnlocked {
		t.Fatalf("final state want %s got %s", constants.StepStateDecryptUnlocked, progress.State())
	}
}

func TestThreeStepOutOfOrder(t *testing.T) {
	svc, mailer, _ := setupThreeStepServiceTest(t)
	identifier := "order@example.com"

	// 未完成第一步不能进入第二、三步
	if _, err := svc.RequestReportAccess(identifier, "zh-CN"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("step-2 request before step-1 should fail, got %v", err)
	}
	if _, err := svc.VerifyReportAccess(identifier, "123456", "zh-CN"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("step-2 verify before step-1 should fail, got %v", err)
	}
	if _, err := svc.RequestDecryptAccess(identifier, "zh-CN"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("step-3 request before step-2 should fail, got %v", err)
	}

	// 完成第一步后仍不能跳到第三步
	if _, err := svc.RequestEmailVerification(identifier, "zh-CN"); err != nil {
		t.Fatalf("request email verification failed: %v", err)
	}
	if _, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("verify email verification failed: %v", err)
	}
	if _, err := svc.RequestDecryptAccess(identifier, "zh-CN"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("step-3 request after step-1 only should fail, got %v", err)
	}
}

func TestThreeStepVerifyFormatGuardBeforeState(t *testing.T) {
	svc, _, _ := setupThreeStepServiceTest(t)

	// 格式不符的验证码在状态检查前被拒绝
	if _, err := svc.VerifyReportAccess("guard@example.com", "12ab56", "zh-CN"); !errors.Is(err, ErrVerifyCodeFormatInvalid) {
		t.Fatalf("bad code format should fail first, got %v", err)
	}
	if _, err := svc.VerifyDecryptAccess("guard@example.com", "12345", constants.ReportTypeComprehensive, "token", "zh-CN"); !errors.Is(err, ErrVerifyCodeFormatInvalid) {
		t.Fatalf("bad code format should fail first, got %v", err)
	}

	// 报告类型在消费验证码之前校验
	if _, err := svc.VerifyDecryptAccess("guard@example.com", "123456", "bogus", "token", "zh-CN"); !errors.Is(err, ErrReportTypeInvalid) {
		t.Fatalf("bad report type should fail before otp consumption, got %v", err)
	}
}

func TestThreeStepTerminalStateRestartsCycle(t *testing.T) {
	svc, mailer, db := setupThreeStepServiceTest(t)
	identifier := "restart@example.com"

	completeThreeStepCycle(t, svc, mailer, identifier)

	// 终态后第二、三步不可重复发起
	if _, err := svc.RequestReportAccess(identifier, "zh-CN"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("step-2 request in terminal state should fail, got %v", err)
	}
	if _, err := svc.RequestDecryptAccess(identifier, "zh-CN"); !errors.Is(err, ErrStepOutOfOrder) {
		t.Fatalf("step-3 request in terminal state should fail, got %v", err)
	}

	// 重新完成第一步即开启新一轮
	backdateLatestCode(t, db, identifier, constants.OtpPurposeEmailVerify)
	if _, err := svc.RequestEmailVerification(identifier, "zh-CN"); err != nil {
		t.Fatalf("restart request failed: %v", err)
	}
	if _, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("restart verify failed: %v", err)
	}

	progress, err := svc.GetProgress(identifier)
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if progress.State() != constants.StepStateEmailVerified {
		t.Fatalf("restarted state want %s got %s", constants.StepStateEmailVerified, progress.State())
	}
	if progress.ReportGeneratedAt != nil || progress.DecryptUnlockedAt != nil {
		t.Fatalf("restart should clear later step timestamps: %+v", progress)
	}
}

func TestThreeStepDecryptFailureKeepsState(t *testing.T) {
	svc, mailer, db := setupThreeStepServiceTest(t)
	identifier := "broken@example.com"

	if _, err := svc.RequestEmailVerification(identifier, "zh-CN"); err != nil {
		t.Fatalf("request email verification failed: %v", err)
	}
	if _, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("verify email verification failed: %v", err)
	}
	if _, err := svc.RequestReportAccess(identifier, "zh-CN"); err != nil {
		t.Fatalf("request report access failed: %v", err)
	}
	if _, err := svc.VerifyReportAccess(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("verify report access failed: %v", err)
	}
	if _, err := svc.RequestDecryptAccess(identifier, "zh-CN"); err != nil {
		t.Fatalf("request decrypt access failed: %v", err)
	}

	if _, err := svc.VerifyDecryptAccess(identifier, mailer.lastCode, constants.ReportTypeComprehensive, "wrong-token", "zh-CN"); !errors.Is(err, ErrReportDecryptFailed) {
		t.Fatalf("wrong token should return ErrReportDecryptFailed, got %v", err)
	}

	// 解密失败不推进状态
	progress, err := svc.GetProgress(identifier)
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if progress.State() != constants.StepStateReportGenerated {
		t.Fatalf("state should stay %s, got %s", constants.StepStateReportGenerated, progress.State())
	}

	// 验证码已被消费，重试需换新码
	backdateLatestCode(t, db, identifier, constants.OtpPurposeDecryptAccess)
	if _, err := svc.RequestDecryptAccess(identifier, "zh-CN"); err != nil {
		t.Fatalf("re-request decrypt access failed: %v", err)
	}
}

func TestThreeStepRegisteredUserGetsEmailVerified(t *testing.T) {
	svc, mailer, db := setupThreeStepServiceTest(t)
	identifier := "member@example.com"

	user := models.User{Email: identifier, PasswordHash: "hash", Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if _, err := svc.RequestEmailVerification(identifier, "zh-CN"); err != nil {
		t.Fatalf("request email verification failed: %v", err)
	}
	if _, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("verify email verification failed: %v", err)
	}

	var stored models.User
	if err := db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.EmailVerifiedAt == nil {
		t.Fatalf("registered user should be marked email verified")
	}

	progress, err := svc.GetProgress(identifier)
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if progress.UserID == nil || *progress.UserID != user.ID {
		t.Fatalf("progress should link registered user")
	}
}

func TestThreeStepPurge(t *testing.T) {
	svc, mailer, db := setupThreeStepServiceTest(t)
	identifier := "purge@example.com"

	if _, err := svc.RequestEmailVerification(identifier, "zh-CN"); err != nil {
		t.Fatalf("request email verification failed: %v", err)
	}
	if _, err := svc.VerifyEmailVerification(identifier, mailer.lastCode, "zh-CN"); err != nil {
		t.Fatalf("verify email verification failed: %v", err)
	}

	if err := svc.PurgeIdentifier(identifier); err != nil {
		t.Fatalf("purge identifier failed: %v", err)
	}
	progress, err := svc.GetProgress(identifier)
	if err != nil {
		t.Fatalf("get progress failed: %v", err)
	}
	if progress != nil {
		t.Fatalf("purged identifier should have no progress")
	}

	// 超期进度由定时清理回收
	old := time.Now().Add(-72 * time.Hour)
	stale := models.StepProgress{Identifier: "stale@example.com", EmailVerifiedAt: &old, CreatedAt: old, UpdatedAt: old}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("create stale progress failed: %v", err)
	}
	if err := db.Model(&models.StepProgress{}).Where("id = ?", stale.ID).
		Update("updated_at", old).Error; err != nil {
		t.Fatalf("backdate progress failed: %v", err)
	}

	purged, err := svc.PurgeStale(24 * time.Hour)
	if err != nil {
		t.Fatalf("purge stale failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged count want 1 got %d", purged)
	}
}
