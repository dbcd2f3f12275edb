package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/provider"
	"github.com/wellnest-next/internal/repository"
	"github.com/wellnest-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type stubMailer struct {
	lastCode string
}

func (m *stubMailer) SendVerifyCode(toEmail, code, purpose, locale string) error {
	m.lastCode = code
	return nil
}

func setupThreeStepHandlerTest(t *testing.T) (*Handler, *stubMailer, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:three_step_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		EmailVerifyExpireMinutes: 10,
		SendIntervalSeconds:      60,
		MaxAttempts:              5,
		Length:                   6,
	}
	cfg.Report = config.ReportConfig{AggregateWindowDays: 14}

	userRepo := repository.NewUserRepository(db)
	mailer := &stubMailer{}
	otpSvc := service.NewOtpService(cfg, repository.NewOneTimeCodeRepository(db), userRepo, mailer)

	cipher, err := service.NewFernetReportCipherFromConfig(cfg.Report)
	if err != nil {
		t.Fatalf("build cipher failed: %v", err)
	}
	reportSvc := service.NewReportService(
		cfg,
		userRepo,
		repository.NewWellnessAggregateRepository(db),
		repository.NewReportArtifactRepository(db),
		cipher,
	)
	threeStepSvc := service.NewThreeStepService(cfg, otpSvc, reportSvc, repository.NewStepProgressRepository(db), userRepo, nil)

	handler := New(&provider.Container{
		Config:           cfg,
		UserRepo:         userRepo,
		OtpService:       otpSvc,
		ReportService:    reportSvc,
		ThreeStepService: threeStepSvc,
	})
	return handler, mailer, db
}

func postJSONContext(t *testing.T, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response failed: %v, body=%s", err, w.Body.String())
	}
	return envelope
}

func TestThreeStepHandlerFullFlow(t *testing.T) {
	handler, mailer, _ := setupThreeStepHandlerTest(t)
	identifier := "handler_flow@example.com"

	// 第一步：发码
	c, w := postJSONContext(t, "/api/security/three-step/request-email-verification",
		fmt.Sprintf(`{"identifier":%q}`, identifier))
	handler.RequestEmailVerification(c)
	if w.Code != http.StatusOK {
		t.Fatalf("request email verification http status want 200 got %d", w.Code)
	}
	envelope := decodeEnvelope(t, w)
	if envelope["success"] != true {
		t.Fatalf("request email verification should succeed: %s", w.Body.String())
	}

	// 第一步：校验
	c, w = postJSONContext(t, "/api/security/three-step/verify-email-verification",
		fmt.Sprintf(`{"identifier":%q,"otp_code":%q}`, identifier, mailer.lastCode))
	handler.VerifyEmailVerification(c)
	envelope = decodeEnvelope(t, w)
	if envelope["success"] != true {
		t.Fatalf("verify email verification should succeed: %s", w.Body.String())
	}
	data := envelope["data"].(map[string]interface{})
	if data["state"] != constants.StepStateEmailVerified {
		t.Fatalf("state want %s got %v", constants.StepStateEmailVerified, data["state"])
	}

	// 第二步：发码并生成报告
	c, w = postJSONContext(t, "/api/security/three-step/request-report-access",
		fmt.Sprintf(`{"identifier":%q}`, identifier))
	handler.RequestReportAccess(c)
	if envelope = decodeEnvelope(t, w); envelope["success"] != true {
		t.Fatalf("request report access should succeed: %s", w.Body.String())
	}

	c, w = postJSONContext(t, "/api/security/three-step/verify-report-access",
		fmt.Sprintf(`{"identifier":%q,"otp_code":%q}`, identifier, mailer.lastCode))
	handler.VerifyReportAccess(c)
	envelope = decodeEnvelope(t, w)
	if envelope["success"] != true {
		t.Fatalf("verify report access should succeed: %s", w.Body.String())
	}
	data = envelope["data"].(map[string]interface{})
	if data["state"] != constants.StepStateReportGenerated {
		t.Fatalf("state want %s got %v", constants.StepStateReportGenerated, data["state"])
	}
	encrypted, _ := data["encrypted_report"].(string)
	token, _ := data["decryption_token"].(string)
	if encrypted == "" || token == "" {
		t.Fatalf("step-2 response should carry ciphertext and token: %s", w.Body.String())
	}

	// 第三步：发码并解密
	c, w = postJSONContext(t, "/api/security/three-step/request-decrypt-access",
		fmt.Sprintf(`{"identifier":%q}`, identifier))
	handler.RequestDecryptAccess(c)
	if envelope = decodeEnvelope(t, w); envelope["success"] != true {
		t.Fatalf("request decrypt access should succeed: %s", w.Body.String())
	}

	c, w = postJSONContext(t, "/api/security/three-step/verify-decrypt-access",
		fmt.Sprintf(`{"identifier":%q,"otp_code":%q,"report_type":"comprehensive","decryption_token":%q}`, identifier, mailer.lastCode, token))
	handler.VerifyDecryptAccess(c)
	envelope = decodeEnvelope(t, w)
	if envelope["success"] != true {
		t.Fatalf("verify decrypt access should succeed: %s", w.Body.String())
	}
	data = envelope["data"].(map[string]interface{})
	if data["state"] != constants.StepStateDecryptUnlocked {
		t.Fatalf("state want %s got %v", constants.StepStateDecryptUnlocked, data["state"])
	}
	if data["decrypted_report"] == nil {
		t.Fatalf("step-3 response should carry decrypted report")
	}
}

func TestThreeStepHandlerRejectsMissingFields(t *testing.T) {
	handler, _, _ := setupThreeStepHandlerTest(t)

	c, w := postJSONContext(t, "/api/security/three-step/request-email-verification", `{}`)
	handler.RequestEmailVerification(c)
	envelope := decodeEnvelope(t, w)
	if envelope["success"] != false {
		t.Fatalf("missing identifier should fail: %s", w.Body.String())
	}

	// 第三步缺少解密令牌
	c, w = postJSONContext(t, "/api/security/three-step/verify-decrypt-access",
		`{"identifier":"a@b.com","otp_code":"123456"}`)
	handler.VerifyDecryptAccess(c)
	envelope = decodeEnvelope(t, w)
	if envelope["success"] != false {
		t.Fatalf("missing decryption token should fail: %s", w.Body.String())
	}
}

func TestThreeStepHandlerOutOfOrder(t *testing.T) {
	handler, _, _ := setupThreeStepHandlerTest(t)

	c, w := postJSONContext(t, "/api/security/three-step/request-report-access",
		`{"identifier":"skip@example.com"}`)
	handler.RequestReportAccess(c)
	envelope := decodeEnvelope(t, w)
	if envelope["success"] != false {
		t.Fatalf("step-2 before step-1 should fail: %s", w.Body.String())
	}
	if code, _ := envelope["status_code"].(float64); int(code) != 400 {
		t.Fatalf("status code want 400 got %v", envelope["status_code"])
	}
}

func TestThreeStepHandlerExpiredCodeSignalsReissue(t *testing.T) {
	handler, mailer, db := setupThreeStepHandlerTest(t)
	identifier := "expired@example.com"

	c, w := postJSONContext(t, "/api/security/three-step/request-email-verification",
		fmt.Sprintf(`{"identifier":%q}`, identifier))
	handler.RequestEmailVerification(c)
	if envelope := decodeEnvelope(t, w); envelope["success"] != true {
		t.Fatalf("request email verification failed: %s", w.Body.String())
	}
	expiredCode := mailer.lastCode

	past := time.Now().Add(-time.Hour)
	if err := db.Model(&models.OneTimeCode{}).
		Where("identifier = ?", identifier).
		Updates(map[string]interface{}{"issued_at": past, "expires_at": past.Add(10 * time.Minute)}).Error; err != nil {
		t.Fatalf("expire code failed: %v", err)
	}

	c, w = postJSONContext(t, "/api/security/three-step/verify-email-verification",
		fmt.Sprintf(`{"identifier":%q,"otp_code":%q}`, identifier, expiredCode))
	handler.VerifyEmailVerification(c)
	envelope := decodeEnvelope(t, w)
	if envelope["success"] != false {
		t.Fatalf("expired code should fail: %s", w.Body.String())
	}
	if envelope["action"] != constants.ClientActionNewOtpSent {
		t.Fatalf("expired code should signal %q, got %v", constants.ClientActionNewOtpSent, envelope["action"])
	}
	if mailer.lastCode == expiredCode {
		t.Fatalf("a fresh code should have been issued")
	}

	// 新码可直接完成第一步
	c, w = postJSONContext(t, "/api/security/three-step/verify-email-verification",
		fmt.Sprintf(`{"identifier":%q,"otp_code":%q}`, identifier, mailer.lastCode))
	handler.VerifyEmailVerification(c)
	if envelope := decodeEnvelope(t, w); envelope["success"] != true {
		t.Fatalf("fresh code should verify: %s", w.Body.String())
	}
}
