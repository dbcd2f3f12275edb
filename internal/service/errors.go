package service

import "errors"

// 业务层哨兵错误，处理层据此映射响应码与多语言文案。
var (
	ErrNotFound = errors.New("record not found")

	// 账号
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrUserDisabled       = errors.New("user disabled")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAgreementRequired  = errors.New("agreement not accepted")
	ErrProfileEmpty       = errors.New("profile update is empty")

	// 一次性验证码
	ErrInvalidVerifyPurpose       = errors.New("unsupported verify purpose")
	ErrVerifyCodeFormatInvalid    = errors.New("verify code format invalid")
	ErrVerifyCodeInvalid          = errors.New("verify code invalid")
	ErrVerifyCodeExpired          = errors.New("verify code expired")
	ErrVerifyCodeExpiredReissued  = errors.New("verify code expired, new code issued")
	ErrVerifyCodeAttemptsExceeded = errors.New("verify code attempts exceeded")
	ErrVerifyCodeTooFrequent      = errors.New("verify code requested too frequently")

	// 三步流程
	ErrStepOutOfOrder = errors.New("step out of order")

	// 健康报告
	ErrReportTypeInvalid   = errors.New("unsupported report type")
	ErrReportNotFound      = errors.New("report not found")
	ErrReportDecryptFailed = errors.New("report decrypt failed")

	// 邮件
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	// 图形验证码
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify failed")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	// 健康记录
	ErrRecordInvalid = errors.New("record payload invalid")
)
