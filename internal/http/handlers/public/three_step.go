package public

import (
	"github.com/wellnest-next/internal/http/response"
	"github.com/wellnest-next/internal/i18n"

	"github.com/gin-gonic/gin"
)

// ThreeStepRequestOtpRequest 三步验证发码请求
type ThreeStepRequestOtpRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ThreeStepVerifyRequest 三步验证校验请求
type ThreeStepVerifyRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	OtpCode    string `json:"otp_code" binding:"required"`
}

// ThreeStepDecryptRequest 第三步校验请求（携带解密令牌）
type ThreeStepDecryptRequest struct {
	Identifier      string `json:"identifier" binding:"required"`
	OtpCode         string `json:"otp_code" binding:"required"`
	ReportType      string `json:"report_type"`
	DecryptionToken string `json:"decryption_token" binding:"required"`
}

// RequestEmailVerification 第一步：请求邮箱验证码
func (h *Handler) RequestEmailVerification(c *gin.Context) {
	var req ThreeStepRequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.ThreeStepService.RequestEmailVerification(req.Identifier, locale)
	if err != nil {
		respondThreeStepRequestError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "verify.code_sent"), result)
}

// VerifyEmailVerification 第一步：校验邮箱验证码
func (h *Handler) VerifyEmailVerification(c *gin.Context) {
	var req ThreeStepVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.ThreeStepService.VerifyEmailVerification(req.Identifier, req.OtpCode, locale)
	if err != nil {
		respondThreeStepVerifyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "verify.email_verified"), result)
}

// RequestReportAccess 第二步：请求报告访问验证码
func (h *Handler) RequestReportAccess(c *gin.Context) {
	var req ThreeStepRequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.ThreeStepService.RequestReportAccess(req.Identifier, locale)
	if err != nil {
		respondThreeStepRequestError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "verify.code_sent"), result)
}

// VerifyReportAccess 第二步：校验验证码并生成加密报告
// 成功时返回密文与一次性解密令牌，明文不在服务端保留。
func (h *Handler) VerifyReportAccess(c *gin.Context) {
	var req ThreeStepVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.ThreeStepService.VerifyReportAccess(req.Identifier, req.OtpCode, locale)
	if err != nil {
		respondThreeStepVerifyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "verify.report_ready"), gin.H{
		"identifier":       result.Identifier,
		"state":            result.State,
		"report_id":        result.Report.ReportID,
		"generated_at":     result.Report.GeneratedAt,
		"data_source":      result.Report.DataSource,
		"encrypted_report": result.Report.EncryptedReport,
		"decryption_token": result.Report.DecryptionToken,
	})
}

// RequestDecryptAccess 第三步：请求报告解密验证码
func (h *Handler) RequestDecryptAccess(c *gin.Context) {
	var req ThreeStepRequestOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.ThreeStepService.RequestDecryptAccess(req.Identifier, locale)
	if err != nil {
		respondThreeStepRequestError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "verify.code_sent"), result)
}

// VerifyDecryptAccess 第三步：校验验证码并解密报告
func (h *Handler) VerifyDecryptAccess(c *gin.Context) {
	var req ThreeStepDecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locale := i18n.ResolveLocale(c)
	result, err := h.ThreeStepService.VerifyDecryptAccess(req.Identifier, req.OtpCode, req.ReportType, req.DecryptionToken, locale)
	if err != nil {
		respondThreeStepVerifyError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(locale, "verify.report_decrypted"), gin.H{
		"identifier":       result.Identifier,
		"state":            result.State,
		"decrypted_report": result.Decrypted,
	})
}
