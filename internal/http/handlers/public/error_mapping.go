package public

import (
	"errors"

	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/http/response"
	"github.com/wellnest-next/internal/i18n"
	"github.com/wellnest-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var threeStepCommonErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrInvalidVerifyPurpose, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrStepOutOfOrder, code: response.CodeBadRequest, key: "error.step_out_of_order"},
}

var threeStepRequestExtraErrorRules = []mappedHandlerError{
	{target: service.ErrVerifyCodeTooFrequent, code: response.CodeTooManyRequests, key: "error.verify_code_send_too_frequent"},
	{target: service.ErrEmailRecipientRejected, code: response.CodeBadRequest, key: "error.email_recipient_rejected"},
	{target: service.ErrEmailServiceDisabled, code: response.CodeInternal, key: "error.email_send_failed"},
	{target: service.ErrEmailServiceNotConfigured, code: response.CodeInternal, key: "error.email_send_failed"},
}

var threeStepVerifyExtraErrorRules = []mappedHandlerError{
	{target: service.ErrVerifyCodeFormatInvalid, code: response.CodeBadRequest, key: "error.verify_code_format"},
	{target: service.ErrVerifyCodeInvalid, code: response.CodeBadRequest, key: "error.verify_code_invalid"},
	{target: service.ErrVerifyCodeExpired, code: response.CodeBadRequest, key: "error.verify_code_expired"},
	{target: service.ErrVerifyCodeAttemptsExceeded, code: response.CodeBadRequest, key: "error.verify_code_attempts_exceeded"},
	{target: service.ErrReportTypeInvalid, code: response.CodeBadRequest, key: "error.report_type_invalid"},
	{target: service.ErrReportNotFound, code: response.CodeNotFound, key: "error.report_not_found"},
	{target: service.ErrReportDecryptFailed, code: response.CodeBadRequest, key: "error.report_decrypt_failed"},
}

func respondThreeStepRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(threeStepCommonErrorRules, threeStepRequestExtraErrorRules), response.CodeInternal, "error.email_send_failed")
}

// respondThreeStepVerifyError 统一处理校验类错误。
// 过期换新不是普通失败：附带 new_otp_sent 动作标记，客户端据此清空输入。
func respondThreeStepVerifyError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrVerifyCodeExpiredReissued) {
		locale := i18n.ResolveLocale(c)
		response.ErrorWithAction(c, response.CodeBadRequest, i18n.T(locale, "error.verify_code_expired_reissued"), constants.ClientActionNewOtpSent)
		return
	}
	respondWithMappedError(c, err, concatMappedHandlerErrors(threeStepCommonErrorRules, threeStepVerifyExtraErrorRules, threeStepRequestExtraErrorRules), response.CodeInternal, "error.internal")
}
