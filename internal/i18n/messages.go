package i18n

import "github.com/wellnest-next/internal/constants"

// messages 各语言文案目录
var messages = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":            "请求参数有误",
		"error.internal":               "服务暂时不可用，请稍后再试",
		"error.unauthorized":           "未登录或登录已过期",
		"error.forbidden":              "没有权限执行该操作",
		"error.not_found":              "资源不存在",
		"error.rate_limited":           "操作过于频繁，请稍后再试",
		"error.rate_limit_unavailable": "限流服务不可用，请稍后再试",

		"error.jwt_secret_missing":  "服务端鉴权配置缺失",
		"error.token_invalid":       "登录凭证无效",
		"error.token_revoked":       "登录状态已失效，请重新登录",
		"error.auth_header_missing": "缺少鉴权信息",
		"error.auth_header_invalid": "鉴权信息格式错误",
		"error.user_disabled":       "账号已被禁用",

		"error.email_invalid":       "邮箱格式不正确",
		"error.email_taken":         "该邮箱已被注册",
		"error.invalid_credentials": "邮箱或密码错误",
		"error.invalid_password":    "原密码错误",
		"error.weak_password":       "密码强度不足",
		"error.email_not_verified":  "邮箱尚未验证，请先完成邮箱验证",
		"error.agreement_required":  "请先同意用户协议",
		"error.profile_empty":       "没有需要更新的资料",

		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_require_upper":   "密码需要包含大写字母",
		"error.password_require_lower":   "密码需要包含小写字母",
		"error.password_require_number":  "密码需要包含数字",
		"error.password_require_special": "密码需要包含特殊字符",

		"error.verify_code_format":            "验证码需为 6 位数字",
		"error.verify_code_invalid":           "验证码错误或已失效",
		"error.verify_code_expired":           "验证码已过期，请重新获取",
		"error.verify_code_expired_reissued":  "验证码已过期，新的验证码已发送至您的邮箱",
		"error.verify_code_attempts_exceeded": "验证码尝试次数过多，请重新获取",
		"error.verify_code_send_too_frequent": "验证码发送过于频繁，请稍后再试",

		"error.step_out_of_order": "请先完成上一步验证",

		"error.email_send_failed":        "邮件发送失败，请稍后再试",
		"error.email_recipient_rejected": "收件地址不可用，请检查邮箱",

		"error.report_type_invalid":   "报告类型不支持",
		"error.report_not_found":      "报告不存在或已失效，请重新生成",
		"error.report_decrypt_failed": "报告解密失败，请从第一步重新开始",

		"error.captcha_required":        "请先完成图形验证码",
		"error.captcha_invalid":         "图形验证码错误",
		"error.captcha_unavailable":     "图形验证码未启用",
		"error.captcha_generate_failed": "图形验证码生成失败，请稍后再试",
		"error.captcha_verify_failed":   "图形验证码校验失败，请稍后再试",

		"error.register_failed": "注册失败，请稍后再试",
		"error.login_failed":    "登录失败，请稍后再试",
		"error.user_not_found":  "用户不存在",

		"error.user_id_invalid":       "用户标识无效",
		"error.user_id_type_invalid":  "用户标识类型错误",
		"error.admin_id_invalid":      "管理员标识无效",
		"error.admin_id_type_invalid": "管理员标识类型错误",

		"error.record_invalid": "记录内容不合法",

		"verify.code_sent":        "验证码已发送至您的邮箱",
		"verify.email_verified":   "邮箱验证通过",
		"verify.report_ready":     "健康报告已生成并加密",
		"verify.report_decrypted": "健康报告解密成功",

		"email.report_ready.subject": "您的健康报告已生成",
		"email.report_ready.body":    "您申请的健康报告（编号 %s，类型 %s）已生成并加密。\n\n请在完成第三步验证后使用解密令牌查看，令牌仅可使用一次。",
	},
	constants.LocaleEnUS: {
		"error.bad_request":            "Invalid request parameters",
		"error.internal":               "Service temporarily unavailable, please try again later",
		"error.unauthorized":           "Not signed in or session expired",
		"error.forbidden":              "You are not allowed to perform this action",
		"error.not_found":              "Resource not found",
		"error.rate_limited":           "Too many requests, please try again later",
		"error.rate_limit_unavailable": "Rate limiter unavailable, please try again later",

		"error.jwt_secret_missing":  "Server auth configuration missing",
		"error.token_invalid":       "Invalid credentials",
		"error.token_revoked":       "Session expired, please sign in again",
		"error.auth_header_missing": "Missing authorization header",
		"error.auth_header_invalid": "Malformed authorization header",
		"error.user_disabled":       "Account disabled",

		"error.email_invalid":       "Invalid email address",
		"error.email_taken":         "Email already registered",
		"error.invalid_credentials": "Incorrect email or password",
		"error.invalid_password":    "Current password is incorrect",
		"error.weak_password":       "Password too weak",
		"error.email_not_verified":  "Email not verified yet, please verify your email first",
		"error.agreement_required":  "Please accept the user agreement first",
		"error.profile_empty":       "Nothing to update",

		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",

		"error.verify_code_format":            "Verification code must be 6 digits",
		"error.verify_code_invalid":           "Invalid or inactive verification code",
		"error.verify_code_expired":           "Verification code expired, please request a new one",
		"error.verify_code_expired_reissued":  "Verification code expired, a new code has been sent to your email",
		"error.verify_code_attempts_exceeded": "Too many attempts, please request a new code",
		"error.verify_code_send_too_frequent": "Code requested too frequently, please wait a moment",

		"error.step_out_of_order": "Please complete the previous verification step first",

		"error.email_send_failed":        "Failed to send email, please try again later",
		"error.email_recipient_rejected": "Recipient address rejected, please check the email",

		"error.report_type_invalid":   "Unsupported report type",
		"error.report_not_found":      "Report missing or no longer available, please generate it again",
		"error.report_decrypt_failed": "Report decryption failed, please restart from step one",

		"error.captcha_required":        "Please complete the captcha first",
		"error.captcha_invalid":         "Incorrect captcha",
		"error.captcha_unavailable":     "Captcha is not enabled",
		"error.captcha_generate_failed": "Failed to generate captcha, please try again later",
		"error.captcha_verify_failed":   "Captcha verification failed, please try again later",

		"error.register_failed": "Registration failed, please try again later",
		"error.login_failed":    "Login failed, please try again later",
		"error.user_not_found":  "User not found",

		"error.user_id_invalid":       "Invalid user identity",
		"error.user_id_type_invalid":  "Invalid user identity type",
		"error.admin_id_invalid":      "Invalid admin identity",
		"error.admin_id_type_invalid": "Invalid admin identity type",

		"error.record_invalid": "Invalid record payload",

		"verify.code_sent":        "Verification code sent to your email",
		"verify.email_verified":   "Email verified",
		"verify.report_ready":     "Health report generated and encrypted",
		"verify.report_decrypted": "Health report decrypted",

		"email.report_ready.subject": "Your health report is ready",
		"email.report_ready.body":    "Your health report (ID %s, type %s) has been generated and encrypted.\n\nComplete the final verification step and use your one-time decryption token to view it.",
	},
}
