package constants

// 验证码用途常量（三步验证流程）
const (
	OtpPurposeEmailVerify   = "email_verify"
	OtpPurposeReportAccess  = "report_access"
	OtpPurposeDecryptAccess = "decrypt_access"
)

// 三步验证流程支持的用途顺序
var ThreeStepPurposes = []string{OtpPurposeEmailVerify, OtpPurposeReportAccess, OtpPurposeDecryptAccess}

// 客户端附加动作标记常量
const (
	ClientActionNewOtpSent = "new_otp_sent"
)

// 三步验证流程状态常量
const (
	StepStateUnstarted       = "UNSTARTED"
	StepStateEmailVerified   = "EMAIL_VERIFIED"
	StepStateReportGenerated = "REPORT_GENERATED"
	StepStateDecryptUnlocked = "DECRYPT_UNLOCKED"
)

// 报告数据来源标记常量
const (
	ReportDataSourceUserRecords  = "USER_HEALTH_RECORDS"
	ReportDataSourceDemoNotFound = "DEMO_DATA_USER_NOT_FOUND"
)

// 报告类型常量
const (
	ReportTypeComprehensive = "comprehensive"
	ReportTypeDiet          = "diet"
	ReportTypeFitness       = "fitness"
	ReportTypeMentalHealth  = "mental_health"
)

// 支持的报告类型集合
var SupportedReportTypes = []string{
	ReportTypeComprehensive,
	ReportTypeDiet,
	ReportTypeFitness,
	ReportTypeMentalHealth,
}

// 餐次类型常量
const (
	MealTypeBreakfast = "breakfast"
	MealTypeLunch     = "lunch"
	MealTypeDinner    = "dinner"
	MealTypeSnack     = "snack"
)

// 运动类型常量
const (
	ActivityTypeRunning  = "running"
	ActivityTypeWalking  = "walking"
	ActivityTypeCycling  = "cycling"
	ActivityTypeSwimming = "swimming"
	ActivityTypeYoga     = "yoga"
	ActivityTypeStrength = "strength"
)

// 情绪标签常量
const (
	MoodHappy    = "happy"
	MoodCalm     = "calm"
	MoodNeutral  = "neutral"
	MoodStressed = "stressed"
	MoodSad      = "sad"
	MoodAnxious  = "anxious"
)

// 正向情绪集合（用于情绪得分计算）
var PositiveMoods = []string{MoodHappy, MoodCalm}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 管理员角色常量
const (
	AdminRoleSuper   = "super_admin"
	AdminRoleSupport = "support"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
)

// 队列常量
const (
	QueueDefault         = "default"
	TaskReportReadyEmail = "report:ready_email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "wn"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleEnUS}

// 授权审计动作常量
const (
	AuditActionAdminLogin       = "admin_login"
	AuditActionUserList         = "user_list"
	AuditActionProgressInspect  = "three_step_progress_inspect"
	AuditActionThreeStepPurge   = "three_step_purge"
	AuditActionAuthzAuditExport = "authz_audit_export"
)

// 授权资源与动作常量（casbin 策略对象）
const (
	AuthzObjectUsers     = "users"
	AuthzObjectThreeStep = "three_step"
	AuthzObjectAudit     = "authz_audit"
	AuthzActionRead      = "read"
	AuthzActionWrite     = "write"
)
