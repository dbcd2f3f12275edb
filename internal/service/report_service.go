package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/repository"

	"github.com/google/uuid"
)

// ReportService 健康报告服务
// 聚合健康记录生成加密报告，凭一次性令牌换取明文。
type ReportService struct {
	cfg           *config.Config
	userRepo      repository.UserRepository
	aggregateRepo repository.WellnessAggregateRepository
	artifactRepo  repository.ReportArtifactRepository
	cipher        ReportCipher
}

// NewReportService 创建健康报告服务
func NewReportService(cfg *config.Config, userRepo repository.UserRepository, aggregateRepo repository.WellnessAggregateRepository, artifactRepo repository.ReportArtifactRepository, cipher ReportCipher) *ReportService {
	return &ReportService{
		cfg:           cfg,
		userRepo:      userRepo,
		aggregateRepo: aggregateRepo,
		artifactRepo:  artifactRepo,
		cipher:        cipher,
	}
}

// HealthReportPayload 健康报告载荷（解密后的明文结构）
type HealthReportPayload struct {
	ReportID    string                `json:"report_id"`
	ReportType  string                `json:"report_type"`
	Identifier  string                `json:"identifier"`
	DataSource  string                `json:"data_source"`
	GeneratedAt string                `json:"generated_at"`
	WindowFrom  string                `json:"window_from"`
	WindowTo    string                `json:"window_to"`
	Diet        *DietReportSection    `json:"diet,omitempty"`
	Fitness     *FitnessReportSection `json:"fitness,omitempty"`
	Mood        *MoodReportSection    `json:"mood,omitempty"`
	Trends      []ReportTrendPoint    `json:"trends,omitempty"`
	Scores      ReportScores          `json:"scores"`
}

// DietReportSection 饮食域汇总
type DietReportSection struct {
	TotalMeals        int64             `json:"total_meals"`
	TotalCalories     int64             `json:"total_calories"`
	AvgCaloriesPerDay string            `json:"avg_calories_per_day"`
	TotalProteinGrams string            `json:"total_protein_grams"`
	TotalCarbsGrams   string            `json:"total_carbs_grams"`
	TotalFatGrams     string            `json:"total_fat_grams"`
	AvgWaterMLPerDay  string            `json:"avg_water_ml_per_day"`
	ActiveDays        int64             `json:"active_days"`
	MealTypeBreakdown []MealTypeSummary `json:"meal_type_breakdown"`
}

// MealTypeSummary 餐别汇总项
type MealTypeSummary struct {
	MealType     string `json:"meal_type"`
	Meals        int64  `json:"meals"`
	Calories     int64  `json:"calories"`
	CalorieShare string `json:"calorie_share"`
}

// FitnessReportSection 运动域汇总
type FitnessReportSection struct {
	TotalSessions        int64             `json:"total_sessions"`
	TotalDurationMinutes int64             `json:"total_duration_minutes"`
	TotalCaloriesBurned  int64             `json:"total_calories_burned"`
	TotalSteps           int64             `json:"total_steps"`
	AvgSessionMinutes    string            `json:"avg_session_minutes"`
	WeeklyActiveMinutes  string            `json:"weekly_active_minutes"`
	ActiveDays           int64             `json:"active_days"`
	TopActivities        []ActivitySummary `json:"top_activities"`
}

// ActivitySummary 活动类型汇总项
type ActivitySummary struct {
	ActivityType    string `json:"activity_type"`
	Sessions        int64  `json:"sessions"`
	DurationMinutes int64  `json:"duration_minutes"`
	CaloriesBurned  int64  `json:"calories_burned"`
}

// MoodReportSection 情绪域汇总
type MoodReportSection struct {
	TotalEntries     int64       `json:"total_entries"`
	PositiveShare    string      `json:"positive_share"`
	AvgIntensity     string      `json:"avg_intensity"`
	AvgSleepHours    string      `json:"avg_sleep_hours"`
	MoodDistribution []MoodShare `json:"mood_distribution"`
}

// MoodShare 情绪分布项
type MoodShare struct {
	Mood    string `json:"mood"`
	Entries int64  `json:"entries"`
	Share   string `json:"share"`
}

// ReportTrendPoint 按日趋势点
type ReportTrendPoint struct {
	Date            string `json:"date"`
	CaloriesIn      int64  `json:"calories_in"`
	ActivityMinutes int64  `json:"activity_minutes"`
	MoodEntries     int64  `json:"mood_entries"`
}

// ReportScores 三域评分与总评（0-100）
type ReportScores struct {
	Nutrition float64 `json:"nutrition_score"`
	Fitness   float64 `json:"fitness_score"`
	Wellness  float64 `json:"wellness_score"`
	Overall   float64 `json:"overall_score"`
}

// GenerateReportResult 报告生成结果
type GenerateReportResult struct {
	ReportID        string `json:"report_id"`
	GeneratedAt     string `json:"generated_at"`
	DataSource      string `json:"data_source"`
	EncryptedReport string `json:"encrypted_report"`
	DecryptionToken string `json:"decryption_token"`
}

type reportWindow struct {
	startAt time.Time
	endAt   time.Time
	days    int
}

// Generate 为标识符生成加密报告
// 标识符无对应用户或窗口内无任何记录时，返回带占位标记的演示报告。
func (s *ReportService) Generate(identifier string) (*GenerateReportResult, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	window := resolveReportWindow(s.cfg.Report, now)

	payload, err := s.assemblePayload(normalized, window, now)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	ciphertext, token, err := s.cipher.Encrypt(raw)
	if err != nil {
		return nil, err
	}

	artifact := &models.ReportArtifact{
		Identifier:  normalized,
		ReportID:    payload.ReportID,
		Ciphertext:  ciphertext,
		GeneratedAt: now,
		CreatedAt:   now,
	}
	if err := s.artifactRepo.ReplaceForIdentifier(artifact); err != nil {
		return nil, err
	}

	return &GenerateReportResult{
		ReportID:        payload.ReportID,
		GeneratedAt:     payload.GeneratedAt,
		DataSource:      payload.DataSource,
		EncryptedReport: ciphertext,
		DecryptionToken: token,
	}, nil
}

// Decrypt 校验令牌并取回明文报告
// 成功后工件即被消费，同一份报告不可二次取回。
func (s *ReportService) Decrypt(identifier, reportType, token string) (*HealthReportPayload, error) {
	normalized, err := normalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	resolvedType, err := resolveReportType(reportType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrReportDecryptFailed
	}

	artifact, err := s.artifactRepo.GetLatestByIdentifier(normalized)
	if err != nil {
		return nil, err
	}
	if artifact == nil {
		return nil, ErrReportNotFound
	}

	raw, err := s.cipher.Decrypt(artifact.Ciphertext, token)
	if err != nil {
		return nil, err
	}
	payload := &HealthReportPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, ErrReportDecryptFailed
	}

	if err := s.artifactRepo.MarkConsumed(artifact.ID, time.Now()); err != nil {
		return nil, err
	}

	applyReportType(payload, resolvedType)
	return payload, nil
}

// PurgeArtifacts 物理清理生成超过保留期的报告工件，返回清理条数
func (s *ReportService) PurgeArtifacts(retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return s.artifactRepo.PurgeBefore(time.Now().Add(-retention))
}

func (s *ReportService) assemblePayload(identifier string, window reportWindow, now time.Time) (*HealthReportPayload, error) {
	payload := &HealthReportPayload{
		ReportID:    uuid.NewString(),
		ReportType:  constants.ReportTypeComprehensive,
		Identifier:  identifier,
		GeneratedAt: now.Format(time.RFC3339),
		WindowFrom:  window.startAt.Format(time.RFC3339),
		WindowTo:    window.endAt.Add(-time.Second).Format(time.RFC3339),
	}

	user, err := s.userRepo.GetByEmail(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		fillDemoReportSections(payload)
		return payload, nil
	}

	counts, err := s.aggregateRepo.CountRecords(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	if counts.Total() == 0 {
		fillDemoReportSections(payload)
		return payload, nil
	}

	payload.DataSource = constants.ReportDataSourceUserRecords

	diet, err := s.aggregateRepo.GetDietSummary(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	meals, err := s.aggregateRepo.GetMealTypeBreakdown(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	fitness, err := s.aggregateRepo.GetFitnessSummary(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	activities, err := s.aggregateRepo.GetActivityBreakdown(user.ID, window.startAt, window.endAt, 5)
	if err != nil {
		return nil, err
	}
	mood, err := s.aggregateRepo.GetMoodSummary(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	moods, err := s.aggregateRepo.GetMoodDistribution(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	trends, err := s.aggregateRepo.GetDailyTrends(user.ID, window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	payload.Diet = buildDietSection(diet, meals, window)
	payload.Fitness = buildFitnessSection(fitness, activities)
	payload.Mood = buildMoodSection(mood, moods)
	payload.Trends = buildTrendPoints(trends)
	payload.Scores = buildReportScores(s.cfg.Report, diet, fitness, mood, window)
	return payload, nil
}

func buildDietSection(row repository.DietSummaryRow, meals []repository.MealTypeBreakdownRow, window reportWindow) *DietReportSection {
	section := &DietReportSection{
		TotalMeals:        row.TotalMeals,
		TotalCalories:     row.TotalCalories,
		AvgCaloriesPerDay: formatStatValue(safeDiv(float64(row.TotalCalories), float64(window.days))),
		TotalProteinGrams: formatStatValue(row.TotalProteinG),
		TotalCarbsGrams:   formatStatValue(row.TotalCarbsG),
		TotalFatGrams:     formatStatValue(row.TotalFatG),
		AvgWaterMLPerDay:  formatStatValue(safeDiv(float64(row.TotalWaterML), float64(window.days))),
		ActiveDays:        row.ActiveDays,
		MealTypeBreakdown: make([]MealTypeSummary, 0, len(meals)),
	}
	for _, item := range meals {
		share := 0.0
		if row.TotalCalories > 0 {
			share = float64(item.Calories) / float64(row.TotalCalories) * 100
		}
		section.MealTypeBreakdown = append(section.MealTypeBreakdown, MealTypeSummary{
			MealType:     item.MealType,
			Meals:        item.Meals,
			Calories:     item.Calories,
			CalorieShare: formatStatValue(share),
		})
	}
	return section
}

func buildFitnessSection(row repository.FitnessSummaryRow, activities []repository.ActivityBreakdownRow) *FitnessReportSection {
	section := &FitnessReportSection{
		TotalSessions:        row.TotalSessions,
		TotalDurationMinutes: row.TotalDurationMinutes,
		TotalCaloriesBurned:  row.TotalCaloriesBurned,
		TotalSteps:           row.TotalSteps,
		AvgSessionMinutes:    formatStatValue(safeDiv(float64(row.TotalDurationMinutes), float64(row.TotalSessions))),
		ActiveDays:           row.ActiveDays,
		TopActivities:        make([]ActivitySummary, 0, len(activities)),
	}
	for _, item := range activities {
		section.TopActivities = append(section.TopActivities, ActivitySummary{
			ActivityType:    item.ActivityType,
			Sessions:        item.Sessions,
			DurationMinutes: item.DurationMinutes,
			CaloriesBurned:  item.CaloriesBurned,
		})
	}
	return section
}

func buildMoodSection(row repository.MoodSummaryRow, moods []repository.MoodDistributionRow) *MoodReportSection {
	positiveShare := 0.0
	if row.TotalEntries > 0 {
		positiveShare = float64(row.PositiveCount) / float64(row.TotalEntries) * 100
	}
	section := &MoodReportSection{
		TotalEntries:     row.TotalEntries,
		PositiveShare:    formatStatValue(positiveShare),
		AvgIntensity:     formatStatValue(row.AvgIntensity),
		AvgSleepHours:    formatStatValue(row.AvgSleepHours),
		MoodDistribution: make([]MoodShare, 0, len(moods)),
	}
	for _, item := range moods {
		share := 0.0
		if row.TotalEntries > 0 {
			share = float64(item.Entries) / float64(row.TotalEntries) * 100
		}
		section.MoodDistribution = append(section.MoodDistribution, MoodShare{
			Mood:    item.Mood,
			Entries: item.Entries,
			Share:   formatStatValue(share),
		})
	}
	return section
}

func buildTrendPoints(rows []repository.WellnessDailyTrendRow) []ReportTrendPoint {
	points := make([]ReportTrendPoint, 0, len(rows))
	for _, item := range rows {
		points = append(points, ReportTrendPoint{
			Date:            item.Day,
			CaloriesIn:      item.CaloriesIn,
			ActivityMinutes: item.ActivityMinutes,
			MoodEntries:     item.MoodEntries,
		})
	}
	return points
}

// buildReportScores 计算三域评分
// 各域为记录规律性与目标达成度的等权平均，整体分为三域等权平均。
func buildReportScores(cfg config.ReportConfig, diet repository.DietSummaryRow, fitness repository.FitnessSummaryRow, mood repository.MoodSummaryRow, window reportWindow) ReportScores {
	windowDays := float64(window.days)

	dietRegularity := safeDiv(float64(diet.ActiveDays), windowDays) * 100
	calorieAdherence := closenessPercent(safeDiv(float64(diet.TotalCalories), float64(diet.ActiveDays)), float64(resolveDailyCalorieTarget(cfg)))
	waterAdherence := ratioPercent(safeDiv(float64(diet.TotalWaterML), windowDays), float64(resolveDailyWaterTargetML(cfg)))
	nutrition := clampScore((dietRegularity + calorieAdherence + waterAdherence) / 3)

	fitnessRegularity := safeDiv(float64(fitness.ActiveDays), windowDays) * 100
	weeklyMinutes := safeDiv(float64(fitness.TotalDurationMinutes), windowDays) * 7
	minutesAdherence := ratioPercent(weeklyMinutes, float64(resolveWeeklyActiveMinutes(cfg)))
	fitnessScore := clampScore((fitnessRegularity + minutesAdherence) / 2)

	moodRegularity := safeDiv(float64(mood.TotalEntries), windowDays) * 100
	positiveShare := safeDiv(float64(mood.PositiveCount), float64(mood.TotalEntries)) * 100
	sleepAdequacy := ratioPercent(mood.AvgSleepHours, float64(resolveNightlySleepTargetHours(cfg)))
	wellness := clampScore((clampScore(moodRegularity) + positiveShare + sleepAdequacy) / 3)

	return ReportScores{
		Nutrition: nutrition,
		Fitness:   fitnessScore,
		Wellness:  wellness,
		Overall:   clampScore((nutrition + fitnessScore + wellness) / 3),
	}
}

// fillDemoReportSections 以演示数据填充报告并打上占位标记
func fillDemoReportSections(payload *HealthReportPayload) {
	payload.DataSource = constants.ReportDataSourceDemoNotFound
	payload.Diet = &DietReportSection{
		TotalMeals:        42,
		TotalCalories:     58800,
		AvgCaloriesPerDay: "1960.0",
		TotalProteinGrams: "1890.0",
		TotalCarbsGrams:   "6300.0",
		TotalFatGrams:     "2100.0",
		AvgWaterMLPerDay:  "1650.0",
		ActiveDays:        14,
		MealTypeBreakdown: []MealTypeSummary{
			{MealType: constants.MealTypeBreakfast, Meals: 14, Calories: 14700, CalorieShare: "25.0"},
			{MealType: constants.MealTypeLunch, Meals: 14, Calories: 23520, CalorieShare: "40.0"},
			{MealType: constants.MealTypeDinner, Meals: 14, Calories: 20580, CalorieShare: "35.0"},
		},
	}
	payload.Fitness = &FitnessReportSection{
		TotalSessions:        12,
		TotalDurationMinutes: 540,
		TotalCaloriesBurned:  3840,
		TotalSteps:           96000,
		AvgSessionMinutes:    "45.0",
		ActiveDays:           12,
		TopActivities: []ActivitySummary{
			{ActivityType: constants.ActivityTypeRunning, Sessions: 6, DurationMinutes: 270, CaloriesBurned: 2340},
			{ActivityType: constants.ActivityTypeYoga, Sessions: 6, DurationMinutes: 270, CaloriesBurned: 1500},
		},
	}
	payload.Mood = &MoodReportSection{
		TotalEntries:  14,
		PositiveShare: "64.3",
		AvgIntensity:  "6.5",
		AvgSleepHours: "7.2",
		MoodDistribution: []MoodShare{
			{Mood: constants.MoodHappy, Entries: 6, Share: "42.9"},
			{Mood: constants.MoodCalm, Entries: 3, Share: "21.4"},
			{Mood: constants.MoodNeutral, Entries: 5, Share: "35.7"},
		},
	}
	payload.Scores = ReportScores{Nutrition: 72.0, Fitness: 68.5, Wellness: 70.5, Overall: 70.3}
}

// applyReportType 按请求的报告类型裁剪载荷
func applyReportType(payload *HealthReportPayload, reportType string) {
	payload.ReportType = reportType
	switch reportType {
	case constants.ReportTypeDiet:
		payload.Fitness = nil
		payload.Mood = nil
		payload.Trends = nil
	case constants.ReportTypeFitness:
		payload.Diet = nil
		payload.Mood = nil
		payload.Trends = nil
	case constants.ReportTypeMentalHealth:
		payload.Diet = nil
		payload.Fitness = nil
		payload.Trends = nil
	}
}

func resolveReportType(reportType string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(reportType))
	if normalized == "" {
		return constants.ReportTypeComprehensive, nil
	}
	for _, supported := range constants.SupportedReportTypes {
		if normalized == supported {
			return normalized, nil
		}
	}
	return "", ErrReportTypeInvalid
}

func resolveReportWindow(cfg config.ReportConfig, now time.Time) reportWindow {
	days := cfg.AggregateWindowDays
	if days <= 0 {
		days = 30
	}
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return reportWindow{
		startAt: todayStart.AddDate(0, 0, -(days - 1)),
		endAt:   todayStart.AddDate(0, 0, 1),
		days:    days,
	}
}

func resolveDailyCalorieTarget(cfg config.ReportConfig) int {
	if cfg.DailyCalorieTarget <= 0 {
		return 2000
	}
	return cfg.DailyCalorieTarget
}

func resolveDailyWaterTargetML(cfg config.ReportConfig) int {
	if cfg.DailyWaterTargetML <= 0 {
		return 2000
	}
	return cfg.DailyWaterTargetML
}

func resolveWeeklyActiveMinutes(cfg config.ReportConfig) int {
	if cfg.WeeklyActiveMinutes <= 0 {
		return 150
	}
	return cfg.WeeklyActiveMinutes
}

func resolveNightlySleepTargetHours(cfg config.ReportConfig) int {
	if cfg.NightlySleepTargetHours <= 0 {
		return 8
	}
	return cfg.NightlySleepTargetHours
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// ratioPercent 实际值对目标值的达成百分比，封顶 100
func ratioPercent(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	percent := actual / target * 100
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}

// closenessPercent 实际值与目标值的贴近度百分比，偏离越大得分越低
func closenessPercent(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	deviation := math.Abs(actual-target) / target * 100
	if deviation >= 100 {
		return 0
	}
	return 100 - deviation
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return math.Round(value*10) / 10
}

func formatStatValue(value float64) string {
	return fmt.Sprintf("%.1f", value)
}
