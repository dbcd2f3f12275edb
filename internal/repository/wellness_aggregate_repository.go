package repository

import (
	"fmt"
	"time"

	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/models"

	"gorm.io/gorm"
)

// WellnessAggregateRepository 健康数据聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type WellnessAggregateRepository interface {
	CountRecords(userID uint, startAt, endAt time.Time) (WellnessRecordCountRow, error)
	GetDietSummary(userID uint, startAt, endAt time.Time) (DietSummaryRow, error)
	GetMealTypeBreakdown(userID uint, startAt, endAt time.Time) ([]MealTypeBreakdownRow, error)
	GetFitnessSummary(userID uint, startAt, endAt time.Time) (FitnessSummaryRow, error)
	GetActivityBreakdown(userID uint, startAt, endAt time.Time, limit int) ([]ActivityBreakdownRow, error)
	GetMoodSummary(userID uint, startAt, endAt time.Time) (MoodSummaryRow, error)
	GetMoodDistribution(userID uint, startAt, endAt time.Time) ([]MoodDistributionRow, error)
	GetDailyTrends(userID uint, startAt, endAt time.Time) ([]WellnessDailyTrendRow, error)
}

// WellnessRecordCountRow 各类健康记录条数
type WellnessRecordCountRow struct {
	DietRecords    int64
	FitnessRecords int64
	MoodRecords    int64
}

// Total 三类记录总条数
func (r WellnessRecordCountRow) Total() int64 {
	return r.DietRecords + r.FitnessRecords + r.MoodRecords
}

// DietSummaryRow 饮食聚合原始统计结果
type DietSummaryRow struct {
	TotalMeals    int64
	TotalCalories int64
	TotalProteinG float64
	TotalCarbsG   float64
	TotalFatG     float64
	TotalWaterML  int64
	ActiveDays    int64
}

// MealTypeBreakdownRow 餐别分布原始行
type MealTypeBreakdownRow struct {
	MealType string
	Meals    int64
	Calories int64
}

// FitnessSummaryRow 运动聚合原始统计结果
type FitnessSummaryRow struct {
	TotalSessions        int64
	TotalDurationMinutes int64
	TotalCaloriesBurned  int64
	TotalSteps           int64
	ActiveDays           int64
}

// ActivityBreakdownRow 活动类型分布原始行
type ActivityBreakdownRow struct {
	ActivityType    string
	Sessions        int64
	DurationMinutes int64
	CaloriesBurned  int64
}

// MoodSummaryRow 情绪聚合原始统计结果
type MoodSummaryRow struct {
	TotalEntries   int64
	PositiveCount  int64
	AvgIntensity   float64
	AvgSleepHours  float64
	SleepEntryDays int64
}

// MoodDistributionRow 情绪分布原始行
type MoodDistributionRow struct {
	Mood    string
	Entries int64
}

// WellnessDailyTrendRow 按日合并的健康数据趋势
type WellnessDailyTrendRow struct {
	Day             string
	CaloriesIn      int64
	ActivityMinutes int64
	MoodEntries     int64
}

// GormWellnessAggregateRepository GORM 聚合实现
type GormWellnessAggregateRepository struct {
	db *gorm.DB
}

// NewWellnessAggregateRepository 创建健康数据聚合仓库
func NewWellnessAggregateRepository(db *gorm.DB) *GormWellnessAggregateRepository {
	return &GormWellnessAggregateRepository{db: db}
}

func recordWindow(db *gorm.DB, userID uint, startAt, endAt time.Time) *gorm.DB {
	return db.Where("user_id = ? AND recorded_at >= ? AND recorded_at < ?", userID, startAt, endAt)
}

// CountRecords 统计窗口内各类记录条数
func (r *GormWellnessAggregateRepository) CountRecords(userID uint, startAt, endAt time.Time) (WellnessRecordCountRow, error) {
	result := WellnessRecordCountRow{}

	if err := recordWindow(r.db.Model(&models.DietRecord{}), userID, startAt, endAt).
		Count(&result.DietRecords).Error; err != nil {
		return result, err
	}
	if err := recordWindow(r.db.Model(&models.FitnessRecord{}), userID, startAt, endAt).
		Count(&result.FitnessRecords).Error; err != nil {
		return result, err
	}
	if err := recordWindow(r.db.Model(&models.MoodRecord{}), userID, startAt, endAt).
		Count(&result.MoodRecords).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetDietSummary 获取饮食总览统计
func (r *GormWellnessAggregateRepository) GetDietSummary(userID uint, startAt, endAt time.Time) (DietSummaryRow, error) {
	result := DietSummaryRow{}
	if err := recordWindow(r.db.Model(&models.DietRecord{}), userID, startAt, endAt).
		Select(`
			COUNT(*) as total_meals,
			COALESCE(SUM(calories), 0) as total_calories,
			COALESCE(SUM(protein_grams), 0) as total_protein_g,
			COALESCE(SUM(carbs_grams), 0) as total_carbs_g,
			COALESCE(SUM(fat_grams), 0) as total_fat_g,
			COALESCE(SUM(water_ml), 0) as total_water_ml,
			COUNT(DISTINCT date(recorded_at)) as active_days
		`).
		Scan(&result).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetMealTypeBreakdown 获取餐别分布
func (r *GormWellnessAggregateRepository) GetMealTypeBreakdown(userID uint, startAt, endAt time.Time) ([]MealTypeBreakdownRow, error) {
	rows := make([]MealTypeBreakdownRow, 0)
	if err := recordWindow(r.db.Model(&models.DietRecord{}), userID, startAt, endAt).
		Select(`
			meal_type,
			COUNT(*) as meals,
			COALESCE(SUM(calories), 0) as calories
		`).
		Group("meal_type").
		Order("calories DESC, meals DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetFitnessSummary 获取运动总览统计
func (r *GormWellnessAggregateRepository) GetFitnessSummary(userID uint, startAt, endAt time.Time) (FitnessSummaryRow, error) {
	result := FitnessSummaryRow{}
	if err := recordWindow(r.db.Model(&models.FitnessRecord{}), userID, startAt, endAt).
		Select(`
			COUNT(*) as total_sessions,
			COALESCE(SUM(duration_minutes), 0) as total_duration_minutes,
			COALESCE(SUM(calories_burned), 0) as total_calories_burned,
			COALESCE(SUM(steps), 0) as total_steps,
			COUNT(DISTINCT date(recorded_at)) as active_days
		`).
		Scan(&result).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetActivityBreakdown 获取活动类型分布，按时长倒序
func (r *GormWellnessAggregateRepository) GetActivityBreakdown(userID uint, startAt, endAt time.Time, limit int) ([]ActivityBreakdownRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]ActivityBreakdownRow, 0)
	if err := recordWindow(r.db.Model(&models.FitnessRecord{}), userID, startAt, endAt).
		Select(`
			activity_type,
			COUNT(*) as sessions,
			COALESCE(SUM(duration_minutes), 0) as duration_minutes,
			COALESCE(SUM(calories_burned), 0) as calories_burned
		`).
		Group("activity_type").
		Order("duration_minutes DESC, sessions DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMoodSummary 获取情绪总览统计
func (r *GormWellnessAggregateRepository) GetMoodSummary(userID uint, startAt, endAt time.Time) (MoodSummaryRow, error) {
	result := MoodSummaryRow{}

	moodBase := func() *gorm.DB {
		return recordWindow(r.db.Model(&models.MoodRecord{}), userID, startAt, endAt)
	}

	if err := moodBase().
		Select(`
			COUNT(*) as total_entries,
			COALESCE(AVG(intensity), 0) as avg_intensity
		`).
		Scan(&result).Error; err != nil {
		return result, err
	}

	if err := moodBase().Where("mood IN ?", constants.PositiveMoods).
		Count(&result.PositiveCount).Error; err != nil {
		return result, err
	}

	// 睡眠均值只统计填写了时长的记录
	if err := moodBase().Where("sleep_hours > 0").
		Select(`
			COALESCE(AVG(sleep_hours), 0) as avg_sleep_hours,
			COUNT(DISTINCT date(recorded_at)) as sleep_entry_days
		`).
		Scan(&result).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetMoodDistribution 获取情绪分布
func (r *GormWellnessAggregateRepository) GetMoodDistribution(userID uint, startAt, endAt time.Time) ([]MoodDistributionRow, error) {
	rows := make([]MoodDistributionRow, 0)
	if err := recordWindow(r.db.Model(&models.MoodRecord{}), userID, startAt, endAt).
		Select("mood, COUNT(*) as entries").
		Group("mood").
		Order("entries DESC, mood asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetDailyTrends 获取按日合并的摄入、运动与情绪趋势
func (r *GormWellnessAggregateRepository) GetDailyTrends(userID uint, startAt, endAt time.Time) ([]WellnessDailyTrendRow, error) {
	type countRow struct {
		Day   string
		Total int64
	}

	dayExpr := dayBucketExpr(r.db, "recorded_at")

	var calorieRows []countRow
	if err := recordWindow(r.db.Model(&models.DietRecord{}), userID, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COALESCE(SUM(calories), 0) as total", dayExpr)).
		Group(dayExpr).
		Order("day asc").
		Scan(&calorieRows).Error; err != nil {
		return nil, err
	}

	var minuteRows []countRow
	if err := recordWindow(r.db.Model(&models.FitnessRecord{}), userID, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COALESCE(SUM(duration_minutes), 0) as total", dayExpr)).
		Group(dayExpr).
		Order("day asc").
		Scan(&minuteRows).Error; err != nil {
		return nil, err
	}

	var moodRows []countRow
	if err := recordWindow(r.db.Model(&models.MoodRecord{}), userID, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Group(dayExpr).
		Order("day asc").
		Scan(&moodRows).Error; err != nil {
		return nil, err
	}

	calorieMap := make(map[string]int64, len(calorieRows))
	for _, item := range calorieRows {
		calorieMap[item.Day] = item.Total
	}
	minuteMap := make(map[string]int64, len(minuteRows))
	for _, item := range minuteRows {
		minuteMap[item.Day] = item.Total
	}
	moodMap := make(map[string]int64, len(moodRows))
	for _, item := range moodRows {
		moodMap[item.Day] = item.Total
	}

	seen := make(map[string]struct{}, len(calorieRows)+len(minuteRows)+len(moodRows))
	result := make([]WellnessDailyTrendRow, 0)
	push := func(day string) {
		if day == "" {
			return
		}
		if _, ok := seen[day]; ok {
			return
		}
		seen[day] = struct{}{}
		result = append(result, WellnessDailyTrendRow{
			Day:             day,
			CaloriesIn:      calorieMap[day],
			ActivityMinutes: minuteMap[day],
			MoodEntries:     moodMap[day],
		})
	}
	for _, item := range calorieRows {
		push(item.Day)
	}
	for _, item := range minuteRows {
		push(item.Day)
	}
	for _, item := range moodRows {
		push(item.Day)
	}

	return result, nil
}
