package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupWellnessAggregateRepositoryTest(t *testing.T) (*GormWellnessAggregateRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wellness_aggregate_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.DietRecord{}, &models.FitnessRecord{}, &models.MoodRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewWellnessAggregateRepository(db), db
}

func seedAggregateFixtures(t *testing.T, db *gorm.DB, userID uint, dayOne time.Time) {
	t.Helper()
	dayTwo := dayOne.Add(24 * time.Hour)

	diets := []models.DietRecord{
		{UserID: userID, MealType: constants.MealTypeBreakfast, FoodName: "燕麦粥", Calories: 320, ProteinGrams: models.NewQuantityFromFloat(12.5), WaterML: 250, RecordedAt: dayOne.Add(8 * time.Hour)},
		{UserID: userID, MealType: constants.MealTypeLunch, FoodName: "鸡胸肉沙拉", Calories: 480, ProteinGrams: models.NewQuantityFromFloat(38.0), WaterML: 300, RecordedAt: dayOne.Add(12 * time.Hour)},
		{UserID: userID, MealType: constants.MealTypeLunch, FoodName: "番茄牛腩饭", Calories: 650, RecordedAt: dayTwo.Add(12 * time.Hour)},
	}
	for i := range diets {
		if err := db.Create(&diets[i]).Error; err != nil {
			t.Fatalf("seed diet failed: %v", err)
		}
	}

	fitness := []models.FitnessRecord{
		{UserID: userID, ActivityType: "running", DurationMinutes: 30, CaloriesBurned: 280, Steps: 4200, RecordedAt: dayOne.Add(19 * time.Hour)},
		{UserID: userID, ActivityType: "yoga", DurationMinutes: 45, CaloriesBurned: 150, RecordedAt: dayTwo.Add(7 * time.Hour)},
	}
	for i := range fitness {
		if err := db.Create(&fitness[i]).Error; err != nil {
			t.Fatalf("seed fitness failed: %v", err)
		}
	}

	moods := []models.MoodRecord{
		{UserID: userID, Mood: constants.MoodHappy, Intensity: 8, SleepHours: models.NewQuantityFromFloat(7.5), RecordedAt: dayOne.Add(22 * time.Hour)},
		{UserID: userID, Mood: constants.MoodStressed, Intensity: 4, RecordedAt: dayTwo.Add(22 * time.Hour)},
	}
	for i := range moods {
		if err := db.Create(&moods[i]).Error; err != nil {
			t.Fatalf("seed mood failed: %v", err)
		}
	}

	// 窗口外与他人的记录都不应计入
	outside := models.DietRecord{UserID: userID, MealType: constants.MealTypeDinner, Calories: 999, RecordedAt: dayOne.Add(-48 * time.Hour)}
	if err := db.Create(&outside).Error; err != nil {
		t.Fatalf("seed outside record failed: %v", err)
	}
	other := models.DietRecord{UserID: userID + 1, MealType: constants.MealTypeDinner, Calories: 888, RecordedAt: dayOne.Add(9 * time.Hour)}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other user record failed: %v", err)
	}
}

func aggregateWindow(dayOne time.Time) (time.Time, time.Time) {
	return dayOne.Add(-time.Hour), dayOne.Add(72 * time.Hour)
}

func TestWellnessAggregateCountAndDietSummary(t *testing.T) {
	repo, db := setupWellnessAggregateRepositoryTest(t)
	dayOne := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	seedAggregateFixtures(t, db, 1, dayOne)
	startAt, endAt := aggregateWindow(dayOne)

	counts, err := repo.CountRecords(1, startAt, endAt)
	if err != nil {
		t.Fatalf("count records failed: %v", err)
	}
	if counts.DietRecords != 3 || counts.FitnessRecords != 2 || counts.MoodRecords != 2 {
		t.Fatalf("counts want 3/2/2 got %+v", counts)
	}
	if counts.Total() != 7 {
		t.Fatalf("total want 7 got %d", counts.Total())
	}

	summary, err := repo.GetDietSummary(1, startAt, endAt)
	if err != nil {
		t.Fatalf("diet summary failed: %v", err)
	}
	if summary.TotalMeals != 3 {
		t.Fatalf("total meals want 3 got %d", summary.TotalMeals)
	}
	if summary.TotalCalories != 320+480+650 {
		t.Fatalf("total calories want 1450 got %d", summary.TotalCalories)
	}
	if summary.TotalWaterML != 550 {
		t.Fatalf("total water want 550 got %d", summary.TotalWaterML)
	}
	if summary.ActiveDays != 2 {
		t.Fatalf("active days want 2 got %d", summary.ActiveDays)
	}
	if summary.TotalProteinG < 50.4 || summary.TotalProteinG > 50.6 {
		t.Fatalf("total protein want 50.5 got %v", summary.TotalProteinG)
	}
}

func TestWellnessAggregateBreakdowns(t *testing.T) {
	repo, db := setupWellnessAggregateRepositoryTest(t)
	dayOne := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	seedAggregateFixtures(t, db, 1, dayOne)
	startAt, endAt := aggregateWindow(dayOne)

	meals, err := repo.GetMealTypeBreakdown(1, startAt, endAt)
	if err != nil {
		t.Fatalf("meal breakdown failed: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("meal breakdown rows want 2 got %d", len(meals))
	}
	// 午餐热量最高,排在首位
	if meals[0].MealType != constants.MealTypeLunch || meals[0].Meals != 2 || meals[0].Calories != 1130 {
		t.Fatalf("lunch row unexpected: %+v", meals[0])
	}

	activities, err := repo.GetActivityBreakdown(1, startAt, endAt, 0)
	if err != nil {
		t.Fatalf("activity breakdown failed: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("activity rows want 2 got %d", len(activities))
	}
	if activities[0].ActivityType != "yoga" || activities[0].DurationMinutes != 45 {
		t.Fatalf("longest activity should lead: %+v", activities[0])
	}

	moods, err := repo.GetMoodDistribution(1, startAt, endAt)
	if err != nil {
		t.Fatalf("mood distribution failed: %v", err)
	}
	if len(moods) != 2 {
		t.Fatalf("mood rows want 2 got %d", len(moods))
	}
}

func TestWellnessAggregateMoodSummary(t *testing.T) {
	repo, db := setupWellnessAggregateRepositoryTest(t)
	dayOne := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	seedAggregateFixtures(t, db, 1, dayOne)
	startAt, endAt := aggregateWindow(dayOne)

	summary, err := repo.GetMoodSummary(1, startAt, endAt)
	if err != nil {
		t.Fatalf("mood summary failed: %v", err)
	}
	if summary.TotalEntries != 2 {
		t.Fatalf("entries want 2 got %d", summary.TotalEntries)
	}
	if summary.PositiveCount != 1 {
		t.Fatalf("positive count want 1 got %d", summary.PositiveCount)
	}
	if summary.AvgIntensity != 6 {
		t.Fatalf("avg intensity want 6 got %v", summary.AvgIntensity)
	}
	// 睡眠均值只看填写了时长的那一条
	if summary.AvgSleepHours < 7.4 || summary.AvgSleepHours > 7.6 {
		t.Fatalf("avg sleep hours want 7.5 got %v", summary.AvgSleepHours)
	}
	if summary.SleepEntryDays != 1 {
		t.Fatalf("sleep entry days want 1 got %d", summary.SleepEntryDays)
	}
}

func TestWellnessAggregateDailyTrends(t *testing.T) {
	repo, db := setupWellnessAggregateRepositoryTest(t)
	dayOne := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	seedAggregateFixtures(t, db, 1, dayOne)
	startAt, endAt := aggregateWindow(dayOne)

	trends, err := repo.GetDailyTrends(1, startAt, endAt)
	if err != nil {
		t.Fatalf("daily trends failed: %v", err)
	}
	if len(trends) != 2 {
		t.Fatalf("trend days want 2 got %d", len(trends))
	}
	byDay := make(map[string]WellnessDailyTrendRow, len(trends))
	for _, row := range trends {
		byDay[row.Day] = row
	}
	first, ok := byDay["2026-08-10"]
	if !ok {
		t.Fatalf("day one missing from trends: %+v", trends)
	}
	if first.CaloriesIn != 800 || first.ActivityMinutes != 30 || first.MoodEntries != 1 {
		t.Fatalf("day one row unexpected: %+v", first)
	}
	second, ok := byDay["2026-08-11"]
	if !ok {
		t.Fatalf("day two missing from trends: %+v", trends)
	}
	if second.CaloriesIn != 650 || second.ActivityMinutes != 45 || second.MoodEntries != 1 {
		t.Fatalf("day two row unexpected: %+v", second)
	}
}
