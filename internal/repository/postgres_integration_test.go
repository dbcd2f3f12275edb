//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wellnest-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.DietRecord{},
		&models.FitnessRecord{},
		&models.MoodRecord{},
		&models.OneTimeCode{},
		&models.StepProgress{},
		&models.ReportArtifact{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.OneTimeCode{},
		&models.StepProgress{},
		&models.ReportArtifact{},
		&models.DietRecord{},
		&models.FitnessRecord{},
		&models.MoodRecord{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresUserKeywordSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewUserRepository(db)

	users := []models.User{
		{Email: "pg-rocket@example.com", PasswordHash: "x", DisplayName: "Rocket Marsh"},
		{Email: "pg-other@example.com", PasswordHash: "x", DisplayName: "Somebody Else"},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	// ILIKE 应忽略大小写命中昵称
	rows, total, err := repo.List(UserListFilter{Page: 1, PageSize: 10, Keyword: "rocket"})
	if err != nil {
		t.Fatalf("user list keyword search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("user keyword search want 1 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Email != "pg-rocket@example.com" {
		t.Fatalf("unexpected user matched: %s", rows[0].Email)
	}
}

func TestPostgresWellnessDailyTrends(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewWellnessAggregateRepository(db)

	user := models.User{Email: "pg-trends@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	dayOne := now.Add(-48 * time.Hour)
	dayTwo := now.Add(-24 * time.Hour)

	records := []interface{}{
		&models.DietRecord{UserID: user.ID, MealType: "breakfast", Calories: 400, RecordedAt: dayOne},
		&models.DietRecord{UserID: user.ID, MealType: "lunch", Calories: 600, RecordedAt: dayOne},
		&models.FitnessRecord{UserID: user.ID, ActivityType: "running", DurationMinutes: 30, RecordedAt: dayTwo},
		&models.MoodRecord{UserID: user.ID, Mood: "happy", Intensity: 7, RecordedAt: dayTwo},
	}
	for _, record := range records {
		if err := db.Create(record).Error; err != nil {
			t.Fatalf("create record failed: %v", err)
		}
	}

	trends, err := repo.GetDailyTrends(user.ID, now.Add(-72*time.Hour), now)
	if err != nil {
		t.Fatalf("get daily trends failed: %v", err)
	}
	if len(trends) != 2 {
		t.Fatalf("daily trends want 2 days got %d", len(trends))
	}

	wantDayOne := dayOne.Format("2006-01-02")
	var found bool
	for _, row := range trends {
		if row.Day == wantDayOne {
			found = true
			if row.CaloriesIn != 1000 {
				t.Fatalf("day one calories want 1000 got %d", row.CaloriesIn)
			}
		}
	}
	if !found {
		t.Fatalf("day %s missing from trends", wantDayOne)
	}

	summary, err := repo.GetDietSummary(user.ID, now.Add(-72*time.Hour), now)
	if err != nil {
		t.Fatalf("get diet summary failed: %v", err)
	}
	if summary.TotalMeals != 2 || summary.TotalCalories != 1000 || summary.ActiveDays != 1 {
		t.Fatalf("diet summary mismatch: %+v", summary)
	}
}
