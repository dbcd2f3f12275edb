package main

import (
	"fmt"
	"time"

	"github.com/wellnest-next/internal/config"
	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/logger"
	"github.com/wellnest-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示用户
	now := time.Now()
	verified := now.Add(-30 * 24 * time.Hour)
	seedUsers := []struct {
		Email       string
		DisplayName string
		Locale      string
	}{
		{Email: "demo-lin@wellnest.local", DisplayName: "林小禾", Locale: "zh-CN"},
		{Email: "demo-chen@wellnest.local", DisplayName: "陈以安", Locale: "zh-CN"},
		{Email: "demo-amy@wellnest.local", DisplayName: "Amy Walker", Locale: "en-US"},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Demo#12345"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	users := make([]models.User, 0, len(seedUsers))
	for _, item := range seedUsers {
		var existing models.User
		err := models.DB.Where("email = ?", item.Email).First(&existing).Error
		if err == nil {
			stdLog.Printf("User already exists: %s", item.Email)
			users = append(users, existing)
			continue
		}

		user := models.User{
			Email:           item.Email,
			PasswordHash:    string(hash),
			DisplayName:     item.DisplayName,
			Locale:          item.Locale,
			Status:          constants.UserStatusActive,
			EmailVerifiedAt: &verified,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", item.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s", item.Email)
		users = append(users, user)
	}

	// 为每个用户生成最近四周的健康记录
	for _, user := range users {
		var count int64
		models.DB.Model(&models.DietRecord{}).Where("user_id = ?", user.ID).Count(&count)
		if count > 0 {
			stdLog.Printf("Wellness records already exist for %s, skipped", user.Email)
			continue
		}
		created := seedWellnessRecords(user, now, stdLog.Printf)
		stdLog.Printf("Seeded %d wellness records for %s", created, user.Email)
	}

	stdLog.Printf("Seed completed")
}

// seedWellnessRecords 为单个用户写入 28 天的饮食、运动与情绪记录，
// 用下标做确定性波动，保证每次执行得到相同的数据。
func seedWellnessRecords(user models.User, now time.Time, logf func(string, ...interface{})) int {
	meals := []string{
		constants.MealTypeBreakfast,
		constants.MealTypeLunch,
		constants.MealTypeDinner,
		constants.MealTypeSnack,
	}
	foods := map[string][]string{
		constants.MealTypeBreakfast: {"燕麦酸奶碗", "全麦三明治", "小米粥配鸡蛋"},
		constants.MealTypeLunch:     {"鸡胸肉沙拉", "牛肉拌饭", "番茄意面"},
		constants.MealTypeDinner:    {"清蒸鲈鱼", "蔬菜豆腐汤", "烤三文鱼"},
		constants.MealTypeSnack:     {"混合坚果", "香蕉", "希腊酸奶"},
	}
	activities := []string{
		constants.ActivityTypeRunning,
		constants.ActivityTypeWalking,
		constants.ActivityTypeCycling,
		constants.ActivityTypeYoga,
		constants.ActivityTypeStrength,
	}
	moods := []string{
		constants.MoodHappy,
		constants.MoodCalm,
		constants.MoodNeutral,
		constants.MoodStressed,
		constants.MoodHappy,
		constants.MoodCalm,
		constants.MoodSad,
	}

	seedOffset := int(user.ID)
	created := 0
	for day := 0; day < 28; day++ {
		base := now.AddDate(0, 0, -day)
		dayStart := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
		variant := (day + seedOffset) % 3

		// 饮食：每天三餐，偶尔加餐
		mealCount := 3
		if (day+seedOffset)%4 == 0 {
			mealCount = 4
		}
		for m := 0; m < mealCount; m++ {
			meal := meals[m]
			diet := models.DietRecord{
				UserID:       user.ID,
				MealType:     meal,
				FoodName:     foods[meal][variant],
				Calories:     320 + 60*m + 25*variant,
				ProteinGrams: models.NewQuantityFromFloat(18.0 + float64(3*variant)),
				CarbsGrams:   models.NewQuantityFromFloat(42.0 + float64(5*m)),
				FatGrams:     models.NewQuantityFromFloat(12.0 + float64(2*variant)),
				WaterML:      300 + 100*m,
				RecordedAt:   dayStart.Add(time.Duration(8+4*m) * time.Hour),
			}
			if err := models.DB.Create(&diet).Error; err != nil {
				logf("Failed to create diet record for %s: %v", user.Email, err)
				continue
			}
			created++
		}

		// 运动：每周休息一天
		if (day+seedOffset)%7 != 6 {
			activity := activities[(day+seedOffset)%len(activities)]
			fitness := models.FitnessRecord{
				UserID:          user.ID,
				ActivityType:    activity,
				DurationMinutes: 25 + 10*variant,
				CaloriesBurned:  180 + 70*variant,
				Steps:           5200 + 1500*variant,
				RecordedAt:      dayStart.Add(19 * time.Hour),
			}
			if err := models.DB.Create(&fitness).Error; err != nil {
				logf("Failed to create fitness record for %s: %v", user.Email, err)
			} else {
				created++
			}
		}

		// 情绪：每天一条
		mood := models.MoodRecord{
			UserID:      user.ID,
			Mood:        moods[(day+seedOffset)%len(moods)],
			Intensity:   5 + variant,
			SleepHours:  models.NewQuantityFromFloat(6.5 + 0.5*float64(variant)),
			JournalNote: fmt.Sprintf("第 %d 天的打卡记录", 28-day),
			RecordedAt:  dayStart.Add(22 * time.Hour),
		}
		if err := models.DB.Create(&mood).Error; err != nil {
			logf("Failed to create mood record for %s: %v", user.Email, err)
		} else {
			created++
		}
	}
	return created
}
