package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/wellnest-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOneTimeCodeRepositoryTest(t *testing.T) (*GormOneTimeCodeRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:one_time_code_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.OneTimeCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOneTimeCodeRepository(db), db
}

func newTestCode(identifier, purpose, code string, issuedAt time.Time) *models.OneTimeCode {
	return &models.OneTimeCode{
		Identifier: identifier,
		Purpose:    purpose,
		Code:       code,
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(10 * time.Minute),
	}
}

func TestOneTimeCodeGetLatestOrdering(t *testing.T) {
	repo, _ := setupOneTimeCodeRepositoryTest(t)
	now := time.Now()

	if err := repo.Create(newTestCode("a@b.com", "email_verify", "111111", now.Add(-2*time.Minute))); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(newTestCode("a@b.com", "email_verify", "222222", now)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// 其他用途不应被取出
	if err := repo.Create(newTestCode("a@b.com", "report_access", "333333", now.Add(time.Minute))); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	latest, err := repo.GetLatest("a@b.com", "email_verify")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest == nil || latest.Code != "222222" {
		t.Fatalf("latest code want 222222 got %+v", latest)
	}

	missing, err := repo.GetLatest("nobody@b.com", "email_verify")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing identifier should return nil, got %+v", missing)
	}
}

func TestOneTimeCodeInvalidateActive(t *testing.T) {
	repo, db := setupOneTimeCodeRepositoryTest(t)
	now := time.Now()

	consumed := newTestCode("a@b.com", "email_verify", "111111", now.Add(-5*time.Minute))
	consumedAt := now.Add(-4 * time.Minute)
	consumed.ConsumedAt = &consumedAt
	if err := repo.Create(consumed); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	active := newTestCode("a@b.com", "email_verify", "222222", now)
	if err := repo.Create(active); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.InvalidateActive("a@b.com", "email_verify"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	latest, err := repo.GetLatest("a@b.com", "email_verify")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	// 已消费的记录不受失效影响
	if latest == nil || latest.ID != consumed.ID {
		t.Fatalf("consumed record should survive invalidation, got %+v", latest)
	}

	// 失效是软删除,物理行仍在
	var unscopedCount int64
	if err := db.Unscoped().Model(&models.OneTimeCode{}).
		Where("identifier = ?", "a@b.com").
		Count(&unscopedCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unscopedCount != 2 {
		t.Fatalf("unscoped count want 2 got %d", unscopedCount)
	}
}

func TestOneTimeCodeIncrementAttempt(t *testing.T) {
	repo, _ := setupOneTimeCodeRepositoryTest(t)
	code := newTestCode("a@b.com", "email_verify", "111111", time.Now())
	if err := repo.Create(code); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.IncrementAttempt(code.ID); err != nil {
			t.Fatalf("increment failed: %v", err)
		}
	}

	latest, err := repo.GetLatest("a@b.com", "email_verify")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest.AttemptCount != 3 {
		t.Fatalf("attempt count want 3 got %d", latest.AttemptCount)
	}
}

func TestOneTimeCodePurgeExpiredBefore(t *testing.T) {
	repo, db := setupOneTimeCodeRepositoryTest(t)
	now := time.Now()

	old := newTestCode("old@b.com", "email_verify", "111111", now.Add(-2*time.Hour))
	if err := repo.Create(old); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// 已软删除的过期行也要被物理清理
	if err := repo.InvalidateActive("old@b.com", "email_verify"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	fresh := newTestCode("fresh@b.com", "email_verify", "222222", now)
	if err := repo.Create(fresh); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	purged, err := repo.PurgeExpiredBefore(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged want 1 got %d", purged)
	}

	var remaining int64
	if err := db.Unscoped().Model(&models.OneTimeCode{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining want 1 got %d", remaining)
	}
}
