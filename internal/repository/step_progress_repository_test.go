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

func setupStepProgressRepositoryTest(t *testing.T) (*GormStepProgressRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:step_progress_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.StepProgress{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewStepProgressRepository(db), db
}

func TestStepProgressMarkSteps(t *testing.T) {
	repo, _ := setupStepProgressRepositoryTest(t)
	progress := &models.StepProgress{Identifier: "a@b.com"}
	if err := repo.Create(progress); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if progress.State() != constants.StepStateUnstarted {
		t.Fatalf("initial state want %s got %s", constants.StepStateUnstarted, progress.State())
	}

	now := time.Now()
	if err := repo.MarkEmailVerified(progress.ID, now); err != nil {
		t.Fatalf("mark email verified failed: %v", err)
	}
	if err := repo.MarkReportGenerated(progress.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("mark report generated failed: %v", err)
	}
	if err := repo.MarkDecryptUnlocked(progress.ID, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("mark decrypt unlocked failed: %v", err)
	}

	loaded, err := repo.GetByIdentifier("a@b.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.State() != constants.StepStateDecryptUnlocked {
		t.Fatalf("state want %s got %s", constants.StepStateDecryptUnlocked, loaded.State())
	}
}

func TestStepProgressResetCycleClearsLaterSteps(t *testing.T) {
	repo, _ := setupStepProgressRepositoryTest(t)
	now := time.Now()
	verified := now.Add(-time.Hour)
	generated := now.Add(-50 * time.Minute)
	unlocked := now.Add(-40 * time.Minute)
	progress := &models.StepProgress{
		Identifier:        "a@b.com",
		EmailVerifiedAt:   &verified,
		ReportGeneratedAt: &generated,
		DecryptUnlockedAt: &unlocked,
	}
	if err := repo.Create(progress); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.ResetCycle(progress.ID, now); err != nil {
		t.Fatalf("reset cycle failed: %v", err)
	}

	loaded, err := repo.GetByIdentifier("a@b.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.State() != constants.StepStateEmailVerified {
		t.Fatalf("state after reset want %s got %s", constants.StepStateEmailVerified, loaded.State())
	}
	if loaded.EmailVerifiedAt == nil || !loaded.EmailVerifiedAt.After(verified) {
		t.Fatalf("email verified at should be refreshed, got %v", loaded.EmailVerifiedAt)
	}
	if loaded.ReportGeneratedAt != nil || loaded.DecryptUnlockedAt != nil {
		t.Fatalf("later steps should be cleared: %+v", loaded)
	}
}

func TestStepProgressListFilters(t *testing.T) {
	repo, db := setupStepProgressRepositoryTest(t)
	now := time.Now()

	for _, identifier := range []string{"lin@wellnest.local", "chen@wellnest.local", "amy@example.com"} {
		if err := repo.Create(&models.StepProgress{Identifier: identifier}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	// 回拨一条记录的更新时间,验证时间过滤
	old := now.Add(-48 * time.Hour)
	if err := db.Model(&models.StepProgress{}).
		Where("identifier = ?", "amy@example.com").
		UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	records, total, err := repo.List(StepProgressListFilter{Identifier: "wellnest"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("keyword filter want 2 got total=%d len=%d", total, len(records))
	}

	from := now.Add(-time.Hour)
	records, total, err = repo.List(StepProgressListFilter{UpdatedFrom: &from})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("updated_from filter want 2 got %d", total)
	}
	for _, record := range records {
		if record.Identifier == "amy@example.com" {
			t.Fatalf("backdated record should be filtered out")
		}
	}

	records, total, err = repo.List(StepProgressListFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(records) != 2 {
		t.Fatalf("pagination want total=3 len=2 got total=%d len=%d", total, len(records))
	}
}

func TestStepProgressDeleteAndPurge(t *testing.T) {
	repo, db := setupStepProgressRepositoryTest(t)
	now := time.Now()

	if err := repo.Create(&models.StepProgress{Identifier: "gone@b.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(&models.StepProgress{Identifier: "stale@b.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(&models.StepProgress{Identifier: "live@b.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.DeleteByIdentifier("gone@b.com"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	deleted, err := repo.GetByIdentifier("gone@b.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if deleted != nil {
		t.Fatalf("deleted record should be gone, got %+v", deleted)
	}

	if err := db.Model(&models.StepProgress{}).
		Where("identifier = ?", "stale@b.com").
		UpdateColumn("updated_at", now.Add(-72*time.Hour)).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	purged, err := repo.PurgeStaleBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged want 1 got %d", purged)
	}
	survivor, err := repo.GetByIdentifier("live@b.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if survivor == nil {
		t.Fatalf("fresh record should survive purge")
	}
}
