package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/wellnest-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupReportArtifactRepositoryTest(t *testing.T) (*GormReportArtifactRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:report_artifact_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ReportArtifact{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewReportArtifactRepository(db), db
}

func newTestArtifact(identifier string, generatedAt time.Time) *models.ReportArtifact {
	return &models.ReportArtifact{
		Identifier:  identifier,
		ReportID:    uuid.NewString(),
		Ciphertext:  "gAAAAA-test-ciphertext",
		GeneratedAt: generatedAt,
	}
}

func TestReportArtifactReplaceForIdentifier(t *testing.T) {
	repo, db := setupReportArtifactRepositoryTest(t)
	now := time.Now()

	first := newTestArtifact("a@b.com", now.Add(-time.Minute))
	if err := repo.ReplaceForIdentifier(first); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	second := newTestArtifact("a@b.com", now)
	if err := repo.ReplaceForIdentifier(second); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	latest, err := repo.GetLatestByIdentifier("a@b.com")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest == nil || latest.ReportID != second.ReportID {
		t.Fatalf("latest should be the replacement, got %+v", latest)
	}

	// 旧工件软删除,默认作用域只剩一条
	var visible int64
	if err := db.Model(&models.ReportArtifact{}).
		Where("identifier = ?", "a@b.com").
		Count(&visible).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if visible != 1 {
		t.Fatalf("visible artifacts want 1 got %d", visible)
	}
	var unscoped int64
	if err := db.Unscoped().Model(&models.ReportArtifact{}).
		Where("identifier = ?", "a@b.com").
		Count(&unscoped).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unscoped != 2 {
		t.Fatalf("unscoped artifacts want 2 got %d", unscoped)
	}
}

func TestReportArtifactConsumedFilteredFromLatest(t *testing.T) {
	repo, _ := setupReportArtifactRepositoryTest(t)
	now := time.Now()

	artifact := newTestArtifact("a@b.com", now)
	if err := repo.ReplaceForIdentifier(artifact); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if err := repo.MarkConsumed(artifact.ID, now); err != nil {
		t.Fatalf("mark consumed failed: %v", err)
	}

	latest, err := repo.GetLatestByIdentifier("a@b.com")
	if err != nil {
		t.Fatalf("get latest failed: %v", err)
	}
	if latest != nil {
		t.Fatalf("consumed artifact should not be retrievable, got %+v", latest)
	}

	// 报告编号查询不过滤消费状态,审计场景仍可定位
	byID, err := repo.GetByReportID(artifact.ReportID)
	if err != nil {
		t.Fatalf("get by report id failed: %v", err)
	}
	if byID == nil || !byID.IsConsumed() {
		t.Fatalf("artifact should be found and consumed, got %+v", byID)
	}
}

func TestReportArtifactPurgeBefore(t *testing.T) {
	repo, db := setupReportArtifactRepositoryTest(t)
	now := time.Now()

	old := newTestArtifact("old@b.com", now.Add(-48*time.Hour))
	if err := repo.ReplaceForIdentifier(old); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	fresh := newTestArtifact("fresh@b.com", now)
	if err := repo.ReplaceForIdentifier(fresh); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	purged, err := repo.PurgeBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged want 1 got %d", purged)
	}

	var remaining int64
	if err := db.Unscoped().Model(&models.ReportArtifact{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("remaining want 1 got %d", remaining)
	}
}
