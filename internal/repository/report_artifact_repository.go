package repository

import (
	"errors"
	"time"

	"github.com/wellnest-next/internal/models"

	"gorm.io/gorm"
)

// ReportArtifactRepository 加密报告工件数据访问接口
type ReportArtifactRepository interface {
	ReplaceForIdentifier(artifact *models.ReportArtifact) error
	GetLatestByIdentifier(identifier string) (*models.ReportArtifact, error)
	GetByReportID(reportID string) (*models.ReportArtifact, error)
	MarkConsumed(id uint, consumedAt time.Time) error
	PurgeBefore(cutoff time.Time) (int64, error)
}

// GormReportArtifactRepository GORM 实现
type GormReportArtifactRepository struct {
	db *gorm.DB
}

// NewReportArtifactRepository 创建报告工件仓库
func NewReportArtifactRepository(db *gorm.DB) *GormReportArtifactRepository {
	return &GormReportArtifactRepository{db: db}
}

// ReplaceForIdentifier 写入新工件并失效同标识符下的旧工件
// 同一标识符最多保留一份可取回的报告。
func (r *GormReportArtifactRepository) ReplaceForIdentifier(artifact *models.ReportArtifact) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ? AND consumed_at IS NULL", artifact.Identifier).
			Delete(&models.ReportArtifact{}).Error; err != nil {
			return err
		}
		return tx.Create(artifact).Error
	})
}

// GetLatestByIdentifier 获取标识符下最新未消费的工件
func (r *GormReportArtifactRepository) GetLatestByIdentifier(identifier string) (*models.ReportArtifact, error) {
	var record models.ReportArtifact
	if err := r.db.Where("identifier = ? AND consumed_at IS NULL", identifier).
		Order("generated_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetByReportID 按报告编号获取工件
func (r *GormReportArtifactRepository) GetByReportID(reportID string) (*models.ReportArtifact, error) {
	var record models.ReportArtifact
	if err := r.db.Where("report_id = ?", reportID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkConsumed 标记工件已取回
func (r *GormReportArtifactRepository) MarkConsumed(id uint, consumedAt time.Time) error {
	return r.db.Model(&models.ReportArtifact{}).
		Where("id = ?", id).
		Update("consumed_at", consumedAt).Error
}

// PurgeBefore 物理清理生成时间早于 cutoff 的工件
func (r *GormReportArtifactRepository) PurgeBefore(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("generated_at < ?", cutoff).
		Delete(&models.ReportArtifact{})
	return result.RowsAffected, result.Error
}
