package repository

import (
	"errors"
	"time"

	"github.com/wellnest-next/internal/models"

	"gorm.io/gorm"
)

// StepProgressRepository 三步流程进度数据访问接口
type StepProgressRepository interface {
	GetByIdentifier(identifier string) (*models.StepProgress, error)
	Create(progress *models.StepProgress) error
	MarkEmailVerified(id uint, at time.Time) error
	MarkReportGenerated(id uint, at time.Time) error
	MarkDecryptUnlocked(id uint, at time.Time) error
	ResetCycle(id uint, emailVerifiedAt time.Time) error
	List(filter StepProgressListFilter) ([]models.StepProgress, int64, error)
	DeleteByIdentifier(identifier string) error
	PurgeStaleBefore(cutoff time.Time) (int64, error)
}

// GormStepProgressRepository GORM 实现
type GormStepProgressRepository struct {
	db *gorm.DB
}

// NewStepProgressRepository 创建流程进度仓库
func NewStepProgressRepository(db *gorm.DB) *GormStepProgressRepository {
	return &GormStepProgressRepository{db: db}
}

// GetByIdentifier 按标识符获取进度记录
func (r *GormStepProgressRepository) GetByIdentifier(identifier string) (*models.StepProgress, error) {
	var record models.StepProgress
	if err := r.db.Where("identifier = ?", identifier).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 创建进度记录
func (r *GormStepProgressRepository) Create(progress *models.StepProgress) error {
	return r.db.Create(progress).Error
}

// MarkEmailVerified 记录第一步完成时间
func (r *GormStepProgressRepository) MarkEmailVerified(id uint, at time.Time) error {
	return r.db.Model(&models.StepProgress{}).
		Where("id = ?", id).
		Update("email_verified_at", at).Error
}

// MarkReportGenerated 记录第二步完成时间
func (r *GormStepProgressRepository) MarkReportGenerated(id uint, at time.Time) error {
	return r.db.Model(&models.StepProgress{}).
		Where("id = ?", id).
		Update("report_generated_at", at).Error
}

// MarkDecryptUnlocked 记录第三步完成时间
func (r *GormStepProgressRepository) MarkDecryptUnlocked(id uint, at time.Time) error {
	return r.db.Model(&models.StepProgress{}).
		Where("id = ?", id).
		Update("decrypt_unlocked_at", at).Error
}

// ResetCycle 重置流程：保留第一步完成时间，清空后续步骤
// 第一步重新验证或整轮流程完成后开启新一轮时调用。
func (r *GormStepProgressRepository) ResetCycle(id uint, emailVerifiedAt time.Time) error {
	return r.db.Model(&models.StepProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_verified_at":   emailVerifiedAt,
			"report_generated_at": nil,
			"decrypt_unlocked_at": nil,
		}).Error
}

// List 分页列出进度记录，按更新时间倒序
func (r *GormStepProgressRepository) List(filter StepProgressListFilter) ([]models.StepProgress, int64, error) {
	query := r.db.Model(&models.StepProgress{})
	if filter.Identifier != "" {
		query = query.Where("identifier LIKE ?", "%"+filter.Identifier+"%")
	}
	if filter.UpdatedFrom != nil {
		query = query.Where("updated_at >= ?", *filter.UpdatedFrom)
	}
	if filter.UpdatedTo != nil {
		query = query.Where("updated_at <= ?", *filter.UpdatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.StepProgress
	if err := query.Order("updated_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// DeleteByIdentifier 删除指定标识符的进度记录
func (r *GormStepProgressRepository) DeleteByIdentifier(identifier string) error {
	return r.db.Where("identifier = ?", identifier).Delete(&models.StepProgress{}).Error
}

// PurgeStaleBefore 物理清理更新时间早于 cutoff 的记录
func (r *GormStepProgressRepository) PurgeStaleBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("updated_at < ?", cutoff).Delete(&models.StepProgress{})
	return result.RowsAffected, result.Error
}
