package repository

import (
	"errors"
	"time"

	"github.com/wellnest-next/internal/models"

	"gorm.io/gorm"
)

// OneTimeCodeRepository 一次性验证码数据访问接口
type OneTimeCodeRepository interface {
	Create(code *models.OneTimeCode) error
	GetLatest(identifier, purpose string) (*models.OneTimeCode, error)
	MarkConsumed(id uint, consumedAt time.Time) error
	IncrementAttempt(id uint) error
	InvalidateActive(identifier, purpose string) error
	PurgeExpiredBefore(cutoff time.Time) (int64, error)
}

// GormOneTimeCodeRepository GORM 实现
type GormOneTimeCodeRepository struct {
	db *gorm.DB
}

// NewOneTimeCodeRepository 创建一次性验证码仓库
func NewOneTimeCodeRepository(db *gorm.DB) *GormOneTimeCodeRepository {
	return &GormOneTimeCodeRepository{db: db}
}

// Create 创建验证码记录
func (r *GormOneTimeCodeRepository) Create(code *models.OneTimeCode) error {
	return r.db.Create(code).Error
}

// GetLatest 获取最新有效验证码记录
func (r *GormOneTimeCodeRepository) GetLatest(identifier, purpose string) (*models.OneTimeCode, error) {
	var record models.OneTimeCode
	if err := r.db.Where("identifier = ? AND purpose = ?", identifier, purpose).
		Order("issued_at desc, id desc").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// MarkConsumed 标记验证码已消费
func (r *GormOneTimeCodeRepository) MarkConsumed(id uint, consumedAt time.Time) error {
	return r.db.Model(&models.OneTimeCode{}).
		Where("id = ?", id).
		Update("consumed_at", consumedAt).Error
}

// IncrementAttempt 增加失败尝试次数
func (r *GormOneTimeCodeRepository) IncrementAttempt(id uint) error {
	return r.db.Model(&models.OneTimeCode{}).
		Where("id = ?", id).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + 1")).Error
}

// InvalidateActive 失效同一（标识符，用途）下的全部未消费记录
// 签发新码前调用，保证同组合最多一条有效记录。
func (r *GormOneTimeCodeRepository) InvalidateActive(identifier, purpose string) error {
	return r.db.Where("identifier = ? AND purpose = ? AND consumed_at IS NULL", identifier, purpose).
		Delete(&models.OneTimeCode{}).Error
}

// PurgeExpiredBefore 物理清理过期时间早于 cutoff 的记录（含软删除行）
func (r *GormOneTimeCodeRepository) PurgeExpiredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("expires_at < ?", cutoff).
		Delete(&models.OneTimeCode{})
	return result.RowsAffected, result.Error
}
