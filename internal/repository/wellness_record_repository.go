package repository

import (
	"github.com/wellnest-next/internal/models"

	"gorm.io/gorm"
)

// WellnessRecordRepository 健康记录数据访问接口
type WellnessRecordRepository interface {
	CreateDietRecord(record *models.DietRecord) error
	ListDietRecords(filter WellnessRecordListFilter) ([]models.DietRecord, int64, error)
	CreateFitnessRecord(record *models.FitnessRecord) error
	ListFitnessRecords(filter WellnessRecordListFilter) ([]models.FitnessRecord, int64, error)
	CreateMoodRecord(record *models.MoodRecord) error
	ListMoodRecords(filter WellnessRecordListFilter) ([]models.MoodRecord, int64, error)
}

// GormWellnessRecordRepository GORM 实现
type GormWellnessRecordRepository struct {
	db *gorm.DB
}

// NewWellnessRecordRepository 创建健康记录仓库
func NewWellnessRecordRepository(db *gorm.DB) *GormWellnessRecordRepository {
	return &GormWellnessRecordRepository{db: db}
}

func (r *GormWellnessRecordRepository) applyRecordFilter(query *gorm.DB, filter WellnessRecordListFilter) *gorm.DB {
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.RecordedFrom != nil {
		query = query.Where("recorded_at >= ?", *filter.RecordedFrom)
	}
	if filter.RecordedTo != nil {
		query = query.Where("recorded_at < ?", *filter.RecordedTo)
	}
	return query
}

// CreateDietRecord 创建饮食记录
func (r *GormWellnessRecordRepository) CreateDietRecord(record *models.DietRecord) error {
	return r.db.Create(record).Error
}

// ListDietRecords 分页列出饮食记录，按记录时间倒序
func (r *GormWellnessRecordRepository) ListDietRecords(filter WellnessRecordListFilter) ([]models.DietRecord, int64, error) {
	query := r.applyRecordFilter(r.db.Model(&models.DietRecord{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.DietRecord
	if err := query.Order("recorded_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// CreateFitnessRecord 创建运动记录
func (r *GormWellnessRecordRepository) CreateFitnessRecord(record *models.FitnessRecord) error {
	return r.db.Create(record).Error
}

// ListFitnessRecords 分页列出运动记录，按记录时间倒序
func (r *GormWellnessRecordRepository) ListFitnessRecords(filter WellnessRecordListFilter) ([]models.FitnessRecord, int64, error) {
	query := r.applyRecordFilter(r.db.Model(&models.FitnessRecord{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.FitnessRecord
	if err := query.Order("recorded_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// CreateMoodRecord 创建情绪记录
func (r *GormWellnessRecordRepository) CreateMoodRecord(record *models.MoodRecord) error {
	return r.db.Create(record).Error
}

// ListMoodRecords 分页列出情绪记录，按记录时间倒序
func (r *GormWellnessRecordRepository) ListMoodRecords(filter WellnessRecordListFilter) ([]models.MoodRecord, int64, error) {
	query := r.applyRecordFilter(r.db.Model(&models.MoodRecord{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.MoodRecord
	if err := query.Order("recorded_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
