package models

import (
	"time"

	"gorm.io/gorm"
)

// DietRecord 饮食记录
type DietRecord struct {
	ID           uint           `gorm:"primarykey" json:"id"`                              // 主键
	UserID       uint           `gorm:"index;not null" json:"user_id"`                     // 用户
	MealType     string         `gorm:"type:varchar(20);not null" json:"meal_type"`        // 餐次（breakfast/lunch/dinner/snack）
	FoodName     string         `gorm:"type:varchar(200)" json:"food_name"`                // 食物名称
	Calories     int            `gorm:"not null;default:0" json:"calories"`                // 热量（千卡）
	ProteinGrams Quantity       `gorm:"type:decimal(10,1);default:0" json:"protein_grams"` // 蛋白质（克）
	CarbsGrams   Quantity       `gorm:"type:decimal(10,1);default:0" json:"carbs_grams"`   // 碳水（克）
	FatGrams     Quantity       `gorm:"type:decimal(10,1);default:0" json:"fat_grams"`     // 脂肪（克）
	WaterML      int            `gorm:"not null;default:0" json:"water_ml"`                // 饮水量（毫升）
	RecordedAt   time.Time      `gorm:"index;not null" json:"recorded_at"`                 // 记录归属时间
	CreatedAt    time.Time      `json:"created_at"`                                        // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (DietRecord) TableName() string {
	return "diet_records"
}
