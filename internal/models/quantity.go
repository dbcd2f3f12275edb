package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Quantity 统一计量类型（保留 1 位小数，用于营养克数、睡眠时长等）
type Quantity struct {
	decimal.Decimal
}

// NewQuantityFromDecimal 从 decimal 创建计量值
func NewQuantityFromDecimal(amount decimal.Decimal) Quantity {
	return Quantity{Decimal: amount.Round(1)}
}

// NewQuantityFromFloat 从 float 创建计量值
func NewQuantityFromFloat(amount float64) Quantity {
	return Quantity{Decimal: decimal.NewFromFloat(amount).Round(1)}
}

// MarshalJSON 统一输出 1 位小数的字符串
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Decimal.Round(1).StringFixed(1))
}

// UnmarshalJSON 解析计量值（字符串或数字）
func (q *Quantity) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		q.Decimal = d.Round(1)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	q.Decimal = decimal.NewFromFloat(f).Round(1)
	return nil
}

// Value 用于数据库写入
func (q Quantity) Value() (driver.Value, error) {
	return q.Decimal.Round(1).Value()
}

// Scan 用于数据库读取
func (q *Quantity) Scan(value interface{}) error {
	if err := q.Decimal.Scan(value); err != nil {
		return err
	}
	q.Decimal = q.Decimal.Round(1)
	return nil
}

// String 返回 1 位小数格式
func (q Quantity) String() string {
	return q.Decimal.Round(1).StringFixed(1)
}

// Float 返回 float64 数值（用于得分计算）
func (q Quantity) Float() float64 {
	f, _ := q.Decimal.Float64()
	return f
}
