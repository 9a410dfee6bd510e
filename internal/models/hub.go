package models

import "time"

// HubModel 多租户基础模型：所有记录归属一个 hub，删除为软删除标记。
// 不使用 gorm.DeletedAt：webhook 查找需要显式的 "含已删除" 访问路径，
// 默认查询由 repository 层统一追加 deleted = false 条件。
type HubModel struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	HubID     uint       `gorm:"index;not null" json:"hub_id"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Deleted   bool       `gorm:"index;not null;default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// SoftDelete 标记软删除
func (m *HubModel) SoftDelete(now time.Time) {
	m.Deleted = true
	m.DeletedAt = &now
}
