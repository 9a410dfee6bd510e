package repository

import (
	"time"

	"github.com/payhub-next/internal/constants"
	"github.com/payhub-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(hubID uint, now time.Time) (DashboardOverviewRow, error)
	GetRecentTransactions(hubID uint, limit int) ([]models.Transaction, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	TotalCollected decimal.Decimal
	TotalPending   decimal.Decimal
	TotalRefunded  decimal.Decimal
	CollectedToday decimal.Decimal
}

// GormDashboardRepository GORM 实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 汇总已收/待收/已退金额与今日进账
func (r *GormDashboardRepository) GetOverview(hubID uint, now time.Time) (DashboardOverviewRow, error) {
	var row DashboardOverviewRow
	base := r.db.Model(&models.Transaction{}).
		Where("hub_id = ? AND deleted = ?", hubID, false)

	err := base.Session(&gorm.Session{}).
		Where("status IN ?", []string{
			constants.TransactionStatusCompleted,
			constants.TransactionStatusPartiallyRefunded,
			constants.TransactionStatusRefunded,
		}).
		Select("COALESCE(SUM(amount), 0) AS total_collected, COALESCE(SUM(refund_amount), 0) AS total_refunded").
		Scan(&row).Error
	if err != nil {
		return DashboardOverviewRow{}, err
	}

	var pending struct{ TotalPending decimal.Decimal }
	err = base.Session(&gorm.Session{}).
		Where("status = ?", constants.TransactionStatusPending).
		Select("COALESCE(SUM(amount), 0) AS total_pending").
		Scan(&pending).Error
	if err != nil {
		return DashboardOverviewRow{}, err
	}
	row.TotalPending = pending.TotalPending

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var today struct{ CollectedToday decimal.Decimal }
	err = base.Session(&gorm.Session{}).
		Where("status IN ? AND completed_at >= ? AND completed_at < ?",
			[]string{
				constants.TransactionStatusCompleted,
				constants.TransactionStatusPartiallyRefunded,
				constants.TransactionStatusRefunded,
			},
			dayStart, dayStart.AddDate(0, 0, 1)).
		Select("COALESCE(SUM(amount), 0) AS collected_today").
		Scan(&today).Error
	if err != nil {
		return DashboardOverviewRow{}, err
	}
	row.CollectedToday = today.CollectedToday

	return row, nil
}

// GetRecentTransactions 最近交易
func (r *GormDashboardRepository) GetRecentTransactions(hubID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	var txns []models.Transaction
	err := r.db.Where("hub_id = ? AND deleted = ?", hubID, false).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&txns).Error
	return txns, err
}
