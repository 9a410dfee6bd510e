package service

import (
	"errors"
	"time"

	"github.com/payhub-next/internal/logger"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"
)

// ErrDashboardQueryFailed 仪表盘统计查询失败
var ErrDashboardQueryFailed = errors.New("dashboard query failed")

// DashboardService 收款仪表盘服务
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
	linkRepo      repository.PaymentLinkRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	linkRepo repository.PaymentLinkRepository,
) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		linkRepo:      linkRepo,
	}
}

// DashboardOverview 仪表盘总览
type DashboardOverview struct {
	TotalCollected     models.Money         `json:"total_collected"`
	TotalPending       models.Money         `json:"total_pending"`
	TotalRefunded      models.Money         `json:"total_refunded"`
	CollectedToday     models.Money         `json:"collected_today"`
	ActiveLinks        int64                `json:"active_links"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// GetOverview 汇总收款统计与最近交易
func (s *DashboardService) GetOverview(hubID uint) (*DashboardOverview, error) {
	log := logger.S().With("hub_id", hubID)

	row, err := s.dashboardRepo.GetOverview(hubID, time.Now())
	if err != nil {
		log.Errorw("dashboard_overview_query_failed", "error", err)
		return nil, ErrDashboardQueryFailed
	}
	activeLinks, err := s.linkRepo.CountActive(hubID)
	if err != nil {
		log.Errorw("dashboard_active_links_query_failed", "error", err)
		return nil, ErrDashboardQueryFailed
	}
	recent, err := s.dashboardRepo.GetRecentTransactions(hubID, 10)
	if err != nil {
		log.Errorw("dashboard_recent_txns_query_failed", "error", err)
		return nil, ErrDashboardQueryFailed
	}

	return &DashboardOverview{
		TotalCollected:     models.NewMoneyFromDecimal(row.TotalCollected),
		TotalPending:       models.NewMoneyFromDecimal(row.TotalPending),
		TotalRefunded:      models.NewMoneyFromDecimal(row.TotalRefunded),
		CollectedToday:     models.NewMoneyFromDecimal(row.CollectedToday),
		ActiveLinks:        activeLinks,
		RecentTransactions: recent,
	}, nil
}
