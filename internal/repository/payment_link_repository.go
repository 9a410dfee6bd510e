package repository

import (
	"strings"

	"github.com/payhub-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentLinkRepository 支付链接数据访问接口
type PaymentLinkRepository interface {
	Create(link *models.PaymentLink) error
	Update(link *models.PaymentLink) error
	GetByID(hubID, id uint) (*models.PaymentLink, error)
	GetBySlug(slug string) (*models.PaymentLink, error)
	GetBySlugForUpdate(tx *gorm.DB, slug string) (*models.PaymentLink, error)
	List(filter PaymentLinkListFilter) ([]models.PaymentLink, int64, error)
	CountActive(hubID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormPaymentLinkRepository
}

// GormPaymentLinkRepository GORM 实现
type GormPaymentLinkRepository struct {
	db *gorm.DB
}

// NewPaymentLinkRepository 创建支付链接仓库
func NewPaymentLinkRepository(db *gorm.DB) *GormPaymentLinkRepository {
	return &GormPaymentLinkRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentLinkRepository) WithTx(tx *gorm.DB) *GormPaymentLinkRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentLinkRepository{db: tx}
}

// Create 创建支付链接
func (r *GormPaymentLinkRepository) Create(link *models.PaymentLink) error {
	return r.db.Create(link).Error
}

// Update 更新支付链接
func (r *GormPaymentLinkRepository) Update(link *models.PaymentLink) error {
	return r.db.Save(link).Error
}

// GetByID 按 hub + 主键获取链接
func (r *GormPaymentLinkRepository) GetByID(hubID, id uint) (*models.PaymentLink, error) {
	var link models.PaymentLink
	result := r.db.Where("hub_id = ? AND deleted = ? AND id = ?", hubID, false, id).
		Limit(1).Find(&link)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &link, nil
}

// GetBySlug 按 slug 获取链接（公共 checkout 入口，不做 hub 过滤）
func (r *GormPaymentLinkRepository) GetBySlug(slug string) (*models.PaymentLink, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var link models.PaymentLink
	result := r.db.Where("slug = ? AND deleted = ?", slug, false).Limit(1).Find(&link)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &link, nil
}

// GetBySlugForUpdate 事务内按 slug 加行锁获取链接（用于 current_uses 自增）
func (r *GormPaymentLinkRepository) GetBySlugForUpdate(tx *gorm.DB, slug string) (*models.PaymentLink, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	db := r.db
	if tx != nil {
		db = tx
	}
	var link models.PaymentLink
	result := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slug = ? AND deleted = ?", slug, false).Limit(1).Find(&link)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &link, nil
}

// List 员工端链接列表
func (r *GormPaymentLinkRepository) List(filter PaymentLinkListFilter) ([]models.PaymentLink, int64, error) {
	query := r.db.Model(&models.PaymentLink{}).
		Where("hub_id = ? AND deleted = ?", filter.HubID, false)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"title LIKE ? OR customer_email LIKE ? OR slug LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var links []models.PaymentLink
	if err := query.Order("created_at desc, id desc").Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// CountActive 统计启用中的链接数量
func (r *GormPaymentLinkRepository) CountActive(hubID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentLink{}).
		Where("hub_id = ? AND deleted = ? AND is_active = ?", hubID, false, true).
		Count(&count).Error
	return count, err
}
