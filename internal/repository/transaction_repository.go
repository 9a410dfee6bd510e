package repository

import (
	"strings"

	"github.com/payhub-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository 交易数据访问接口。
// 默认查询均排除软删除记录并按 hub 隔离；
// GetByTransactionIDAny 是唯一的例外，供 webhook 关联查找使用。
type TransactionRepository interface {
	Create(txn *models.Transaction) error
	Update(txn *models.Transaction) error
	GetByID(hubID, id uint) (*models.Transaction, error)
	GetByTransactionID(hubID uint, transactionID string) (*models.Transaction, error)
	GetByTransactionIDAny(transactionID string) (*models.Transaction, error)
	GetByTransactionIDAnyForUpdate(tx *gorm.DB, transactionID string) (*models.Transaction, error)
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Transaction, error)
	List(filter TransactionListFilter) ([]models.Transaction, int64, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// Create 创建交易记录
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// Update 更新交易记录
func (r *GormTransactionRepository) Update(txn *models.Transaction) error {
	return r.db.Save(txn).Error
}

// GetByID 按 hub + 主键获取交易
func (r *GormTransactionRepository) GetByID(hubID, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	result := r.db.Where("hub_id = ? AND deleted = ? AND id = ?", hubID, false, id).
		Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// GetByTransactionID 按 hub + 交易号获取交易
func (r *GormTransactionRepository) GetByTransactionID(hubID uint, transactionID string) (*models.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, nil
	}
	var txn models.Transaction
	result := r.db.Where("hub_id = ? AND deleted = ? AND transaction_id = ?", hubID, false, transactionID).
		Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// GetByTransactionIDAny 按交易号获取交易，不过滤 hub 与软删除标记。
// webhook 必须能命中事后被隐藏的记录。
func (r *GormTransactionRepository) GetByTransactionIDAny(transactionID string) (*models.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, nil
	}
	var txn models.Transaction
	result := r.db.Where("transaction_id = ?", transactionID).Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// GetByTransactionIDAnyForUpdate 事务内按交易号加行锁获取交易（不过滤可见性）
func (r *GormTransactionRepository) GetByTransactionIDAnyForUpdate(tx *gorm.DB, transactionID string) (*models.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, nil
	}
	db := r.db
	if tx != nil {
		db = tx
	}
	var txn models.Transaction
	result := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// GetByIDForUpdate 事务内按主键加行锁获取交易
func (r *GormTransactionRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Transaction, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var txn models.Transaction
	result := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).Limit(1).Find(&txn)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &txn, nil
}

// List 员工端交易列表
func (r *GormTransactionRepository) List(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{}).
		Where("hub_id = ? AND deleted = ?", filter.HubID, false)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"transaction_id LIKE ? OR customer_name LIKE ? OR customer_email LIKE ? OR gateway_reference LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Gateway != "" {
		query = query.Where("gateway = ?", filter.Gateway)
	}
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", filter.SourceType)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.Transaction
	if err := query.Order("created_at desc, id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
