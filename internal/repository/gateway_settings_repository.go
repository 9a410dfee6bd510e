package repository

import (
	"errors"

	"github.com/payhub-next/internal/models"

	"gorm.io/gorm"
)

// GatewaySettingsRepository 网关配置数据访问接口
type GatewaySettingsRepository interface {
	GetOrCreate(hubID uint) (*models.GatewaySettings, error)
	Update(settings *models.GatewaySettings) error
	WithTx(tx *gorm.DB) *GormGatewaySettingsRepository
}

// GormGatewaySettingsRepository GORM 实现
type GormGatewaySettingsRepository struct {
	db *gorm.DB
}

// NewGatewaySettingsRepository 创建网关配置仓库
func NewGatewaySettingsRepository(db *gorm.DB) *GormGatewaySettingsRepository {
	return &GormGatewaySettingsRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGatewaySettingsRepository) WithTx(tx *gorm.DB) *GormGatewaySettingsRepository {
	if tx == nil {
		return r
	}
	return &GormGatewaySettingsRepository{db: tx}
}

// GetOrCreate 获取 hub 的配置单例，不存在则按默认值创建。
// 依赖 hub_id 唯一约束：并发创建冲突时重读已有行。
func (r *GormGatewaySettingsRepository) GetOrCreate(hubID uint) (*models.GatewaySettings, error) {
	settings, err := r.getByHubID(hubID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	created := &models.GatewaySettings{
		HubID:             hubID,
		ActiveGateway:     "none",
		RedsysTerminal:    "001",
		RedsysEnvironment: "test",
		Currency:          "EUR",
	}
	if err := r.db.Create(created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.getByHubID(hubID)
		}
		// 唯一约束冲突在部分驱动下不会映射为 ErrDuplicatedKey，兜底重读
		if existing, readErr := r.getByHubID(hubID); readErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

// Update 保存配置
func (r *GormGatewaySettingsRepository) Update(settings *models.GatewaySettings) error {
	return r.db.Save(settings).Error
}

func (r *GormGatewaySettingsRepository) getByHubID(hubID uint) (*models.GatewaySettings, error) {
	var settings models.GatewaySettings
	result := r.db.Where("hub_id = ?", hubID).Limit(1).Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &settings, nil
}
