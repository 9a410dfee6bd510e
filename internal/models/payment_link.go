package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentLink 可分享的收款链接
type PaymentLink struct {
	HubModel
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Amount        Money      `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string     `gorm:"size:3;not null;default:EUR" json:"currency"`
	Slug          string     `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt     *time.Time `json:"expires_at"`
	MaxUses       int        `gorm:"not null;default:1" json:"max_uses"` // 0 = 不限次数
	CurrentUses   int        `gorm:"not null;default:0" json:"current_uses"`
	CustomerEmail string     `gorm:"size:255" json:"customer_email"`
	SourceType    string     `gorm:"size:50" json:"source_type"`
	SourceID      string     `gorm:"size:36" json:"source_id"`
}

// TableName 指定表名
func (PaymentLink) TableName() string {
	return "payment_links"
}

// NewLinkSlug 生成 12 位 URL 安全随机 slug
func NewLinkSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// IsExpired 判断链接是否已过期（相对当前时间，每次读取重算）
func (l *PaymentLink) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return now.After(*l.ExpiresAt)
}

// IsAvailable 判断链接是否可用：启用、未过期、未用尽（max_uses=0 不限次）
func (l *PaymentLink) IsAvailable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.IsExpired(now) {
		return false
	}
	if l.MaxUses > 0 && l.CurrentUses >= l.MaxUses {
		return false
	}
	return true
}
