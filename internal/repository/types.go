package repository

import "time"

// TransactionListFilter 交易列表筛选条件
type TransactionListFilter struct {
	HubID       uint
	Search      string // 匹配交易号/客户姓名/客户邮箱/网关流水号
	Status      string
	Gateway     string
	SourceType  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// PaymentLinkListFilter 支付链接列表筛选条件
type PaymentLinkListFilter struct {
	HubID      uint
	Search     string // 匹配标题/客户邮箱/slug
	ActiveOnly bool
	Page       int
	PageSize   int
}
