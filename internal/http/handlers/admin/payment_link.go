package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/payhub-next/internal/http/handlers/shared"
	"github.com/payhub-next/internal/http/response"
	"github.com/payhub-next/internal/models"
	"github.com/payhub-next/internal/repository"
	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateLinkRequest 创建收款链接请求
type CreateLinkRequest struct {
	Title         string       `json:"title" binding:"required"`
	Description   string       `json:"description"`
	Amount        models.Money `json:"amount" binding:"required"`
	Currency      string       `json:"currency"`
	Slug          string       `json:"slug"`
	ExpiresAt     *time.Time   `json:"expires_at"`
	MaxUses       *int         `json:"max_uses"`
	CustomerEmail string       `json:"customer_email"`
	SourceType    string       `json:"source_type"`
	SourceID      string       `json:"source_id"`
}

// CreatePaymentLink 创建收款链接
func (h *Handler) CreatePaymentLink(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	link, err := h.LinkService.CreateLink(service.CreateLinkInput{
		HubID:         hubID,
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Slug:          req.Slug,
		ExpiresAt:     req.ExpiresAt,
		MaxUses:       req.MaxUses,
		CustomerEmail: req.CustomerEmail,
		SourceType:    req.SourceType,
		SourceID:      req.SourceID,
	})
	if err != nil {
		respondLinkError(c, err)
		return
	}
	response.Success(c, link)
}

// UpdateLinkRequest 更新收款链接请求（未提交字段保持原值）
type UpdateLinkRequest struct {
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	Amount        *models.Money `json:"amount"`
	Currency      *string       `json:"currency"`
	IsActive      *bool         `json:"is_active"`
	ExpiresAt     *time.Time    `json:"expires_at"`
	ClearExpires  bool          `json:"clear_expires"`
	MaxUses       *int          `json:"max_uses"`
	CustomerEmail *string       `json:"customer_email"`
}

// UpdatePaymentLink 更新收款链接
func (h *Handler) UpdatePaymentLink(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || linkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid link id", nil)
		return
	}
	var req UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	link, err := h.LinkService.UpdateLink(hubID, uint(linkID), service.UpdateLinkInput{
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		IsActive:      req.IsActive,
		ExpiresAt:     req.ExpiresAt,
		ClearExpires:  req.ClearExpires,
		MaxUses:       req.MaxUses,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		respondLinkError(c, err)
		return
	}
	response.Success(c, link)
}

// DeactivatePaymentLink 停用收款链接
func (h *Handler) DeactivatePaymentLink(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || linkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid link id", nil)
		return
	}
	link, err := h.LinkService.DeactivateLink(hubID, uint(linkID))
	if err != nil {
		respondLinkError(c, err)
		return
	}
	response.Success(c, link)
}

// DeletePaymentLink 删除收款链接（软删除，历史交易保留）
func (h *Handler) DeletePaymentLink(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || linkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid link id", nil)
		return
	}
	if err := h.LinkService.DeleteLink(hubID, uint(linkID)); err != nil {
		respondLinkError(c, err)
		return
	}
	response.SuccessWithMsg(c, "deleted", nil)
}

// GetPaymentLink 链接详情
func (h *Handler) GetPaymentLink(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	linkID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || linkID == 0 {
		respondError(c, response.CodeBadRequest, "invalid link id", nil)
		return
	}
	link, err := h.LinkService.GetLink(hubID, uint(linkID))
	if err != nil {
		respondLinkError(c, err)
		return
	}
	response.Success(c, link)
}

// ListPaymentLinks 链接列表
func (h *Handler) ListPaymentLinks(c *gin.Context) {
	hubID, ok := getHubID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "25"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	links, total, err := h.LinkService.ListLinks(repository.PaymentLinkListFilter{
		HubID:      hubID,
		Search:     strings.TrimSpace(c.Query("search")),
		ActiveOnly: c.Query("active_only") == "true",
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payment link list failed", err)
		return
	}
	response.SuccessWithPage(c, links, response.NewPagination(page, pageSize, total))
}

func respondLinkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		respondError(c, response.CodeNotFound, "payment link not found", nil)
	case errors.Is(err, service.ErrLinkTitleRequired),
		errors.Is(err, service.ErrLinkSlugTaken),
		errors.Is(err, service.ErrAmountInvalid):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "payment link operation failed", err)
	}
}
