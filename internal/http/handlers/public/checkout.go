package public

import (
	"errors"
	"time"

	"github.com/payhub-next/internal/http/response"
	"github.com/payhub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCheckout 按 slug 获取公开 checkout 页数据
func (h *Handler) GetCheckout(c *gin.Context) {
	slug := c.Param("slug")

	view, err := h.LinkService.GetCheckout(slug, time.Now())
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			respondError(c, response.CodeNotFound, "payment link not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "checkout fetch failed", err)
		return
	}

	link := view.Link
	response.Success(c, gin.H{
		"link": gin.H{
			"title":          link.Title,
			"description":    link.Description,
			"amount":         link.Amount,
			"currency":       link.Currency,
			"slug":           link.Slug,
			"customer_email": link.CustomerEmail,
			"expires_at":     link.ExpiresAt,
			"max_uses":       link.MaxUses,
			"current_uses":   link.CurrentUses,
		},
		"available":         view.Available,
		"gateway":           view.Gateway,
		"currency":          view.Currency,
		"stripe_public_key": view.StripeKey,
	})
}
