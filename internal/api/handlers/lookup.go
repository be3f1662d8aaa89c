package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/core"
	"github.com/leozw/domain-inspector/internal/lookup"
	"github.com/leozw/domain-inspector/internal/report"
)

const defaultHistoryLimit = 20

type LookupRequest struct {
	Query  string `form:"q" binding:"required"`
	Fresh  bool   `form:"fresh"`
	Format string `form:"format" binding:"omitempty,oneof=json text"`
}

type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Lookup analyzes the domain in ?q=. The report is served from the cache
// unless fresh=true; X-Cache tells which.
func (h *Handler) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, cached, err := h.inspector.Lookup(c.Request.Context(), req.Query, req.Fresh)
	if err != nil {
		if core.IsInputError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Lookup failed", zap.String("query", req.Query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze domain"})
		return
	}

	if cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}

	if req.Format == "text" {
		c.String(http.StatusOK, report.Render(r))
		return
	}
	c.JSON(http.StatusOK, r)
}

// History lists stored reports for a domain, newest first.
func (h *Handler) History(c *gin.Context) {
	if !h.inspector.HistoryEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": lookup.ErrHistoryDisabled.Error()})
		return
	}

	domain := strings.ToLower(strings.TrimSpace(c.Param("domain")))
	if !core.IsValidDomain(domain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrInvalidDomain.Error()})
		return
	}

	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	reports, err := h.inspector.History(c.Request.Context(), domain, limit)
	if err != nil {
		if errors.Is(err, lookup.ErrHistoryDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to list report history", zap.String("domain", domain), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list report history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domain":  domain,
		"reports": reports,
		"count":   len(reports),
	})
}
