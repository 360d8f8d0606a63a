package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/httperr"
	"github.com/orthoflow/clinic-api/internal/httpresp"
	"github.com/orthoflow/clinic-api/internal/models"
)

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// List returns audit entries, newest first, filterable by action, entity,
// user and date range.
func (h *AuditLogsHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.AuditLog{})

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		query = query.Where("entity = ?", entity)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var logs []models.AuditLog
	if err := query.
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&logs).Error; err != nil {
		httperr.Internal(c, "failed_to_list_audit_logs", "Unexpected error.")
		return
	}

	httpresp.List(c, logs)
}
