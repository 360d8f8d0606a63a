package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/audit"
	"github.com/orthoflow/clinic-api/internal/httperr"
	"github.com/orthoflow/clinic-api/internal/httpresp"
	"github.com/orthoflow/clinic-api/internal/middleware"
	"github.com/orthoflow/clinic-api/internal/models"
)

type AppointmentTypeHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAppointmentTypeHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *AppointmentTypeHandler {
	return &AppointmentTypeHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateAppointmentTypeRequest struct {
	TypeName    string `json:"type_name" binding:"required"`
	Duration    string `json:"duration" binding:"required"`
	Description string `json:"description"`
}

type UpdateAppointmentTypeRequest struct {
	TypeName    *string `json:"type_name"`
	Duration    *string `json:"duration"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// --------- Handlers ---------

func (h *AppointmentTypeHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.AppointmentType{})

	if search := c.Query("search"); search != "" {
		query = query.Where("type_name ILIKE ?", "%"+search+"%")
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var types []models.AppointmentType
	if err := query.
		Order("type_name").
		Offset(skip).
		Limit(limit).
		Find(&types).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointment_types", "Unexpected error.")
		return
	}

	httpresp.List(c, types)
}

func (h *AppointmentTypeHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var t models.AppointmentType
	if err := h.db.First(&t, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "appointment_type_not_found", "Appointment type not found.")
		return
	}

	httpresp.OK(c, t)
}

func (h *AppointmentTypeHandler) Create(c *gin.Context) {
	var req CreateAppointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var count int64
	h.db.Model(&models.AppointmentType{}).Where("type_name = ?", req.TypeName).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "type_name_already_registered", "An appointment type with this name already exists.")
		return
	}

	t := models.AppointmentType{
		TypeName:    req.TypeName,
		Duration:    req.Duration,
		Description: req.Description,
		IsActive:    true,
	}

	if err := h.db.Create(&t).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "type_name_already_registered", "An appointment type with this name already exists.")
			return
		}
		httperr.Internal(c, "failed_to_create_appointment_type", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_type_created",
		Entity:   "appointment_type",
		EntityID: &t.ID,
	})

	httpresp.Created(c, t)
}

func (h *AppointmentTypeHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateAppointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var t models.AppointmentType
	if err := h.db.First(&t, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "appointment_type_not_found", "Appointment type not found.")
		return
	}

	if req.TypeName != nil && *req.TypeName != t.TypeName {
		var count int64
		h.db.Model(&models.AppointmentType{}).
			Where("type_name = ? AND id <> ?", *req.TypeName, t.ID).
			Count(&count)
		if count > 0 {
			httperr.BadRequest(c, "type_name_already_registered", "An appointment type with this name already exists.")
			return
		}
		t.TypeName = *req.TypeName
	}

	if req.Duration != nil {
		t.Duration = *req.Duration
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := h.db.Save(&t).Error; err != nil {
		httperr.Internal(c, "failed_to_update_appointment_type", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_type_updated",
		Entity:   "appointment_type",
		EntityID: &t.ID,
	})

	httpresp.OK(c, t)
}

func (h *AppointmentTypeHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var t models.AppointmentType
	if err := h.db.First(&t, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "appointment_type_not_found", "Appointment type not found.")
		return
	}

	if err := h.db.Delete(&t).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_appointment_type", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_type_deleted",
		Entity:   "appointment_type",
		EntityID: &t.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Appointment type deleted successfully."})
}

func (h *AppointmentTypeHandler) SearchByName(c *gin.Context) {
	name := c.Param("name")

	var types []models.AppointmentType
	if err := h.db.
		Where("type_name ILIKE ?", "%"+name+"%").
		Order("type_name").
		Find(&types).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointment_types", "Unexpected error.")
		return
	}

	httpresp.List(c, types)
}

func (h *AppointmentTypeHandler) ToggleStatus(c *gin.Context) {
	id := c.Param("id")

	var t models.AppointmentType
	if err := h.db.First(&t, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "appointment_type_not_found", "Appointment type not found.")
		return
	}

	active := c.Query("is_active") == "true"

	if err := h.db.Model(&t).Update("is_active", active).Error; err != nil {
		httperr.Internal(c, "failed_to_update_appointment_type", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_type_status_changed",
		Entity:   "appointment_type",
		EntityID: &t.ID,
		Metadata: gin.H{"is_active": active},
	})

	httpresp.OK(c, t)
}
