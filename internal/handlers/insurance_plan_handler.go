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

type InsurancePlanHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewInsurancePlanHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *InsurancePlanHandler {
	return &InsurancePlanHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateInsurancePlanRequest struct {
	PlanName     string   `json:"plan_name" binding:"required"`
	Provider     string   `json:"provider" binding:"required"`
	CoverageType string   `json:"coverage_type" binding:"required"`
	CopayAmount  *float64 `json:"copay_amount"`
	Deductible   *float64 `json:"deductible_amount"`
}

type UpdateInsurancePlanRequest struct {
	PlanName     *string  `json:"plan_name"`
	Provider     *string  `json:"provider"`
	CoverageType *string  `json:"coverage_type"`
	CopayAmount  *float64 `json:"copay_amount"`
	Deductible   *float64 `json:"deductible_amount"`
	IsActive     *bool    `json:"is_active"`
}

// --------- Handlers ---------

func (h *InsurancePlanHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.InsurancePlan{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("plan_name ILIKE ? OR provider ILIKE ?", like, like)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var plans []models.InsurancePlan
	if err := query.
		Order("plan_name").
		Offset(skip).
		Limit(limit).
		Find(&plans).Error; err != nil {
		httperr.Internal(c, "failed_to_list_insurance_plans", "Unexpected error.")
		return
	}

	httpresp.List(c, plans)
}

func (h *InsurancePlanHandler) ListActive(c *gin.Context) {
	var plans []models.InsurancePlan
	if err := h.db.
		Where("is_active = ?", true).
		Order("plan_name").
		Find(&plans).Error; err != nil {
		httperr.Internal(c, "failed_to_list_insurance_plans", "Unexpected error.")
		return
	}

	httpresp.List(c, plans)
}

func (h *InsurancePlanHandler) SearchByName(c *gin.Context) {
	name := c.Param("name")

	var plans []models.InsurancePlan
	if err := h.db.
		Where("plan_name ILIKE ?", "%"+name+"%").
		Order("plan_name").
		Find(&plans).Error; err != nil {
		httperr.Internal(c, "failed_to_list_insurance_plans", "Unexpected error.")
		return
	}

	httpresp.List(c, plans)
}

func (h *InsurancePlanHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var plan models.InsurancePlan
	if err := h.db.First(&plan, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "insurance_plan_not_found", "Insurance plan not found.")
		return
	}

	httpresp.OK(c, plan)
}

func (h *InsurancePlanHandler) Create(c *gin.Context) {
	var req CreateInsurancePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	plan := models.InsurancePlan{
		PlanName:         req.PlanName,
		Provider:         req.Provider,
		CoverageType:     req.CoverageType,
		CopayAmount:      req.CopayAmount,
		DeductibleAmount: req.Deductible,
		IsActive:         true,
	}

	if err := h.db.Create(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_create_insurance_plan", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "insurance_plan_created",
		Entity:   "insurance_plan",
		EntityID: &plan.ID,
	})

	httpresp.Created(c, plan)
}

func (h *InsurancePlanHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateInsurancePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var plan models.InsurancePlan
	if err := h.db.First(&plan, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "insurance_plan_not_found", "Insurance plan not found.")
		return
	}

	if req.PlanName != nil {
		plan.PlanName = *req.PlanName
	}
	if req.Provider != nil {
		plan.Provider = *req.Provider
	}
	if req.CoverageType != nil {
		plan.CoverageType = *req.CoverageType
	}
	if req.CopayAmount != nil {
		plan.CopayAmount = req.CopayAmount
	}
	if req.Deductible != nil {
		plan.DeductibleAmount = req.Deductible
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.db.Save(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_update_insurance_plan", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "insurance_plan_updated",
		Entity:   "insurance_plan",
		EntityID: &plan.ID,
	})

	httpresp.OK(c, plan)
}

func (h *InsurancePlanHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var plan models.InsurancePlan
	if err := h.db.First(&plan, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "insurance_plan_not_found", "Insurance plan not found.")
		return
	}

	if err := h.db.Delete(&plan).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_insurance_plan", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "insurance_plan_deleted",
		Entity:   "insurance_plan",
		EntityID: &plan.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Insurance plan deleted successfully."})
}

func (h *InsurancePlanHandler) ToggleStatus(c *gin.Context) {
	id := c.Param("id")

	var plan models.InsurancePlan
	if err := h.db.First(&plan, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "insurance_plan_not_found", "Insurance plan not found.")
		return
	}

	active := c.Query("is_active") == "true"

	if err := h.db.Model(&plan).Update("is_active", active).Error; err != nil {
		httperr.Internal(c, "failed_to_update_insurance_plan", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "insurance_plan_status_changed",
		Entity:   "insurance_plan",
		EntityID: &plan.ID,
		Metadata: gin.H{"is_active": active},
	})

	httpresp.OK(c, plan)
}
