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
	"github.com/orthoflow/clinic-api/internal/validators"
)

type DoctorHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewDoctorHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *DoctorHandler {
	return &DoctorHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateDoctorRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	LastName      string `json:"last_name" binding:"required"`
	Specialty     string `json:"specialty" binding:"required"`
	LicenseNumber string `json:"license_number" binding:"required"`
	Phone         string `json:"phone" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
}

type UpdateDoctorRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Specialty     *string `json:"specialty"`
	LicenseNumber *string `json:"license_number"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	IsActive      *bool   `json:"is_active"`
}

// --------- Handlers ---------

func (h *DoctorHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.Doctor{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR specialty ILIKE ?",
			like, like, like,
		)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var doctors []models.Doctor
	if err := query.
		Order("last_name, first_name").
		Offset(skip).
		Limit(limit).
		Find(&doctors).Error; err != nil {
		httperr.Internal(c, "failed_to_list_doctors", "Unexpected error.")
		return
	}

	httpresp.List(c, doctors)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var doctor models.Doctor
	if err := h.db.First(&doctor, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
		return
	}

	httpresp.OK(c, doctor)
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := validators.NormalizeEmail(req.Email)

	var count int64
	h.db.Model(&models.Doctor{}).Where("license_number = ?", req.LicenseNumber).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "license_already_registered", "A doctor with this license number already exists.")
		return
	}

	h.db.Model(&models.Doctor{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "email_already_registered", "A doctor with this email already exists.")
		return
	}

	doctor := models.Doctor{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		Phone:         req.Phone,
		Email:         email,
		IsActive:      true,
	}

	if err := h.db.Create(&doctor).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "doctor_already_registered", "License number or email already in use.")
			return
		}
		httperr.Internal(c, "failed_to_create_doctor", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "doctor_created",
		Entity:   "doctor",
		EntityID: &doctor.ID,
	})

	httpresp.Created(c, doctor)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var doctor models.Doctor
	if err := h.db.First(&doctor, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
		return
	}

	if req.LicenseNumber != nil && *req.LicenseNumber != doctor.LicenseNumber {
		var count int64
		h.db.Model(&models.Doctor{}).
			Where("license_number = ? AND id <> ?", *req.LicenseNumber, doctor.ID).
			Count(&count)
		if count > 0 {
			httperr.BadRequest(c, "license_already_registered", "A doctor with this license number already exists.")
			return
		}
		doctor.LicenseNumber = *req.LicenseNumber
	}

	if req.Email != nil {
		email := validators.NormalizeEmail(*req.Email)
		if email != doctor.Email {
			var count int64
			h.db.Model(&models.Doctor{}).
				Where("email = ? AND id <> ?", email, doctor.ID).
				Count(&count)
			if count > 0 {
				httperr.BadRequest(c, "email_already_registered", "A doctor with this email already exists.")
				return
			}
			doctor.Email = email
		}
	}

	if req.FirstName != nil {
		doctor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.db.Save(&doctor).Error; err != nil {
		httperr.Internal(c, "failed_to_update_doctor", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "doctor_updated",
		Entity:   "doctor",
		EntityID: &doctor.ID,
	})

	httpresp.OK(c, doctor)
}

// Delete deactivates the doctor instead of removing the row, so historical
// appointments keep their reference.
func (h *DoctorHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var doctor models.Doctor
	if err := h.db.First(&doctor, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
		return
	}

	if err := h.db.Model(&doctor).Update("is_active", false).Error; err != nil {
		httperr.Internal(c, "failed_to_deactivate_doctor", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "doctor_deactivated",
		Entity:   "doctor",
		EntityID: &doctor.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Doctor deactivated successfully."})
}

func (h *DoctorHandler) SearchByLicense(c *gin.Context) {
	license := c.Param("license")

	var doctor models.Doctor
	if err := h.db.Where("license_number = ?", license).First(&doctor).Error; err != nil {
		httperr.NotFound(c, "doctor_not_found", "Doctor not found.")
		return
	}

	httpresp.OK(c, doctor)
}

func (h *DoctorHandler) ListBySpecialty(c *gin.Context) {
	specialty := c.Param("specialty")

	var doctors []models.Doctor
	if err := h.db.
		Where("specialty ILIKE ? AND is_active = ?", "%"+specialty+"%", true).
		Order("last_name, first_name").
		Find(&doctors).Error; err != nil {
		httperr.Internal(c, "failed_to_list_doctors", "Unexpected error.")
		return
	}

	httpresp.List(c, doctors)
}
