package handlers

import (
	"errors"
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

type PatientHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewPatientHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *PatientHandler {
	return &PatientHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreatePatientRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	CPF         string `json:"cpf" binding:"required"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email"`
	Address     string `json:"address" binding:"required"`

	EmergencyContact string `json:"emergency_contact" binding:"required"`
	EmergencyPhone   string `json:"emergency_phone" binding:"required"`

	MedicalHistory string `json:"medical_history"`
	Allergies      string `json:"allergies"`

	InsurancePlanID *string `json:"insurance_plan_id"`
	InsuranceNumber string  `json:"insurance_number"`
}

type UpdatePatientRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`

	EmergencyContact *string `json:"emergency_contact"`
	EmergencyPhone   *string `json:"emergency_phone"`

	MedicalHistory *string `json:"medical_history"`
	Allergies      *string `json:"allergies"`

	InsurancePlanID *string `json:"insurance_plan_id"`
	InsuranceNumber *string `json:"insurance_number"`
}

// --------- Handlers ---------

func (h *PatientHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.Patient{}).Preload("InsurancePlan")

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		if digits := validators.NormalizeCPF(search); digits != "" {
			query = query.Where(
				"first_name ILIKE ? OR last_name ILIKE ? OR cpf LIKE ?",
				like, like, "%"+digits+"%",
			)
		} else {
			query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", like, like)
		}
	}

	var patients []models.Patient
	if err := query.
		Order("last_name, first_name").
		Offset(skip).
		Limit(limit).
		Find(&patients).Error; err != nil {
		httperr.Internal(c, "failed_to_list_patients", "Unexpected error.")
		return
	}

	httpresp.List(c, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var patient models.Patient
	if err := h.db.Preload("InsurancePlan").First(&patient, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "patient_not_found", "Patient not found.")
		return
	}

	httpresp.OK(c, patient)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	cpf := validators.NormalizeCPF(req.CPF)
	if !validators.IsValidCPF(cpf) {
		httperr.BadRequest(c, "invalid_cpf", "CPF is not valid.")
		return
	}

	var count int64
	h.db.Model(&models.Patient{}).Where("cpf = ?", cpf).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "cpf_already_registered", "A patient with this CPF already exists.")
		return
	}

	if req.InsurancePlanID != nil && *req.InsurancePlanID != "" {
		var plan models.InsurancePlan
		if err := h.db.First(&plan, "id = ?", *req.InsurancePlanID).Error; err != nil {
			httperr.NotFound(c, "insurance_plan_not_found", "Insurance plan not found.")
			return
		}
	} else {
		req.InsurancePlanID = nil
	}

	patient := models.Patient{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		CPF:              cpf,
		DateOfBirth:      req.DateOfBirth,
		Phone:            req.Phone,
		Email:            validators.NormalizeEmail(req.Email),
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		MedicalHistory:   req.MedicalHistory,
		Allergies:        req.Allergies,
		InsurancePlanID:  req.InsurancePlanID,
		InsuranceNumber:  req.InsuranceNumber,
	}

	if err := h.db.Create(&patient).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "cpf_already_registered", "A patient with this CPF already exists.")
			return
		}
		httperr.Internal(c, "failed_to_create_patient", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "patient_created",
		Entity:   "patient",
		EntityID: &patient.ID,
	})

	httpresp.Created(c, patient)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var patient models.Patient
	if err := h.db.First(&patient, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "patient_not_found", "Patient not found.")
		return
	}

	if req.InsurancePlanID != nil && *req.InsurancePlanID != "" {
		var plan models.InsurancePlan
		if err := h.db.First(&plan, "id = ?", *req.InsurancePlanID).Error; err != nil {
			httperr.NotFound(c, "insurance_plan_not_found", "Insurance plan not found.")
			return
		}
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = validators.NormalizeEmail(*req.Email)
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.EmergencyPhone != nil {
		patient.EmergencyPhone = *req.EmergencyPhone
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}
	if req.Allergies != nil {
		patient.Allergies = *req.Allergies
	}
	if req.InsurancePlanID != nil {
		if *req.InsurancePlanID == "" {
			patient.InsurancePlanID = nil
		} else {
			patient.InsurancePlanID = req.InsurancePlanID
		}
	}
	if req.InsuranceNumber != nil {
		patient.InsuranceNumber = *req.InsuranceNumber
	}

	if err := h.db.Save(&patient).Error; err != nil {
		httperr.Internal(c, "failed_to_update_patient", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "patient_updated",
		Entity:   "patient",
		EntityID: &patient.ID,
	})

	httpresp.OK(c, patient)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var patient models.Patient
	if err := h.db.First(&patient, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "patient_not_found", "Patient not found.")
		return
	}

	if err := h.db.Delete(&patient).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_patient", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "patient_deleted",
		Entity:   "patient",
		EntityID: &patient.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully."})
}

func (h *PatientHandler) SearchByCPF(c *gin.Context) {
	cpf := validators.NormalizeCPF(c.Param("cpf"))

	var patient models.Patient
	if err := h.db.Preload("InsurancePlan").Where("cpf = ?", cpf).First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "patient_not_found", "Patient not found.")
			return
		}
		httperr.Internal(c, "internal_error", "Unexpected error.")
		return
	}

	httpresp.OK(c, patient)
}
