package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/audit"
	domain "github.com/orthoflow/clinic-api/internal/domain/appointment"
	"github.com/orthoflow/clinic-api/internal/httperr"
	"github.com/orthoflow/clinic-api/internal/httpresp"
	"github.com/orthoflow/clinic-api/internal/metrics"
	"github.com/orthoflow/clinic-api/internal/middleware"
	"github.com/orthoflow/clinic-api/internal/models"
	ucappointment "github.com/orthoflow/clinic-api/internal/usecase/appointment"
)

type AppointmentHandler struct {
	db      *gorm.DB
	book    *ucappointment.BookAppointment
	update  *ucappointment.UpdateAppointment
	audit   *audit.Dispatcher
	metrics *metrics.Collector
}

func NewAppointmentHandler(
	db *gorm.DB,
	book *ucappointment.BookAppointment,
	update *ucappointment.UpdateAppointment,
	dispatcher *audit.Dispatcher,
	col *metrics.Collector,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:      db,
		book:    book,
		update:  update,
		audit:   dispatcher,
		metrics: col,
	}
}

// --------- Requests ---------

type CreateAppointmentRequest struct {
	PatientID         string `json:"patient_id" binding:"required"`
	DoctorID          string `json:"doctor_id" binding:"required"`
	RoomID            string `json:"room_id"`
	AppointmentTypeID string `json:"appointment_type_id" binding:"required"`
	AppointmentDate   string `json:"appointment_date" binding:"required"`
	AppointmentTime   string `json:"appointment_time" binding:"required"`
	Reason            string `json:"reason"`
	Notes             string `json:"notes"`
}

type UpdateAppointmentRequest struct {
	PatientID         *string `json:"patient_id"`
	DoctorID          *string `json:"doctor_id"`
	RoomID            *string `json:"room_id"`
	AppointmentTypeID *string `json:"appointment_type_id"`
	AppointmentDate   *string `json:"appointment_date"`
	AppointmentTime   *string `json:"appointment_time"`
	Status            *string `json:"status"`
	Reason            *string `json:"reason"`
	Notes             *string `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --------- Handlers ---------

func (h *AppointmentHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.Appointment{}).
		Preload("Patient").
		Preload("Doctor").
		Preload("Room").
		Preload("AppointmentType")

	if date := c.Query("date"); date != "" {
		query = query.Where("appointment_date = ?", date)
	}
	if doctorID := c.Query("doctor_id"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if patientID := c.Query("patient_id"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.
		Order("appointment_date, appointment_time").
		Offset(skip).
		Limit(limit).
		Find(&appointments).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Unexpected error.")
		return
	}

	httpresp.List(c, appointments)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	ap, err := h.fetch(id)
	if err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)

	var roomID *string
	if req.RoomID != "" {
		roomID = &req.RoomID
	}

	created, err := h.book.Execute(c.Request.Context(), ucappointment.BookAppointmentInput{
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		RoomID:            roomID,
		AppointmentTypeID: req.AppointmentTypeID,
		Date:              req.AppointmentDate,
		Time:              req.AppointmentTime,
		Reason:            req.Reason,
		Notes:             req.Notes,
		RequestedBy:       userID,
	})
	if err != nil {
		h.metrics.AppointmentsTotal.WithLabelValues("rejected").Inc()
		httperr.Respond(c, err)
		return
	}

	h.metrics.AppointmentsTotal.WithLabelValues("booked").Inc()

	ap, err := h.fetch(created.ID)
	if err != nil {
		httpresp.Created(c, created)
		return
	}

	httpresp.Created(c, ap)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)

	updated, err := h.update.Execute(c.Request.Context(), id, ucappointment.UpdateAppointmentInput{
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		RoomID:            req.RoomID,
		AppointmentTypeID: req.AppointmentTypeID,
		Date:              req.AppointmentDate,
		Time:              req.AppointmentTime,
		Status:            req.Status,
		Reason:            req.Reason,
		Notes:             req.Notes,
		RequestedBy:       userID,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	// Re-fetch so the response carries associations consistent with the
	// fields that just changed.
	ap, err := h.fetch(updated.ID)
	if err != nil {
		httpresp.OK(c, updated)
		return
	}

	httpresp.OK(c, ap)
}

// Cancel releases the slot by marking the appointment cancelled; the row is
// kept for history.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id := c.Param("id")

	var ap models.Appointment
	if err := h.db.First(&ap, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	if err := h.db.
		Model(&ap).
		Update("status", string(domain.StatusCancelled)).Error; err != nil {
		httperr.Internal(c, "failed_to_cancel_appointment", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	h.metrics.AppointmentsTotal.WithLabelValues("cancelled").Inc()

	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully."})
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if !domain.Status(req.Status).IsValid() {
		httperr.BadRequest(c, "invalid_status", "Unknown appointment status.")
		return
	}

	var ap models.Appointment
	if err := h.db.First(&ap, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}

	// Reviving a cancelled appointment into an occupied slot trips the
	// partial unique index.
	if err := h.db.Model(&ap).Update("status", req.Status).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.Conflict(c, "time_conflict", "Time slot already booked.")
			return
		}
		httperr.Internal(c, "failed_to_update_status", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_status_changed",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: gin.H{"status": req.Status},
	})

	full, err := h.fetch(ap.ID)
	if err != nil {
		httpresp.OK(c, ap)
		return
	}

	httpresp.OK(c, full)
}

// DoctorAppointmentsByDate lists a doctor's appointments on one day, ordered
// by time.
func (h *AppointmentHandler) DoctorAppointmentsByDate(c *gin.Context) {
	doctorID := c.Param("doctorId")
	date := c.Param("date")

	var appointments []models.Appointment
	if err := h.db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Room").
		Preload("AppointmentType").
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date).
		Order("appointment_time").
		Find(&appointments).Error; err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Unexpected error.")
		return
	}

	httpresp.List(c, appointments)
}

func (h *AppointmentHandler) fetch(id string) (*models.Appointment, error) {
	var ap models.Appointment
	err := h.db.
		Preload("Patient").
		Preload("Doctor").
		Preload("Room").
		Preload("AppointmentType").
		First(&ap, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ap, nil
}
