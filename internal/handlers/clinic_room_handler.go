package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orthoflow/clinic-api/internal/audit"
	domain "github.com/orthoflow/clinic-api/internal/domain/appointment"
	"github.com/orthoflow/clinic-api/internal/httperr"
	"github.com/orthoflow/clinic-api/internal/httpresp"
	"github.com/orthoflow/clinic-api/internal/middleware"
	"github.com/orthoflow/clinic-api/internal/models"
)

type ClinicRoomHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewClinicRoomHandler(db *gorm.DB, dispatcher *audit.Dispatcher) *ClinicRoomHandler {
	return &ClinicRoomHandler{db: db, audit: dispatcher}
}

// --------- Requests ---------

type CreateClinicRoomRequest struct {
	RoomNumber string `json:"room_number" binding:"required"`
	RoomType   string `json:"room_type" binding:"required"`
	Capacity   string `json:"capacity" binding:"required"`
	Equipment  string `json:"equipment"`
}

type UpdateClinicRoomRequest struct {
	RoomNumber  *string `json:"room_number"`
	RoomType    *string `json:"room_type"`
	Capacity    *string `json:"capacity"`
	Equipment   *string `json:"equipment"`
	IsAvailable *bool   `json:"is_available"`
}

// --------- Handlers ---------

func (h *ClinicRoomHandler) List(c *gin.Context) {
	skip, limit := pagination(c)

	query := h.db.Model(&models.ClinicRoom{})

	if available := c.Query("is_available"); available != "" {
		query = query.Where("is_available = ?", available == "true")
	}

	var rooms []models.ClinicRoom
	if err := query.
		Order("room_number").
		Offset(skip).
		Limit(limit).
		Find(&rooms).Error; err != nil {
		httperr.Internal(c, "failed_to_list_rooms", "Unexpected error.")
		return
	}

	httpresp.List(c, rooms)
}

func (h *ClinicRoomHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var room models.ClinicRoom
	if err := h.db.First(&room, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Clinic room not found.")
		return
	}

	httpresp.OK(c, room)
}

func (h *ClinicRoomHandler) Create(c *gin.Context) {
	var req CreateClinicRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var count int64
	h.db.Model(&models.ClinicRoom{}).Where("room_number = ?", req.RoomNumber).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "room_number_already_registered", "A room with this number already exists.")
		return
	}

	room := models.ClinicRoom{
		RoomNumber:  req.RoomNumber,
		RoomType:    req.RoomType,
		Capacity:    req.Capacity,
		Equipment:   req.Equipment,
		IsAvailable: true,
	}

	if err := h.db.Create(&room).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			httperr.BadRequest(c, "room_number_already_registered", "A room with this number already exists.")
			return
		}
		httperr.Internal(c, "failed_to_create_room", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "room_created",
		Entity:   "clinic_room",
		EntityID: &room.ID,
	})

	httpresp.Created(c, room)
}

func (h *ClinicRoomHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req UpdateClinicRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var room models.ClinicRoom
	if err := h.db.First(&room, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Clinic room not found.")
		return
	}

	if req.RoomNumber != nil && *req.RoomNumber != room.RoomNumber {
		var count int64
		h.db.Model(&models.ClinicRoom{}).
			Where("room_number = ? AND id <> ?", *req.RoomNumber, room.ID).
			Count(&count)
		if count > 0 {
			httperr.BadRequest(c, "room_number_already_registered", "A room with this number already exists.")
			return
		}
		room.RoomNumber = *req.RoomNumber
	}

	if req.RoomType != nil {
		room.RoomType = *req.RoomType
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Equipment != nil {
		room.Equipment = *req.Equipment
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Save(&room).Error; err != nil {
		httperr.Internal(c, "failed_to_update_room", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "room_updated",
		Entity:   "clinic_room",
		EntityID: &room.ID,
	})

	httpresp.OK(c, room)
}

// Delete removes the room unless a scheduled or confirmed appointment still
// points at it.
func (h *ClinicRoomHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var room models.ClinicRoom
	if err := h.db.First(&room, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Clinic room not found.")
		return
	}

	var active int64
	h.db.Model(&models.Appointment{}).
		Where("room_id = ? AND status IN ?", room.ID, domain.ActiveStatuses()).
		Count(&active)
	if active > 0 {
		httperr.BadRequest(c, "room_in_use", "Cannot delete room with active appointments.")
		return
	}

	if err := h.db.Delete(&room).Error; err != nil {
		httperr.Internal(c, "failed_to_delete_room", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "room_deleted",
		Entity:   "clinic_room",
		EntityID: &room.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Clinic room deleted successfully."})
}

func (h *ClinicRoomHandler) ToggleAvailability(c *gin.Context) {
	id := c.Param("id")

	var room models.ClinicRoom
	if err := h.db.First(&room, "id = ?", id).Error; err != nil {
		httperr.NotFound(c, "room_not_found", "Clinic room not found.")
		return
	}

	available := c.Query("is_available") == "true"

	if err := h.db.Model(&room).Update("is_available", available).Error; err != nil {
		httperr.Internal(c, "failed_to_update_room", "Unexpected error.")
		return
	}

	userID := c.MustGet(middleware.ContextUserID).(string)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "room_availability_changed",
		Entity:   "clinic_room",
		EntityID: &room.ID,
		Metadata: gin.H{"is_available": available},
	})

	httpresp.OK(c, room)
}

// AvailableByDate lists available rooms on a date. With a time_slot query
// param, rooms already claimed by a scheduled or confirmed appointment at
// that slot are filtered out.
func (h *ClinicRoomHandler) AvailableByDate(c *gin.Context) {
	date := c.Param("date")

	query := h.db.Model(&models.ClinicRoom{}).Where("is_available = ?", true)

	if timeSlot := c.Query("time_slot"); timeSlot != "" {
		occupied := h.db.Model(&models.Appointment{}).
			Select("room_id").
			Where(
				"appointment_date = ? AND appointment_time = ? AND status IN ? AND room_id IS NOT NULL",
				date, timeSlot, domain.ActiveStatuses(),
			)
		query = query.Where("id NOT IN (?)", occupied)
	}

	var rooms []models.ClinicRoom
	if err := query.Order("room_number").Find(&rooms).Error; err != nil {
		httperr.Internal(c, "failed_to_list_rooms", "Unexpected error.")
		return
	}

	httpresp.List(c, rooms)
}
