package reservation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/handler"
	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/reservation"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type Handler struct {
	service reservation.Servicer
}

func NewHandler(service reservation.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/reservations", h.Create)
	r.GET("/reservations", h.List)
	r.GET("/reservations/:id", h.Get)
	r.PUT("/reservations/:id", h.Update)
	r.DELETE("/reservations/:id", h.Cancel)
}

type createRequest struct {
	DoctorID      uuid.UUID `json:"doctor_id" binding:"required"`
	WorkingHourID uuid.UUID `json:"working_hour_id" binding:"required"`
	Date          string    `json:"date" binding:"required,dateymd"`
	PatientName   string    `json:"patient_name" binding:"required"`
	PatientPhone  string    `json:"patient_phone"`
	MedicalStatus *string   `json:"medical_status"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateReservation(c.Request.Context(), &reservation.CreateInput{
		DoctorID:      req.DoctorID,
		WorkingHourID: req.WorkingHourID,
		Date:          req.Date,
		PatientName:   req.PatientName,
		PatientPhone:  req.PatientPhone,
		MedicalStatus: req.MedicalStatus,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

type updateRequest struct {
	WorkingHourID *uuid.UUID               `json:"working_hour_id"`
	Date          *string                  `json:"date"`
	Status        *model.ReservationStatus `json:"status"`
	Paid          *bool                    `json:"paid"`
	MedicalStatus *string                  `json:"medical_status"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid reservation id", err))
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdateReservation(c.Request.Context(), id, &reservation.UpdateInput{
		WorkingHourID: req.WorkingHourID,
		Date:          req.Date,
		Status:        req.Status,
		Paid:          req.Paid,
		MedicalStatus: req.MedicalStatus,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid reservation id", err))
		return
	}

	found, err := h.service.GetReservation(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.ReservationFilters{
		Date:   c.Query("date"),
		Status: model.ReservationStatus(c.Query("status")),
	}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			c.Error(apperrors.InvalidInput("invalid doctor id", err))
			return
		}
		filters.DoctorID = doctorID
	}

	if filters.Status != "" && !filters.Status.Valid() {
		c.Error(apperrors.InvalidInput("invalid status filter", nil))
		return
	}

	out, err := h.service.ListReservations(c.Request.Context(), filters)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid reservation id", err))
		return
	}

	if err := h.service.CancelReservation(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"cancelled": true}))
}
