package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/handler"
	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/schedule"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type Handler struct {
	service schedule.Servicer
}

func NewHandler(service schedule.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/working-hours", h.SetWorkingHours)
	r.POST("/break-hours", h.SetBreakHours)
	r.POST("/doctors/:id/working-hours", h.SetDoctorWorkingHours)
	r.PUT("/doctor-working-hours/:id", h.UpdateDoctorWorkingHour)
	r.PATCH("/doctor-working-hours/:id/busy", h.SetDoctorHourBusy)
	r.GET("/doctors/:id/slots", h.AvailableSlots)
}

type hoursRequest struct {
	Day      model.Weekday     `json:"day" binding:"required"`
	BranchID *uuid.UUID        `json:"branch_id"`
	Ranges   []model.TimeRange `json:"ranges" binding:"required,min=1"`
	Replace  bool              `json:"replace"`
}

func (h *Handler) SetWorkingHours(c *gin.Context) {
	var req hoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if !req.Day.Valid() {
		c.Error(apperrors.InvalidInput("invalid weekday", nil))
		return
	}

	out, err := h.service.SetWorkingHours(c.Request.Context(), req.Day, req.BranchID, req.Ranges, req.Replace)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

func (h *Handler) SetBreakHours(c *gin.Context) {
	var req hoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if !req.Day.Valid() {
		c.Error(apperrors.InvalidInput("invalid weekday", nil))
		return
	}

	out, err := h.service.SetBreakHours(c.Request.Context(), req.Day, req.BranchID, req.Ranges, req.Replace)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

type doctorHoursRequest struct {
	Day             model.Weekday     `json:"day" binding:"required"`
	BranchID        *uuid.UUID        `json:"branch_id"`
	Waterfall       bool              `json:"waterfall"`
	SessionDuration string            `json:"session_duration"`
	PatientsLimit   int               `json:"patients_limit"`
	Fees            float64           `json:"fees"`
	ServiceIDs      []uuid.UUID       `json:"service_ids"`
	Ranges          []model.TimeRange `json:"ranges" binding:"required,min=1"`
}

func (h *Handler) SetDoctorWorkingHours(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid doctor id", err))
		return
	}

	var req doctorHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if !req.Day.Valid() {
		c.Error(apperrors.InvalidInput("invalid weekday", nil))
		return
	}

	out, err := h.service.SetDoctorWorkingHours(c.Request.Context(), &schedule.SetDoctorHoursInput{
		DoctorID:        doctorID,
		Day:             req.Day,
		BranchID:        req.BranchID,
		Waterfall:       req.Waterfall,
		SessionDuration: req.SessionDuration,
		PatientsLimit:   req.PatientsLimit,
		Fees:            req.Fees,
		ServiceIDs:      req.ServiceIDs,
		Ranges:          req.Ranges,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

type updateDoctorHourRequest struct {
	Day             model.Weekday `json:"day" binding:"required"`
	StartTime       string        `json:"start_time" binding:"required,timehhmmss"`
	EndTime         string        `json:"end_time" binding:"required,timehhmmss"`
	BranchID        *uuid.UUID    `json:"branch_id"`
	Waterfall       bool          `json:"waterfall"`
	SessionDuration *string       `json:"session_duration" binding:"omitempty,timehhmmss"`
	PatientsLimit   int           `json:"patients_limit"`
	Fees            float64       `json:"fees"`
	IsBusy          bool          `json:"is_busy"`
	IsActive        bool          `json:"is_active"`
}

func (h *Handler) UpdateDoctorWorkingHour(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid working hour id", err))
		return
	}

	var req updateDoctorHourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	hour := &model.DoctorWorkingHour{
		Day:             req.Day,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		BranchID:        req.BranchID,
		Waterfall:       req.Waterfall,
		SessionDuration: req.SessionDuration,
		PatientsLimit:   req.PatientsLimit,
		Fees:            req.Fees,
		IsBusy:          req.IsBusy,
		IsActive:        req.IsActive,
	}
	hour.ID = id

	out, err := h.service.UpdateDoctorWorkingHour(c.Request.Context(), hour)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

type busyRequest struct {
	IsBusy *bool `json:"is_busy" binding:"required"`
}

func (h *Handler) SetDoctorHourBusy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid working hour id", err))
		return
	}

	var req busyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.SetDoctorHourBusy(c.Request.Context(), id, *req.IsBusy); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": id, "is_busy": *req.IsBusy}))
}

// AvailableSlots lists the free units for one doctor on one date.
func (h *Handler) AvailableSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid doctor id", err))
		return
	}

	date := c.Query("date")
	if date == "" {
		c.Error(apperrors.InvalidInput("date query parameter is required", nil))
		return
	}

	out, err := h.service.AvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}
