package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/handler"
	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/doctor"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type Handler struct {
	service doctor.Servicer
}

func NewHandler(service doctor.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the doctor and branch endpoints on a
// tenant-scoped group.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/doctors", h.CreateDoctor)
	r.GET("/doctors", h.ListDoctors)
	r.GET("/doctors/:id", h.GetDoctor)
	r.PUT("/doctors/:id", h.UpdateDoctor)

	r.POST("/branches", h.CreateBranch)
	r.GET("/branches", h.ListBranches)
}

type doctorRequest struct {
	Name      string  `json:"name" binding:"required"`
	Specialty string  `json:"specialty"`
	Phone     string  `json:"phone"`
	Fees      float64 `json:"fees" binding:"gte=0"`
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req doctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateDoctor(c.Request.Context(), &model.Doctor{
		Name:      req.Name,
		Specialty: req.Specialty,
		Phone:     req.Phone,
		Fees:      req.Fees,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid doctor id", err))
		return
	}

	found, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid doctor id", err))
		return
	}

	var req doctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated := &model.Doctor{
		Name:      req.Name,
		Specialty: req.Specialty,
		Phone:     req.Phone,
		Fees:      req.Fees,
		IsActive:  true,
	}
	updated.ID = id

	out, err := h.service.UpdateDoctor(c.Request.Context(), updated)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	out, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

type branchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

func (h *Handler) CreateBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreateBranch(c.Request.Context(), &model.Branch{
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListBranches(c *gin.Context) {
	out, err := h.service.ListBranches(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}
