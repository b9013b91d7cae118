package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/handler"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/clinic"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/directory"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type Handler struct {
	clinics   clinic.Servicer
	directory directory.Servicer
}

func NewHandler(clinics clinic.Servicer, dir directory.Servicer) *Handler {
	return &Handler{clinics: clinics, directory: dir}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authenticated gin.IRouter) {
	r.POST("/clinics/register", h.Register)
	r.POST("/login", h.Login)

	authenticated.GET("/clinics", h.List)
	authenticated.GET("/clinics/:clinic_id", h.Get)
	authenticated.GET("/doctors/search", h.SearchDoctors)
}

func (h *Handler) Register(c *gin.Context) {
	var req clinic.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	out, err := h.clinics.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	out, err := h.clinics.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("clinic_id"))
	if err != nil {
		c.Error(apperrors.InvalidInput("invalid clinic id", err))
		return
	}

	out, err := h.clinics.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) List(c *gin.Context) {
	out, err := h.clinics.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

// SearchDoctors queries the cross-clinic mirror in the directory.
func (h *Handler) SearchDoctors(c *gin.Context) {
	out, err := h.directory.SearchDoctors(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}
