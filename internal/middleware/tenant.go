package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/clinic"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
)

const (
	HeaderXClinicID = "X-Clinic-ID"
	ContextClinicID = "clinic_id"
)

// TenantMiddleware routes each request to its clinic's database. The
// clinic hint is read from the route parameter or the X-Clinic-ID
// header, resolved through the directory (with a short-lived cache),
// and set on the request context before any other layer runs. On the
// way out the tenant is cleared unconditionally so nothing downstream
// of the request can observe a stale tenant.
type TenantMiddleware struct {
	clinics   clinic.Servicer
	directory *gocache.Cache
	logger    *logger.Logger
}

func NewTenantMiddleware(clinics clinic.Servicer, ttl time.Duration, log *logger.Logger) *TenantMiddleware {
	return &TenantMiddleware{
		clinics:   clinics,
		directory: gocache.New(ttl, 2*ttl),
		logger:    log,
	}
}

// Resolve activates the tenant for routes carrying a clinic hint.
// Requests without a hint proceed against the central database.
func (m *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		hint := c.Param("clinic_id")
		if hint == "" {
			hint = c.GetHeader(HeaderXClinicID)
		}
		if hint == "" {
			c.Next()
			return
		}

		clinicID, err := uuid.Parse(hint)
		if err != nil {
			abortWithError(c, apperrors.InvalidInput(fmt.Sprintf("invalid clinic id %q", hint), err))
			return
		}

		record, err := m.lookup(c, clinicID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ctx := tenant.WithDatabase(c.Request.Context(), record.DatabaseName)
		ctx = tenant.WithClinicID(ctx, record.ClinicID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(ContextClinicID, record.ClinicID.String())

		defer func() {
			c.Request = c.Request.WithContext(tenant.ClearDatabase(c.Request.Context()))
		}()
		c.Next()
	}
}

// RequireTenant rejects requests that reached a tenant-scoped route
// without an active tenant.
func (m *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tenant.DatabaseFromContext(c.Request.Context()) == "" {
			abortWithError(c, apperrors.InvalidInput("a clinic id is required on this route", nil))
			return
		}
		c.Next()
	}
}

func (m *TenantMiddleware) lookup(c *gin.Context, clinicID uuid.UUID) (*model.DirectoryRecord, error) {
	key := clinicID.String()
	if cached, ok := m.directory.Get(key); ok {
		return cached.(*model.DirectoryRecord), nil
	}

	record, err := m.clinics.Directory(c.Request.Context(), clinicID)
	if err != nil {
		return nil, err
	}
	m.directory.SetDefault(key, record)
	return record, nil
}

func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode()
		message = appErr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}
