package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	clinichandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/clinic"
	doctorhandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/doctor"
	healthhandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/health"
	reservationhandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/reservation"
	schedulehandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/schedule"
	"github.com/ahmedaminrashad/horizon-sub000/internal/middleware"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
)

type Handlers struct {
	Health      *healthhandler.Handler
	Clinic      *clinichandler.Handler
	Doctor      *doctorhandler.Handler
	Schedule    *schedulehandler.Handler
	Reservation *reservationhandler.Handler
}

type Middleware struct {
	Tenant *middleware.TenantMiddleware
	Auth   *middleware.AuthMiddleware
}

// New assembles the HTTP surface. Tenant resolution runs before
// authentication so every later layer, including auth failures, is
// logged against the routed clinic.
func New(h *Handlers, mw *Middleware, log *logger.Logger) *gin.Engine {
	middleware.RegisterValidations()

	r := gin.New()

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Every(time.Second / 50),
		Burst: 100,
	})

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(limiter.RateLimit())
	r.Use(middleware.ErrorHandler(log))

	h.Health.RegisterRoutes(r)

	api := r.Group("/api/v1")

	authenticated := api.Group("")
	authenticated.Use(mw.Auth.Authenticate())

	h.Clinic.RegisterRoutes(api, authenticated)

	// Tenant-scoped routes: the clinic id in the path activates the
	// tenant database for the request.
	clinicScoped := api.Group("/clinics/:clinic_id",
		mw.Tenant.Resolve(),
		mw.Tenant.RequireTenant(),
		mw.Auth.Authenticate(),
		mw.Auth.RequireClinic(),
	)
	h.Doctor.RegisterRoutes(clinicScoped)
	h.Schedule.RegisterRoutes(clinicScoped)
	h.Reservation.RegisterRoutes(clinicScoped)

	return r
}
