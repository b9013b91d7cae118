package clinic

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/config"
	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/auth"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/security"
)

// Provisioner creates and prepares a tenant database. Satisfied by
// tenant.Registry.
type Provisioner interface {
	Provision(ctx context.Context, name string) error
}

type Servicer interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, email, password string) (*RegisterOutput, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
	List(ctx context.Context) ([]*model.Clinic, error)
	Directory(ctx context.Context, id uuid.UUID) (*model.DirectoryRecord, error)
}

type RegisterInput struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	AdminName     string `json:"admin_name" binding:"required"`
	AdminEmail    string `json:"admin_email" binding:"required,email"`
	AdminPassword string `json:"admin_password" binding:"required,min=8"`
}

type RegisterOutput struct {
	Clinic *model.Clinic `json:"clinic"`
	User   *model.User   `json:"user"`
	Token  string        `json:"token"`
}

// Service registers clinics and provisions their tenant databases.
// Provisioning happens exactly once, at registration; the database
// name is assigned to the directory record afterwards and never
// reassigned.
type Service struct {
	clinics     repository.ClinicRepository
	users       repository.UserRepository
	provisioner Provisioner
	tokens      *auth.TokenService
	cfg         config.TenantConfig
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewService(
	clinics repository.ClinicRepository,
	users repository.UserRepository,
	provisioner Provisioner,
	tokens *auth.TokenService,
	cfg config.TenantConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		clinics:     clinics,
		users:       users,
		provisioner: provisioner,
		tokens:      tokens,
		cfg:         cfg,
		logger:      log,
		metrics:     m,
	}
}

// Register creates the directory record, provisions the tenant
// database, assigns its name to the record, and creates the clinic's
// admin user with a signed token.
func (s *Service) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	if existing, err := s.users.GetByEmail(ctx, strings.ToLower(input.AdminEmail)); err == nil && existing != nil {
		return nil, apperrors.Conflict("email is already registered", nil)
	}

	clinic := &model.Clinic{
		Name:     strings.TrimSpace(input.Name),
		Phone:    input.Phone,
		IsActive: true,
	}
	if clinic.Name == "" {
		return nil, apperrors.InvalidInput("clinic name is required", nil)
	}
	if err := s.clinics.Create(ctx, clinic); err != nil {
		return nil, err
	}

	dbName := s.databaseName(clinic.ID)
	if err := s.provisioner.Provision(ctx, dbName); err != nil {
		// Leave the record behind but deactivated so the failure is
		// visible in the directory.
		if derr := s.clinics.SetActive(ctx, clinic.ID, false); derr != nil && s.logger != nil {
			s.logger.Error(derr, "deactivating clinic after failed provisioning",
				"clinic_id", clinic.ID.String())
		}
		return nil, err
	}

	if err := s.clinics.SetDatabaseName(ctx, clinic.ID, dbName); err != nil {
		return nil, err
	}
	clinic.DatabaseName = &dbName

	hash, err := security.HashPassword(input.AdminPassword)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	user := &model.User{
		ClinicID:     &clinic.ID,
		Email:        strings.ToLower(input.AdminEmail),
		Name:         input.AdminName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, clinic.ID.String())
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if s.logger != nil {
		s.logger.Info("clinic registered",
			"clinic_id", clinic.ID.String(), "database", dbName)
	}

	return &RegisterOutput{Clinic: clinic, User: user, Token: token}, nil
}

// Login authenticates a directory user and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*RegisterOutput, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("invalid credentials", nil)
		}
		return nil, err
	}
	if err := security.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, apperrors.InvalidInput("invalid credentials", nil)
	}

	var clinic *model.Clinic
	clinicID := ""
	if user.ClinicID != nil {
		clinicID = user.ClinicID.String()
		clinic, err = s.clinics.Get(ctx, *user.ClinicID)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.Generate(user.ID, user.Email, clinicID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &RegisterOutput{Clinic: clinic, User: user, Token: token}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	return s.clinics.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Clinic, error) {
	return s.clinics.List(ctx)
}

// Directory resolves a clinic to its routing record. Clinics without
// a provisioned database and deactivated clinics are unavailable.
func (s *Service) Directory(ctx context.Context, id uuid.UUID) (*model.DirectoryRecord, error) {
	clinic, err := s.clinics.Get(tenant.ClearDatabase(ctx), id)
	if err != nil {
		return nil, err
	}
	if clinic.DatabaseName == nil || !clinic.IsActive {
		return nil, apperrors.TenantUnavailable(
			fmt.Sprintf("clinic %s has no active tenant database", id), nil)
	}
	return &model.DirectoryRecord{
		ClinicID:     clinic.ID,
		DatabaseName: *clinic.DatabaseName,
		IsActive:     clinic.IsActive,
	}, nil
}

// databaseName derives the tenant database name from the configured
// prefix and the first uuid segment of the clinic id.
func (s *Service) databaseName(id uuid.UUID) string {
	prefix := s.cfg.DatabasePrefix
	if prefix == "" {
		prefix = "clinic_"
	}
	return prefix + strings.Split(id.String(), "-")[0]
}
