package doctor

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/directory"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type Servicer interface {
	CreateDoctor(ctx context.Context, doctor *model.Doctor) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, doctor *model.Doctor) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
	CreateBranch(ctx context.Context, branch *model.Branch) (*model.Branch, error)
	ListBranches(ctx context.Context) ([]*model.Branch, error)
}

// Service manages doctors and branches inside the active tenant. Every
// doctor write is mirrored into the central directory best-effort.
type Service struct {
	doctors  repository.DoctorRepository
	branches repository.BranchRepository
	mirror   directory.Servicer
}

func NewService(doctors repository.DoctorRepository, branches repository.BranchRepository, mirror directory.Servicer) *Service {
	return &Service{doctors: doctors, branches: branches, mirror: mirror}
}

func (s *Service) CreateDoctor(ctx context.Context, doctor *model.Doctor) (*model.Doctor, error) {
	doctor.Name = strings.TrimSpace(doctor.Name)
	if doctor.Name == "" {
		return nil, apperrors.InvalidInput("doctor name is required", nil)
	}
	doctor.IsActive = true

	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, err
	}
	if s.mirror != nil {
		s.mirror.MirrorDoctor(ctx, doctor)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.doctors.Get(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, doctor *model.Doctor) (*model.Doctor, error) {
	existing, err := s.doctors.Get(ctx, doctor.ID)
	if err != nil {
		return nil, err
	}

	if doctor.Name = strings.TrimSpace(doctor.Name); doctor.Name == "" {
		doctor.Name = existing.Name
	}
	doctor.PatientsCount = existing.PatientsCount

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, err
	}
	if s.mirror != nil {
		s.mirror.MirrorDoctor(ctx, doctor)
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) CreateBranch(ctx context.Context, branch *model.Branch) (*model.Branch, error) {
	branch.Name = strings.TrimSpace(branch.Name)
	if branch.Name == "" {
		return nil, apperrors.InvalidInput("branch name is required", nil)
	}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *Service) ListBranches(ctx context.Context) ([]*model.Branch, error) {
	return s.branches.List(ctx)
}
