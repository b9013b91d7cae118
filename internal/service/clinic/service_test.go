package clinic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedaminrashad/horizon-sub000/internal/config"
	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/auth"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/security"
)

type fakeClinics struct {
	rows map[uuid.UUID]*model.Clinic
}

func newFakeClinics() *fakeClinics {
	return &fakeClinics{rows: make(map[uuid.UUID]*model.Clinic)}
}

func (f *fakeClinics) Create(_ context.Context, c *model.Clinic) error {
	c.ID = uuid.New()
	clone := *c
	f.rows[c.ID] = &clone
	return nil
}

func (f *fakeClinics) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	c, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("clinic", nil)
	}
	clone := *c
	return &clone, nil
}

func (f *fakeClinics) List(_ context.Context) ([]*model.Clinic, error) {
	var out []*model.Clinic
	for _, c := range f.rows {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeClinics) SetDatabaseName(_ context.Context, id uuid.UUID, name string) error {
	c, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("clinic", nil)
	}
	if c.DatabaseName != nil {
		return apperrors.Conflict("clinic database is already assigned", nil)
	}
	c.DatabaseName = &name
	return nil
}

func (f *fakeClinics) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	c, ok := f.rows[id]
	if !ok {
		return apperrors.NotFound("clinic", nil)
	}
	c.IsActive = active
	return nil
}

type fakeUsers struct {
	rows map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: make(map[string]*model.User)}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	clone := *u
	f.rows[u.Email] = &clone
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.rows[email]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	clone := *u
	return &clone, nil
}

type fakeProvisioner struct {
	provisioned []string
	err         error
}

func (f *fakeProvisioner) Provision(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.provisioned = append(f.provisioned, name)
	return nil
}

func newTestService(prov *fakeProvisioner) (*Service, *fakeClinics, *fakeUsers) {
	clinics := newFakeClinics()
	users := newFakeUsers()
	tokens := auth.NewTokenService("test-secret", 1)
	cfg := config.TenantConfig{DatabasePrefix: "clinic_"}
	return NewService(clinics, users, prov, tokens, cfg, nil, nil), clinics, users
}

func registerInput() *RegisterInput {
	return &RegisterInput{
		Name:          "Horizon Dental",
		Phone:         "+201001234567",
		AdminName:     "Mona",
		AdminEmail:    "Mona@Example.com",
		AdminPassword: "s3cret-pass",
	}
}

func TestRegisterProvisionsOnce(t *testing.T) {
	prov := &fakeProvisioner{}
	svc, clinics, _ := newTestService(prov)

	out, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	require.Len(t, prov.provisioned, 1)
	dbName := prov.provisioned[0]
	assert.True(t, strings.HasPrefix(dbName, "clinic_"))

	stored := clinics.rows[out.Clinic.ID]
	require.NotNil(t, stored.DatabaseName)
	assert.Equal(t, dbName, *stored.DatabaseName)
	assert.True(t, stored.IsActive)

	assert.Equal(t, "mona@example.com", out.User.Email)
	assert.NoError(t, security.CheckPassword("s3cret-pass", out.User.PasswordHash))
	assert.NotEmpty(t, out.Token)

	claims, err := auth.NewTokenService("test-secret", 1).Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.Clinic.ID.String(), claims.ClinicID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(&fakeProvisioner{})
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestRegisterProvisionFailureDeactivatesClinic(t *testing.T) {
	prov := &fakeProvisioner{err: apperrors.TenantUnavailable("server is down", errors.New("dial refused"))}
	svc, clinics, _ := newTestService(prov)

	_, err := svc.Register(context.Background(), registerInput())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTenantUnavailable))

	require.Len(t, clinics.rows, 1)
	for _, c := range clinics.rows {
		assert.False(t, c.IsActive)
		assert.Nil(t, c.DatabaseName)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(&fakeProvisioner{})
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	out, err := svc.Login(ctx, "mona@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, out.User.ID)
	assert.NotEmpty(t, out.Token)

	_, err = svc.Login(ctx, "mona@example.com", "wrong-pass")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestDirectory(t *testing.T) {
	svc, clinics, _ := newTestService(&fakeProvisioner{})
	ctx := context.Background()

	out, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	record, err := svc.Directory(ctx, out.Clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Clinic.ID, record.ClinicID)
	assert.Equal(t, *out.Clinic.DatabaseName, record.DatabaseName)

	// Deactivated clinics do not route.
	require.NoError(t, clinics.SetActive(ctx, out.Clinic.ID, false))
	_, err = svc.Directory(ctx, out.Clinic.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTenantUnavailable))

	_, err = svc.Directory(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDirectoryWithoutDatabase(t *testing.T) {
	svc, clinics, _ := newTestService(&fakeProvisioner{})
	ctx := context.Background()

	clinic := &model.Clinic{Name: "Unprovisioned", IsActive: true}
	require.NoError(t, clinics.Create(ctx, clinic))

	_, err := svc.Directory(ctx, clinic.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTenantUnavailable))
}
