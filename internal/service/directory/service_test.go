package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type fakeDoctors struct {
	mu           sync.Mutex
	rows         map[uuid.UUID]*model.Doctor
	getErr       error
	incrementErr error
}

func newFakeDoctors() *fakeDoctors {
	return &fakeDoctors{rows: make(map[uuid.UUID]*model.Doctor)}
}

func (f *fakeDoctors) Create(_ context.Context, d *model.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	clone := *d
	f.rows[d.ID] = &clone
	return nil
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.rows[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	clone := *d
	return &clone, nil
}

func (f *fakeDoctors) Update(_ context.Context, d *model.Doctor) error { return nil }

func (f *fakeDoctors) List(_ context.Context) ([]*model.Doctor, error) { return nil, nil }

func (f *fakeDoctors) IncrementPatients(_ context.Context, id uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return f.incrementErr
	}
	if d, ok := f.rows[id]; ok {
		d.PatientsCount += delta
	}
	return nil
}

type fakeMirrors struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*model.DoctorMirror
	upsertErr error
}

func newFakeMirrors() *fakeMirrors {
	return &fakeMirrors{rows: make(map[uuid.UUID]*model.DoctorMirror)}
}

func (f *fakeMirrors) Upsert(ctx context.Context, m *model.DoctorMirror) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	// The mirror lives centrally: a leaked tenant means the write went
	// to the wrong database.
	if tenant.DatabaseFromContext(ctx) != "" {
		return errors.New("mirror write attempted inside a tenant database")
	}
	clone := *m
	f.rows[m.DoctorID] = &clone
	return nil
}

func (f *fakeMirrors) IncrementPatients(_ context.Context, doctorID uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.rows[doctorID]; ok {
		m.PatientsCount += delta
	}
	return nil
}

func (f *fakeMirrors) Search(_ context.Context, query string) ([]*model.DoctorMirror, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.DoctorMirror
	for _, m := range f.rows {
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

type fakeBroker struct {
	mu         sync.Mutex
	published  []string
	publishErr error
}

func (f *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

func tenantCtx(clinicID uuid.UUID) context.Context {
	ctx := tenant.WithDatabase(context.Background(), "clinic_test")
	return tenant.WithClinicID(ctx, clinicID)
}

func TestSyncAdmissionRefreshesCounterAndMirror(t *testing.T) {
	doctors := newFakeDoctors()
	mirrors := newFakeMirrors()
	broker := &fakeBroker{}
	svc := NewService(doctors, mirrors, broker, nil, nil)

	clinicID := uuid.New()
	doctor := &model.Doctor{Name: "Dr. Salma", Specialty: "cardiology", PatientsCount: 4}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	svc.SyncAdmission(tenantCtx(clinicID), doctor.ID)

	got, err := doctors.Get(context.Background(), doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.PatientsCount)

	mirror := mirrors.rows[doctor.ID]
	require.NotNil(t, mirror)
	assert.Equal(t, clinicID, mirror.ClinicID)
	assert.Equal(t, 5, mirror.PatientsCount)
	assert.Equal(t, "Dr. Salma", mirror.Name)

	assert.Equal(t, []string{"doctor.synced", "reservation.created"}, broker.published)
}

func TestSyncAdmissionSwallowsCounterFailure(t *testing.T) {
	doctors := newFakeDoctors()
	doctors.incrementErr = errors.New("tenant database is down")
	mirrors := newFakeMirrors()
	svc := NewService(doctors, mirrors, &fakeBroker{}, nil, nil)

	doctor := &model.Doctor{Name: "Dr. Salma"}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	// Must not panic or propagate anything.
	svc.SyncAdmission(tenantCtx(uuid.New()), doctor.ID)

	// The mirror refresh still ran despite the earlier failure.
	assert.NotNil(t, mirrors.rows[doctor.ID])
}

func TestSyncAdmissionSwallowsMirrorFailure(t *testing.T) {
	doctors := newFakeDoctors()
	mirrors := newFakeMirrors()
	mirrors.upsertErr = errors.New("directory is down")
	broker := &fakeBroker{}
	svc := NewService(doctors, mirrors, broker, nil, nil)

	doctor := &model.Doctor{Name: "Dr. Salma"}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	svc.SyncAdmission(tenantCtx(uuid.New()), doctor.ID)

	// The event still went out.
	assert.Equal(t, []string{"reservation.created"}, broker.published)
}

func TestSyncAdmissionSwallowsBrokerFailure(t *testing.T) {
	doctors := newFakeDoctors()
	mirrors := newFakeMirrors()
	broker := &fakeBroker{publishErr: errors.New("redis is down")}
	svc := NewService(doctors, mirrors, broker, nil, nil)

	doctor := &model.Doctor{Name: "Dr. Salma"}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	svc.SyncAdmission(tenantCtx(uuid.New()), doctor.ID)
}

func TestMirrorDoctorSkippedWithoutClinic(t *testing.T) {
	doctors := newFakeDoctors()
	mirrors := newFakeMirrors()
	svc := NewService(doctors, mirrors, &fakeBroker{}, nil, nil)

	doctor := &model.Doctor{Name: "Dr. Salma"}
	require.NoError(t, doctors.Create(context.Background(), doctor))

	svc.MirrorDoctor(context.Background(), doctor)

	assert.Empty(t, mirrors.rows)
}

func TestSearchDoctorsClearsTenant(t *testing.T) {
	doctors := newFakeDoctors()
	mirrors := newFakeMirrors()
	svc := NewService(doctors, mirrors, &fakeBroker{}, nil, nil)

	clinicID := uuid.New()
	doctor := &model.Doctor{Name: "Dr. Salma", Specialty: "cardiology"}
	require.NoError(t, doctors.Create(context.Background(), doctor))
	svc.MirrorDoctor(tenantCtx(clinicID), doctor)

	results, err := svc.SearchDoctors(tenantCtx(clinicID), "salma")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, clinicID, results[0].ClinicID)
}
