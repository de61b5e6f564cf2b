package employees

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/comptoir-backend/internal/activity"
	"github.com/angelmondragon/comptoir-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/store/storetest"
)

type fakeReserved struct {
	codes map[string]bool
	err   error
}

func (f fakeReserved) ReservedCodes(context.Context) (map[string]bool, error) {
	return f.codes, f.err
}

var fixedNow = time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, reserved ReservedCodes) (Service, activity.Service) {
	t.Helper()
	s := storetest.NewStore(t)
	act, err := activity.NewService(activity.NewRepository(s), func() time.Time { return fixedNow })
	require.NoError(t, err)
	if reserved == nil {
		reserved = fakeReserved{codes: map[string]bool{"123456": true}}
	}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(s),
		Reserved: reserved,
		Activity: act,
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, act
}

func TestCreateEmployee(t *testing.T) {
	ctx := context.Background()
	svc, act := newTestService(t, nil)

	employee, err := svc.Create(ctx, "patron", CreateEmployeeInput{Name: "  Awa ", Code: "654321", WorkMode: enums.ModeSnackbar})
	require.NoError(t, err)
	assert.NotEmpty(t, employee.ID)
	assert.Equal(t, "Awa", employee.Name)
	assert.Equal(t, enums.ModeSnackbar, employee.WorkMode)
	assert.Equal(t, "patron", employee.CreatedBy)
	assert.True(t, employee.CreatedAt.Equal(fixedNow))

	logs, err := act.List(ctx, activity.ListParams{})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, activity.ActionEmployeeAdd, logs.Items[0].Action)
	assert.Equal(t, `Serveuse "Awa" ajoutée avec le code 654321 (Snackbar - Soirée)`, logs.Items[0].Details)
}

func TestCreateDefaultsWorkModeToBar(t *testing.T) {
	svc, _ := newTestService(t, nil)
	employee, err := svc.Create(context.Background(), "gerante1", CreateEmployeeInput{Name: "Nadia", Code: "000777"})
	require.NoError(t, err)
	assert.Equal(t, enums.ModeBar, employee.WorkMode)
}

func TestCreateRejectsBadCodes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	for _, code := range []string{"12345", "1234567", "12a456", ""} {
		_, err := svc.Create(ctx, "patron", CreateEmployeeInput{Name: "Awa", Code: code})
		assert.True(t, errors.Is(err, ErrInvalidCodeFormat), "code %q", code)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	}
}

func TestCreateRejectsDuplicateCodes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	_, err := svc.Create(ctx, "patron", CreateEmployeeInput{Name: "Awa", Code: "654321"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "patron", CreateEmployeeInput{Name: "Nadia", Code: "654321"})
	assert.True(t, errors.Is(err, ErrDuplicateEmployeeCode))

	_, err = svc.Create(ctx, "patron", CreateEmployeeInput{Name: "Nadia", Code: "123456"})
	assert.True(t, errors.Is(err, ErrDuplicateEmployeeCode))
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.Create(context.Background(), "patron", CreateEmployeeInput{Name: "   ", Code: "654321"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateSurfacesReservedCodeFailure(t *testing.T) {
	svc, _ := newTestService(t, fakeReserved{err: pkgerrors.New(pkgerrors.CodeDependency, "load access codes")})
	_, err := svc.Create(context.Background(), "patron", CreateEmployeeInput{Name: "Awa", Code: "654321"})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestDeleteEmployee(t *testing.T) {
	ctx := context.Background()
	svc, act := newTestService(t, nil)

	employee, err := svc.Create(ctx, "patron", CreateEmployeeInput{Name: "Awa", Code: "654321"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "gerante2", employee.ID))

	_, err = svc.Get(ctx, employee.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	err = svc.Delete(ctx, "gerante2", employee.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	logs, err := act.List(ctx, activity.ListParams{Role: "gerante2"})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, `Serveuse "Awa" supprimée`, logs.Items[0].Details)

	inUse, err := svc.CodeInUse(ctx, "654321")
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestEmployeeActivityFiltersByID(t *testing.T) {
	ctx := context.Background()
	svc, act := newTestService(t, nil)

	employee, err := svc.Create(ctx, "patron", CreateEmployeeInput{Name: "Awa", Code: "654321"})
	require.NoError(t, err)
	require.NoError(t, act.Record(ctx, employee.ID, activity.ActionLogin, ""))
	require.NoError(t, act.Record(ctx, employee.ID, activity.ActionNavigation, "Accès à la section tables"))
	require.NoError(t, act.Record(ctx, "patron", activity.ActionNavigation, "Accès à la section stock"))

	result, err := svc.Activity(ctx, employee.ID, activity.ListParams{Role: "patron"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	for _, entry := range result.Items {
		assert.Equal(t, employee.ID, entry.Role)
	}

	_, err = svc.Activity(ctx, "ghost", activity.ListParams{})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}
