package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/backend"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Users(ctx context.Context) ([]domain.UserRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserRecord), args.Error(1)
}

func (m *MockBackend) DeleteUser(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBackend) RenameUser(ctx context.Context, oldName, newName string) error {
	args := m.Called(ctx, oldName, newName)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func TestDirectory_RefreshReplacesCache(t *testing.T) {
	b := new(MockBackend)
	b.On("Users", mock.Anything).Return([]domain.UserRecord{
		{Name: "alice"}, {Name: "bob"},
	}, nil)

	d := New(b, testLogger())
	require.NoError(t, d.Refresh(context.Background()))

	users := d.Users()
	require.Len(t, users, 2)

	alice, ok := d.Get("alice")
	require.True(t, ok)
	assert.Equal(t, "alice", alice.Name)

	_, ok = d.Get("carol")
	assert.False(t, ok)
}

func TestDirectory_MalformedResponseNormalizesToEmpty(t *testing.T) {
	b := new(MockBackend)
	b.On("Users", mock.Anything).Return(nil,
		fmt.Errorf("%w: users_full is not an array", backend.ErrInvalidResponse))

	d := New(b, testLogger())
	require.NoError(t, d.Refresh(context.Background()))
	assert.Empty(t, d.Users())
}

func TestDirectory_TransportFailureKeepsCache(t *testing.T) {
	b := new(MockBackend)
	b.On("Users", mock.Anything).Return([]domain.UserRecord{{Name: "alice"}}, nil).Once()
	b.On("Users", mock.Anything).Return(nil, backend.ErrUnavailable)

	d := New(b, testLogger())
	require.NoError(t, d.Refresh(context.Background()))

	err := d.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Len(t, d.Users(), 1, "cache untouched on transport failure")
}

func TestDirectory_DeleteRefreshesOnSuccess(t *testing.T) {
	b := new(MockBackend)
	b.On("DeleteUser", mock.Anything, "alice").Return(nil)
	b.On("Users", mock.Anything).Return([]domain.UserRecord{{Name: "bob"}}, nil)

	d := New(b, testLogger())
	require.NoError(t, d.Delete(context.Background(), "alice"))

	b.AssertNumberOfCalls(t, "Users", 1)
	assert.Len(t, d.Users(), 1)
}

func TestDirectory_DeleteFailureSkipsRefresh(t *testing.T) {
	b := new(MockBackend)
	b.On("DeleteUser", mock.Anything, "alice").Return(backend.ErrUnavailable)

	d := New(b, testLogger())
	err := d.Delete(context.Background(), "alice")

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	b.AssertNotCalled(t, "Users")
}

func TestDirectory_RenameCollisionIsAConflict(t *testing.T) {
	b := new(MockBackend)
	b.On("RenameUser", mock.Anything, "alice", "bob").
		Return(&backend.StatusError{StatusCode: 400, Message: "Name already exists or invalid"})

	d := New(b, testLogger())
	err := d.Rename(context.Background(), "alice", "bob")

	assert.ErrorIs(t, err, domain.ErrNameTaken)
	b.AssertNotCalled(t, "Users")
}

func TestDirectory_RenameRefreshesOnSuccess(t *testing.T) {
	b := new(MockBackend)
	b.On("RenameUser", mock.Anything, "alice", "alicia").Return(nil)
	b.On("Users", mock.Anything).Return([]domain.UserRecord{{Name: "alicia"}}, nil)

	d := New(b, testLogger())
	require.NoError(t, d.Rename(context.Background(), "alice", "alicia"))

	_, ok := d.Get("alicia")
	assert.True(t, ok)
}

func TestDirectory_EmptyNamesRejected(t *testing.T) {
	d := New(new(MockBackend), testLogger())

	assert.ErrorIs(t, d.Delete(context.Background(), ""), domain.ErrNameRequired)
	assert.ErrorIs(t, d.Rename(context.Background(), "", "x"), domain.ErrNameRequired)
	assert.ErrorIs(t, d.Rename(context.Background(), "x", ""), domain.ErrNameRequired)
}
