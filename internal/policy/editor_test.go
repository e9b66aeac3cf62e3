package policy

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) UpdateAccess(ctx context.Context, name, start, end, days string, role domain.Role) error {
	args := m.Called(ctx, name, start, end, days, role)
	return args.Error(0)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func newEditor(saver *MockSaver, refresher *MockRefresher) *Editor {
	return NewEditor(saver, refresher, testLogger())
}

func TestEditor_OpenAppliesDefaults(t *testing.T) {
	e := newEditor(new(MockSaver), new(MockRefresher))

	e.Open(domain.UserRecord{Name: "alice"})

	draft, ok := e.Draft()
	require.True(t, ok)
	assert.Equal(t, "alice", draft.Name)
	assert.Equal(t, "00:00", draft.Policy.Start)
	assert.Equal(t, "23:59", draft.Policy.End)
	assert.Equal(t, domain.RoleUser, draft.Policy.Role)
	assert.Len(t, draft.Policy.Days, 7)
}

func TestEditor_ToggleDayIsSymmetric(t *testing.T) {
	e := newEditor(new(MockSaver), new(MockRefresher))
	e.Open(domain.UserRecord{Name: "alice"})

	before, _ := e.Draft()

	require.NoError(t, e.ToggleDay(2))
	mid, _ := e.Draft()
	assert.False(t, mid.Policy.Days.Contains(2))

	require.NoError(t, e.ToggleDay(2))
	after, _ := e.Draft()
	assert.Equal(t, before.Policy.Days.String(), after.Policy.Days.String())
}

func TestEditor_MutationsWithoutDraft(t *testing.T) {
	e := newEditor(new(MockSaver), new(MockRefresher))

	assert.ErrorIs(t, e.SetWindow("08:00", "18:00"), domain.ErrNoOpenDraft)
	assert.ErrorIs(t, e.ToggleDay(2), domain.ErrNoOpenDraft)
	assert.ErrorIs(t, e.SetRole(domain.RoleVIP), domain.ErrNoOpenDraft)
	assert.ErrorIs(t, e.Save(context.Background()), domain.ErrNoOpenDraft)
}

func TestEditor_OpenReplacesPreviousDraft(t *testing.T) {
	e := newEditor(new(MockSaver), new(MockRefresher))

	e.Open(domain.UserRecord{Name: "alice"})
	require.NoError(t, e.SetRole(domain.RoleVIP))

	e.Open(domain.UserRecord{Name: "bob"})

	draft, ok := e.Draft()
	require.True(t, ok)
	assert.Equal(t, "bob", draft.Name)
	assert.Equal(t, domain.RoleUser, draft.Policy.Role)
}

func TestEditor_CancelDiscardsWithoutServerCall(t *testing.T) {
	saver := new(MockSaver)
	e := newEditor(saver, new(MockRefresher))

	e.Open(domain.UserRecord{Name: "alice"})
	e.Cancel()

	_, ok := e.Draft()
	assert.False(t, ok)
	saver.AssertNotCalled(t, "UpdateAccess")
}

func TestEditor_SaveSendsFullDraftAndRefreshes(t *testing.T) {
	saver := new(MockSaver)
	refresher := new(MockRefresher)
	saver.On("UpdateAccess", mock.Anything, "alice", "08:00", "18:00", "1,3,5", domain.RoleVIP).Return(nil)
	refresher.On("Refresh", mock.Anything).Return(nil)

	e := newEditor(saver, refresher)
	e.Open(domain.UserRecord{Name: "alice", AllowedDays: "1,3,5"})
	require.NoError(t, e.SetWindow("08:00", "18:00"))
	require.NoError(t, e.SetRole(domain.RoleVIP))

	require.NoError(t, e.Save(context.Background()))

	_, ok := e.Draft()
	assert.False(t, ok, "draft discarded after successful save")
	saver.AssertExpectations(t)
	refresher.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestEditor_SaveFailureKeepsDraftAndSkipsRefresh(t *testing.T) {
	saver := new(MockSaver)
	refresher := new(MockRefresher)
	saver.On("UpdateAccess", mock.Anything, "alice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrUserNotFound)

	e := newEditor(saver, refresher)
	e.Open(domain.UserRecord{Name: "alice"})
	require.NoError(t, e.SetRole(domain.RoleBlocklisted))

	err := e.Save(context.Background())
	require.Error(t, err)

	draft, ok := e.Draft()
	require.True(t, ok, "draft retained on failure")
	assert.Equal(t, domain.RoleBlocklisted, draft.Policy.Role)
	refresher.AssertNotCalled(t, "Refresh")
}

func TestEditor_SaveRejectsInvalidDraft(t *testing.T) {
	saver := new(MockSaver)
	e := newEditor(saver, new(MockRefresher))

	e.Open(domain.UserRecord{Name: "alice"})
	require.NoError(t, e.SetWindow("late", "18:00"))

	err := e.Save(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
	saver.AssertNotCalled(t, "UpdateAccess")

	_, ok := e.Draft()
	assert.True(t, ok, "invalid draft stays open for correction")
}

func TestEditor_SaveSucceedsEvenIfRefreshFails(t *testing.T) {
	saver := new(MockSaver)
	refresher := new(MockRefresher)
	saver.On("UpdateAccess", mock.Anything, "alice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	refresher.On("Refresh", mock.Anything).Return(assert.AnError)

	e := newEditor(saver, refresher)
	e.Open(domain.UserRecord{Name: "alice"})

	require.NoError(t, e.Save(context.Background()))

	_, ok := e.Draft()
	assert.False(t, ok)
}
