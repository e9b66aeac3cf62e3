// Package directory caches the backend's user list. The backend owns the
// records; the console never patches its cache — every mutating call is
// followed by a wholesale re-pull.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/vigia/internal/backend"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Backend is the slice of the REST client the directory needs.
type Backend interface {
	Users(ctx context.Context) ([]domain.UserRecord, error)
	DeleteUser(ctx context.Context, name string) error
	RenameUser(ctx context.Context, oldName, newName string) error
}

// Directory is the read-only cached user list.
type Directory struct {
	backend Backend
	logger  *slog.Logger

	mu    sync.RWMutex
	users []domain.UserRecord
}

// New creates an empty directory.
func New(b Backend, logger *slog.Logger) *Directory {
	return &Directory{
		backend: b,
		logger:  logger,
	}
}

// Refresh replaces the cached list with the backend's. A malformed
// response (non-array) is normalized to an empty list rather than
// propagated; transport failures leave the cache untouched and are
// returned to the caller.
func (d *Directory) Refresh(ctx context.Context) error {
	users, err := d.backend.Users(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidResponse) {
			d.logger.Warn("backend sent malformed user list, treating as empty",
				slog.Any("error", err),
			)
			d.replace(nil)
			return nil
		}
		d.logger.Warn("user list refresh failed", slog.Any("error", err))
		return domain.ErrBackendUnavailable.WithError(err)
	}

	d.replace(users)
	return nil
}

// Users returns a copy of the cached list.
func (d *Directory) Users() []domain.UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.UserRecord, len(d.users))
	copy(out, d.users)
	return out
}

// Get looks up one user by name.
func (d *Directory) Get(name string) (domain.UserRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.Name == name {
			return u, true
		}
	}
	return domain.UserRecord{}, false
}

// Delete removes a user on the backend and re-pulls the list on success.
func (d *Directory) Delete(ctx context.Context, name string) error {
	if name == "" {
		return domain.ErrNameRequired
	}
	if err := d.backend.DeleteUser(ctx, name); err != nil {
		if backend.IsClientError(err) {
			return domain.ErrUserNotFound.WithError(err)
		}
		return domain.ErrBackendUnavailable.WithError(err)
	}
	return d.Refresh(ctx)
}

// Rename renames a user on the backend and re-pulls the list on success.
// A colliding target name surfaces as a conflict.
func (d *Directory) Rename(ctx context.Context, oldName, newName string) error {
	if oldName == "" || newName == "" {
		return domain.ErrNameRequired
	}
	if err := d.backend.RenameUser(ctx, oldName, newName); err != nil {
		if backend.IsClientError(err) {
			return domain.ErrNameTaken.WithError(err)
		}
		return domain.ErrBackendUnavailable.WithError(err)
	}
	return d.Refresh(ctx)
}

func (d *Directory) replace(users []domain.UserRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = users
}
