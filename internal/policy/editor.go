// Package policy implements the staged edit of one user's access policy.
// The draft is local state; the backend copy only changes on an explicit,
// all-fields-at-once save.
package policy

import (
	"context"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Saver sends the full draft to the backend as one atomic update.
type Saver interface {
	UpdateAccess(ctx context.Context, name, start, end, days string, role domain.Role) error
}

// Refresher re-pulls the authoritative user list after a successful save.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Draft is the working copy of one user's policy.
type Draft struct {
	Name   string
	Policy domain.AccessPolicy
}

// Editor holds at most one open draft. Opening a new draft discards any
// previous one; concurrent edit sessions are not a thing the console
// supports.
type Editor struct {
	saver     Saver
	refresher Refresher
	logger    *slog.Logger

	mu    sync.Mutex
	draft *Draft
}

// NewEditor creates an editor with no open draft.
func NewEditor(saver Saver, refresher Refresher, logger *slog.Logger) *Editor {
	return &Editor{
		saver:     saver,
		refresher: refresher,
		logger:    logger,
	}
}

// Open starts an edit session for the user, cloning its current policy
// (with backend defaults for unset fields) into a fresh draft.
func (e *Editor) Open(user domain.UserRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	policy := user.Policy()
	policy.Days = policy.Days.Clone()
	e.draft = &Draft{
		Name:   user.Name,
		Policy: policy,
	}
}

// SetWindow replaces the draft's time window.
func (e *Editor) SetWindow(start, end string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return domain.ErrNoOpenDraft
	}
	e.draft.Policy.Start = start
	e.draft.Policy.End = end
	return nil
}

// ToggleDay flips one weekday in the draft's allowed set.
func (e *Editor) ToggleDay(day int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return domain.ErrNoOpenDraft
	}
	e.draft.Policy.Days.Toggle(day)
	return nil
}

// SetRole replaces the draft's role.
func (e *Editor) SetRole(role domain.Role) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return domain.ErrNoOpenDraft
	}
	e.draft.Policy.Role = role
	return nil
}

// Cancel discards the draft without touching the backend.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = nil
}

// Draft returns a copy of the open draft, if any.
func (e *Editor) Draft() (Draft, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		return Draft{}, false
	}
	out := *e.draft
	out.Policy.Days = out.Policy.Days.Clone()
	return out, true
}

// Save validates the draft and sends it to the backend in one call. On
// success the authoritative user list is re-pulled and the draft is
// discarded; the console never promotes its own draft to truth. On
// failure the draft stays open untouched so the operator can retry or
// cancel.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.draft == nil {
		e.mu.Unlock()
		return domain.ErrNoOpenDraft
	}
	current := e.draft
	snapshot := *current
	snapshot.Policy.Days = snapshot.Policy.Days.Clone()
	e.mu.Unlock()

	if err := snapshot.Policy.Validate(); err != nil {
		return domain.ErrInvalidPolicy.WithError(err)
	}

	err := e.saver.UpdateAccess(ctx,
		snapshot.Name,
		snapshot.Policy.Start,
		snapshot.Policy.End,
		snapshot.Policy.Days.String(),
		snapshot.Policy.Role,
	)
	if err != nil {
		return err
	}

	if err := e.refresher.Refresh(ctx); err != nil {
		// The save went through; a stale list self-heals on the next pull.
		e.logger.Warn("user list refresh after policy save failed",
			slog.String("name", snapshot.Name),
			slog.Any("error", err),
		)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Only discard the session the save belonged to; a draft opened
	// meanwhile stays.
	if e.draft == current {
		e.draft = nil
	}
	return nil
}
