package handler

import (
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/directory"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/policy"
)

type UsersHandler struct {
	directory *directory.Directory
	editor    *policy.Editor

	// editMu serializes the whole open-mutate-save sequence; the editor
	// holds a single draft at a time.
	editMu sync.Mutex
}

func NewUsersHandler(dir *directory.Directory, editor *policy.Editor) *UsersHandler {
	return &UsersHandler{directory: dir, editor: editor}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.directory.Users())
}

type deleteUserRequest struct {
	Name string `json:"name"`
}

func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	var req deleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if err := h.directory.Delete(c.Context(), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

type renameUserRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func (h *UsersHandler) Rename(c *fiber.Ctx) error {
	var req renameUserRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if err := h.directory.Rename(c.Context(), req.OldName, req.NewName); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "renamed"})
}

type updateAccessRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  []int  `json:"days"`
	Role  string `json:"role"`
}

// UpdateAccess runs one full edit session: clone the user's current
// policy into a draft, apply the requested fields, save atomically. The
// cached list is only refreshed by the save path itself.
func (h *UsersHandler) UpdateAccess(c *fiber.Ctx) error {
	var req updateAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	for _, day := range req.Days {
		if day < 0 || day > 6 {
			return domain.ErrInvalidPolicy.WithError(fmt.Errorf("day index %d out of range", day))
		}
	}

	user, ok := h.directory.Get(req.Name)
	if !ok {
		return domain.ErrUserNotFound
	}

	h.editMu.Lock()
	defer h.editMu.Unlock()

	h.editor.Open(user)

	if err := h.editor.SetWindow(req.Start, req.End); err != nil {
		return err
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.editor.Cancel()
		return domain.ErrInvalidPolicy.WithError(err)
	}
	if err := h.editor.SetRole(role); err != nil {
		return err
	}

	// The draft starts from the user's current day set; toggle it into
	// the requested one.
	draft, _ := h.editor.Draft()
	want := make(domain.DaySet, len(req.Days))
	for _, day := range req.Days {
		want[day] = struct{}{}
	}
	for day := 0; day < 7; day++ {
		if draft.Policy.Days.Contains(day) != want.Contains(day) {
			if err := h.editor.ToggleDay(day); err != nil {
				return err
			}
		}
	}

	if err := h.editor.Save(c.Context()); err != nil {
		// The draft survives a failed save, but an HTTP edit session has
		// no retry dialog; drop it so the next request starts clean.
		h.editor.Cancel()
		return err
	}

	return c.JSON(fiber.Map{"status": "updated"})
}
