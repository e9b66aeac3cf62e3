package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/registration"
)

type RegisterHandler struct {
	session *registration.Session
}

func NewRegisterHandler(session *registration.Session) *RegisterHandler {
	return &RegisterHandler{session: session}
}

type registerRequest struct {
	Name string `json:"name"`
}

// Start kicks off a registration. The response only acknowledges the
// start; progress and the outcome arrive over the dashboard websocket.
func (h *RegisterHandler) Start(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.session.Start(c.Context(), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "Registration started", "name": req.Name})
}

// Update re-captures the face of a user the backend already knows. It
// shares the session with Start, so only one capture runs at a time.
func (h *RegisterHandler) Update(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.session.StartRecapture(c.Context(), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "Update started", "name": req.Name})
}

func (h *RegisterHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.session.State())
}

// Acknowledge dismisses a failure that required the operator's attention.
func (h *RegisterHandler) Acknowledge(c *fiber.Ctx) error {
	h.session.Acknowledge()
	return c.JSON(h.session.State())
}
