package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// StreamHandler relays the backend's live camera stream. The media is
// opaque to the console: bytes in, bytes out, content type preserved.
type StreamHandler struct {
	streamURL string
	client    *http.Client
}

// NewStreamHandler proxies the given upstream stream URL. The client has
// no timeout because the upstream stream never ends on its own.
func NewStreamHandler(streamURL string) *StreamHandler {
	return &StreamHandler{
		streamURL: streamURL,
		client:    &http.Client{},
	}
}

func (h *StreamHandler) Live(c *fiber.Ctx) error {
	req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, h.streamURL, nil)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return domain.ErrBackendUnavailable.WithError(err)
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return domain.ErrBackendUnavailable
	}

	c.Set(fiber.HeaderContentType, resp.Header.Get(fiber.HeaderContentType))
	// SendStream closes resp.Body when the client goes away.
	return c.SendStream(resp.Body)
}
