package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saturnino-fabrica-de-software/vigia/internal/push"
)

// StreamConfig holds the configuration for the push-channel reader.
type StreamConfig struct {
	URL        string
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// DefaultStreamConfig returns a StreamConfig with sensible defaults
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		URL:        "ws://localhost:5001/ws",
		MinBackoff: time.Second,
		MaxBackoff: 30 * time.Second,
	}
}

// envelope is the wire shape of one push-channel message.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Stream maintains the websocket connection to the backend's push channel
// and feeds decoded messages into the dispatcher. The connection is
// process-wide; components fan in through the dispatcher, never through
// their own sockets.
type Stream struct {
	config     StreamConfig
	dispatcher *push.Dispatcher
	logger     *slog.Logger
	dialer     *websocket.Dialer
}

// NewStream creates a push-channel reader.
func NewStream(config StreamConfig, dispatcher *push.Dispatcher, logger *slog.Logger) *Stream {
	return &Stream{
		config:     config,
		dispatcher: dispatcher,
		logger:     logger,
		dialer:     websocket.DefaultDialer,
	}
}

// Run connects, reads until the connection drops, and reconnects with
// doubling backoff until the context is canceled.
func (s *Stream) Run(ctx context.Context) {
	backoff := s.config.MinBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := s.dialer.DialContext(ctx, s.config.URL, nil)
		if err != nil {
			s.logger.Warn("push channel dial failed",
				slog.String("url", s.config.URL),
				slog.Any("error", err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > s.config.MaxBackoff {
				backoff = s.config.MaxBackoff
			}
			continue
		}

		s.logger.Info("push channel connected", slog.String("url", s.config.URL))
		backoff = s.config.MinBackoff

		s.readLoop(ctx, conn)
	}
}

// readLoop drains one connection. It returns when the connection drops or
// the context is canceled.
func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer func() {
		_ = conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("push channel read failed", slog.Any("error", err))
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.logger.Debug("dropping malformed push message", slog.Any("error", err))
			continue
		}
		if env.Type == "" {
			s.logger.Debug("dropping push message without type")
			continue
		}

		// Unknown types pass through; with no subscriber they are a no-op.
		s.dispatcher.Publish(push.Message{
			Type: push.MessageType(env.Type),
			Data: env.Data,
		})
	}
}
