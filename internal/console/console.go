// Package console wires the live feed, the registration session, the
// policy editor and the user directory to the backend's REST API and push
// channel, and owns their shared lifecycle.
package console

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/vigia/internal/directory"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/feed"
	"github.com/saturnino-fabrica-de-software/vigia/internal/policy"
	"github.com/saturnino-fabrica-de-software/vigia/internal/push"
	"github.com/saturnino-fabrica-de-software/vigia/internal/registration"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

// Broadcaster forwards live state changes to attached dashboards.
type Broadcaster interface {
	Broadcast(eventType ws.EventType, data interface{})
}

// Snapshotter pulls the one-time event snapshot that seeds the feed.
type Snapshotter interface {
	Events(ctx context.Context) ([]domain.RecognitionEvent, error)
}

type Console struct {
	logger      *slog.Logger
	snapshotter Snapshotter
	dispatcher  *push.Dispatcher
	buffer      *feed.Buffer
	session     *registration.Session
	editor      *policy.Editor
	directory   *directory.Directory
	broadcaster Broadcaster

	subs []push.Subscription
}

func New(
	snapshotter Snapshotter,
	dispatcher *push.Dispatcher,
	buffer *feed.Buffer,
	session *registration.Session,
	editor *policy.Editor,
	dir *directory.Directory,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *Console {
	return &Console{
		logger:      logger,
		snapshotter: snapshotter,
		dispatcher:  dispatcher,
		buffer:      buffer,
		session:     session,
		editor:      editor,
		directory:   dir,
		broadcaster: broadcaster,
	}
}

// Start seeds the feed and the directory from REST, then attaches the
// push-channel subscriptions. Seed failures are degraded starts, not
// fatal: the console comes up empty and fills from the live channel.
func (c *Console) Start(ctx context.Context) {
	events, err := c.snapshotter.Events(ctx)
	if err != nil {
		c.logger.Warn("event snapshot fetch failed, starting with empty feed",
			slog.Any("error", err),
		)
	} else {
		c.buffer.Initialize(events)
		c.logger.Info("event feed seeded", slog.Int("events", len(events)))
	}

	if err := c.directory.Refresh(ctx); err != nil {
		c.logger.Warn("user directory seed failed, starting empty",
			slog.Any("error", err),
		)
	}

	c.subs = append(c.subs,
		c.dispatcher.Subscribe(push.MessageFaceEvent, c.onFaceEvent),
		c.dispatcher.Subscribe(push.MessageRegistrationStatus, c.onRegistrationStatus),
		c.dispatcher.Subscribe(push.MessageRegistrationFeedback, c.onRegistrationFeedback),
	)
}

// Close releases exactly the subscriptions Start took and cancels the
// session's pending timers. In-flight REST calls are left to finish and
// have their results discarded.
func (c *Console) Close() {
	for _, sub := range c.subs {
		c.dispatcher.Unsubscribe(sub)
	}
	c.subs = nil
	c.session.Close()
}

func (c *Console) onFaceEvent(msg push.Message) {
	var event domain.RecognitionEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logger.Debug("dropping malformed face event", slog.Any("error", err))
		return
	}

	c.buffer.Ingest(event)
	c.broadcaster.Broadcast(ws.EventRecognition, event)
}

func (c *Console) onRegistrationStatus(msg push.Message) {
	var status registration.StatusMessage
	if err := json.Unmarshal(msg.Data, &status); err != nil {
		c.logger.Debug("dropping malformed registration status", slog.Any("error", err))
		return
	}

	c.session.HandleStatus(status)
	c.broadcaster.Broadcast(ws.EventRegistrationStatus, c.session.State())

	// A successful enrollment changes the user list; re-pull it.
	if status.Status == "success" {
		if err := c.directory.Refresh(context.Background()); err == nil {
			c.broadcaster.Broadcast(ws.EventUsersUpdated, nil)
		}
	}
}

func (c *Console) onRegistrationFeedback(msg push.Message) {
	var feedback registration.FeedbackMessage
	if err := json.Unmarshal(msg.Data, &feedback); err != nil {
		c.logger.Debug("dropping malformed registration feedback", slog.Any("error", err))
		return
	}

	c.session.HandleFeedback(feedback)
	c.broadcaster.Broadcast(ws.EventRegistrationFeedback, c.session.State())
}
