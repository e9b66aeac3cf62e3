package ws

import (
	"time"
)

type EventType string

const (
	EventRecognition          EventType = "recognition.detected"
	EventRegistrationStatus   EventType = "registration.status"
	EventRegistrationFeedback EventType = "registration.feedback"
	EventUsersUpdated         EventType = "users.updated"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
