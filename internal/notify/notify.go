// Package notify implements the org.freedesktop.Notifications service:
// bodies are passed through the markup defense layer and sound hints
// through the audio gatekeeper before a notification is delivered.
package notify

import (
	"time"

	"github.com/llehouerou/notifyd/internal/markup"
)

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyCritical:
		return "critical"
	default:
		return "normal"
	}
}

// CloseReason is sent with the NotificationClosed signal.
type CloseReason uint32

const (
	ReasonExpired   CloseReason = 1
	ReasonDismissed CloseReason = 2
	ReasonClosed    CloseReason = 3
	ReasonUndefined CloseReason = 4
)

// Notification is a received notification after ingestion.
type Notification struct {
	ID           uint32
	AppName      string
	DesktopEntry string
	Icon         string
	Summary      string
	Body         string // raw body as sent
	Content      Content
	Actions      []string
	Urgency      Urgency
	Timeout      time.Duration // 0 = never expires
	Received     time.Time
}

// Content is the display form of a body.
type Content struct {
	Rich      bool                   // body carried supported markup
	Segments  []markup.StyledSegment // styled runs for display
	PlainText string                 // accessible text, no markup
	Links     []markup.Link          // safe links, empty when links are disabled
}

// Message is an outgoing notification sent by Client.
type Message struct {
	AppName       string
	Summary       string
	Body          string
	Icon          string
	Timeout       int32 // ms, -1 = server default, 0 = never expire
	ReplacesID    uint32
	Urgency       Urgency
	SoundName     string
	SoundFile     string
	SuppressSound bool
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	Notify(m Message) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}
