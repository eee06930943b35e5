package domain

import "time"

type EventType string

const (
	EventAssigned  EventType = "assigned"
	EventSigned    EventType = "signed"
	EventRejected  EventType = "rejected"
	EventCompleted EventType = "completed"
	EventDeleted   EventType = "deleted"
)

type NotificationEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	DocumentID    string    `json:"documentId"`
	Position      int       `json:"position,omitempty"`
	ActorID       string    `json:"actorId,omitempty"`
	RealActorName string    `json:"realActorName,omitempty"`
	TargetUserIDs []string  `json:"targetUserIds"`
	CreatedAt     time.Time `json:"createdAt"`
}
