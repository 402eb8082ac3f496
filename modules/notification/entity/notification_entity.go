package entity

import (
	"encoding/json"

	"baybook/core/entity"
)

type NotificationStatus string

const (
	NotificationQueued NotificationStatus = "queued"
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Notification is a stored record of an outbound message. Payload holds the
// template context as JSONB.
type Notification struct {
	Recipient string             `db:"recipient" json:"recipient"`
	Template  string             `db:"template" json:"template"`
	Payload   json.RawMessage    `db:"payload" json:"payload"`
	Status    NotificationStatus `db:"status" json:"status"`
	entity.BaseEntity
}
