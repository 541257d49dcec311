package models

import (
	"time"

	"github.com/google/uuid"
)

// LogType is the kind of entry in the activity log.
type LogType string

const (
	LogReceived   LogType = "received"
	LogDismissed  LogType = "dismissed"
	LogUrgent     LogType = "urgent"
	LogReply      LogType = "reply"
	LogSuppressed LogType = "suppressed"
	LogSnoozed    LogType = "snoozed"
	LogError      LogType = "error"
)

// NotificationLog is a persisted entry in the activity log. Unlike the
// in-memory history it survives restarts and is never capped by the engine.
type NotificationLog struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	NotificationID string    `gorm:"index" json:"notificationId,omitempty"`
	Type           LogType   `json:"type"`
	AppID          string    `gorm:"index" json:"appId,omitempty"`
	Title          string    `json:"title,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

// NewNotificationLog returns a log entry with a fresh ID and the current time.
func NewNotificationLog(typ LogType, notificationID string) *NotificationLog {
	return &NotificationLog{
		ID:             uuid.New().String(),
		NotificationID: notificationID,
		Type:           typ,
		Timestamp:      time.Now(),
	}
}

// Setting is a single persisted key/value preference. Values are JSON.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
}
