// internal/notifications/models.go

package notifications

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType is a closed enum. Producers must use one of these
// constants; CreateNotification rejects anything else.
type NotificationType string

const (
	TypeInterestExpressed   NotificationType = "interest_expressed"
	TypeQuestionsProgress   NotificationType = "questions_progress"
	TypeQuestionsCompleted  NotificationType = "questions_completed"
	TypeInterestAccepted    NotificationType = "interest_accepted"
	TypeInterestRejected    NotificationType = "interest_rejected"
	TypeWaliContactUnlocked NotificationType = "wali_contact_unlocked"
	TypeSystem              NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case TypeInterestExpressed, TypeQuestionsProgress, TypeQuestionsCompleted,
		TypeInterestAccepted, TypeInterestRejected, TypeWaliContactUnlocked, TypeSystem:
		return true
	}
	return false
}

// NotificationData is the structured payload stored alongside a
// notification, persisted as JSONB
type NotificationData map[string]interface{}

func (d NotificationData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	return json.Marshal(d)
}

func (d *NotificationData) Scan(value interface{}) error {
	if value == nil {
		*d = make(NotificationData)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type for NotificationData: %T", value)
	}

	return json.Unmarshal(raw, d)
}

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	AccountID uuid.UUID        `db:"account_id" json:"account_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Data      NotificationData `db:"data" json:"data,omitempty"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	ReadAt    *time.Time       `db:"read_at" json:"read_at,omitempty"`
	ExpiresAt *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
}

// Typed payloads for each producer event. Each builds the Data map so
// payload keys stay consistent across producers.

type InterestExpressedPayload struct {
	InterestID         uuid.UUID `json:"interest_id"`
	RequesterProfileID uuid.UUID `json:"requester_profile_id"`
}

func (p InterestExpressedPayload) Data() NotificationData {
	return NotificationData{
		"interest_id":          p.InterestID.String(),
		"requester_profile_id": p.RequesterProfileID.String(),
	}
}

type QuestionsProgressPayload struct {
	InterestID       uuid.UUID `json:"interest_id"`
	UnlockPercentage int       `json:"unlock_percentage"`
}

func (p QuestionsProgressPayload) Data() NotificationData {
	return NotificationData{
		"interest_id":       p.InterestID.String(),
		"unlock_percentage": p.UnlockPercentage,
	}
}

type InterestEventPayload struct {
	InterestID uuid.UUID `json:"interest_id"`
}

func (p InterestEventPayload) Data() NotificationData {
	return NotificationData{
		"interest_id": p.InterestID.String(),
	}
}

// AccountContact carries the delivery addresses for the optional email
// and SMS channels
type AccountContact struct {
	Email string `db:"email"`
	Phone string `db:"phone"`
}

type NotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	TotalCount    int             `json:"total_count"`
	UnreadCount   int             `json:"unread_count"`
	HasMore       bool            `json:"has_more"`
}

type EmailMessage struct {
	To      string
	Subject string
	Body    string
}

type SMSMessage struct {
	To      string
	Message string
}
