// internal/notifications/service.go

package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidType          = errors.New("invalid notification type")
)

type Service interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotifications(ctx context.Context, accountID uuid.UUID, limit, offset int, unreadOnly bool) (*NotificationsResponse, error)
	MarkAsRead(ctx context.Context, notificationID, accountID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error
	DeleteNotification(ctx context.Context, notificationID, accountID uuid.UUID) error
	GetUnreadCount(ctx context.Context, accountID uuid.UUID) (int, error)
	CleanupExpired(ctx context.Context) error
}

// EmailProvider delivers the optional email copy of a notification
type EmailProvider interface {
	SendEmail(ctx context.Context, msg *EmailMessage) error
}

// SMSProvider delivers the optional SMS copy of a notification
type SMSProvider interface {
	SendSMS(ctx context.Context, msg *SMSMessage) error
}

type service struct {
	repo   Repository
	email  EmailProvider // nil disables the channel
	sms    SMSProvider   // nil disables the channel
	expiry time.Duration
}

func NewService(repo Repository, email EmailProvider, sms SMSProvider, expiry time.Duration) Service {
	return &service{
		repo:   repo,
		email:  email,
		sms:    sms,
		expiry: expiry,
	}
}

// CreateNotification stores the in-app notification, then fans out to the
// enabled channels. Channel delivery is best-effort and asynchronous; only
// the store failure is reported to the caller.
func (s *service) CreateNotification(ctx context.Context, n *Notification) error {
	if !n.Type.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidType, n.Type)
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.ExpiresAt == nil && s.expiry > 0 {
		expires := time.Now().Add(s.expiry)
		n.ExpiresAt = &expires
	}

	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}

	recordCreated(n.Type)

	if s.email != nil {
		go s.sendEmailCopy(n)
	}
	if s.sms != nil {
		go s.sendSMSCopy(n)
	}

	return nil
}

func (s *service) GetNotifications(ctx context.Context, accountID uuid.UUID, limit, offset int, unreadOnly bool) (*NotificationsResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	notifications, err := s.repo.ListNotifications(ctx, accountID, limit, offset, unreadOnly)
	if err != nil {
		return nil, err
	}

	totalCount, err := s.repo.CountNotifications(ctx, accountID, false)
	if err != nil {
		totalCount = len(notifications)
	}

	unreadCount, err := s.repo.CountNotifications(ctx, accountID, true)
	if err != nil {
		unreadCount = 0
	}

	return &NotificationsResponse{
		Notifications: notifications,
		TotalCount:    totalCount,
		UnreadCount:   unreadCount,
		HasMore:       offset+len(notifications) < totalCount,
	}, nil
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, accountID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, accountID)
}

func (s *service) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

func (s *service) DeleteNotification(ctx context.Context, notificationID, accountID uuid.UUID) error {
	return s.repo.DeleteNotification(ctx, notificationID, accountID)
}

func (s *service) GetUnreadCount(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.repo.CountNotifications(ctx, accountID, true)
}

func (s *service) CleanupExpired(ctx context.Context) error {
	deleted, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("notifications: cleaned up %d expired notifications", deleted)
	}
	return nil
}

// Channel fan-out. Runs detached from the request; uses its own context so
// delivery is not cancelled when the originating request completes.

func (s *service) sendEmailCopy(n *Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contact, err := s.repo.GetAccountContact(ctx, n.AccountID)
	if err != nil || contact.Email == "" {
		return
	}

	msg := &EmailMessage{
		To:      contact.Email,
		Subject: n.Title,
		Body:    n.Message,
	}
	if err := s.email.SendEmail(ctx, msg); err != nil {
		log.Printf("notifications: email delivery failed: %v", err)
	}
}

func (s *service) sendSMSCopy(n *Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	contact, err := s.repo.GetAccountContact(ctx, n.AccountID)
	if err != nil || contact.Phone == "" {
		return
	}

	msg := &SMSMessage{
		To:      contact.Phone,
		Message: fmt.Sprintf("%s: %s", n.Title, n.Message),
	}
	if err := s.sms.SendSMS(ctx, msg); err != nil {
		log.Printf("notifications: sms delivery failed: %v", err)
	}
}
