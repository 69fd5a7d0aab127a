// internal/notifications/repository.go

package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListNotifications(ctx context.Context, accountID uuid.UUID, limit, offset int, unreadOnly bool) ([]*Notification, error)
	CountNotifications(ctx context.Context, accountID uuid.UUID, unreadOnly bool) (int, error)
	MarkAsRead(ctx context.Context, id, accountID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error
	DeleteNotification(ctx context.Context, id, accountID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	GetAccountContact(ctx context.Context, accountID uuid.UUID) (*AccountContact, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateNotification(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, account_id, type, title, message, data, is_read, expires_at)
		VALUES (:id, :account_id, :type, :title, :message, :data, :is_read, :expires_at)
		RETURNING created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&n.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan created_at: %w", err)
		}
	}

	return nil
}

func (r *postgresRepository) GetNotification(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	query := `SELECT * FROM notifications WHERE id = $1`

	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

func (r *postgresRepository) ListNotifications(ctx context.Context, accountID uuid.UUID, limit, offset int, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE account_id = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	notifications := []*Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, accountID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

func (r *postgresRepository) CountNotifications(ctx context.Context, accountID uuid.UUID, unreadOnly bool) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE account_id = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, accountID); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

func (r *postgresRepository) MarkAsRead(ctx context.Context, id, accountID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id = $1 AND account_id = $2 AND is_read = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Doesn't exist, belongs to someone else, or is already read
		var exists bool
		check := `SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1 AND account_id = $2)`
		if err := r.db.GetContext(ctx, &exists, check, id, accountID); err != nil {
			return fmt.Errorf("failed to check notification: %w", err)
		}
		if !exists {
			return ErrNotificationNotFound
		}
	}

	return nil
}

func (r *postgresRepository) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE account_id = $1 AND is_read = FALSE`

	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	return nil
}

func (r *postgresRepository) DeleteNotification(ctx context.Context, id, accountID uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND account_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}

	return result.RowsAffected()
}

func (r *postgresRepository) GetAccountContact(ctx context.Context, accountID uuid.UUID) (*AccountContact, error) {
	var contact AccountContact
	query := `SELECT COALESCE(email, '') AS email, COALESCE(phone, '') AS phone FROM accounts WHERE id = $1`

	if err := r.db.GetContext(ctx, &contact, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account contact: %w", err)
	}

	return &contact, nil
}
