package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

// Notifier delivers a notification to a user. The trigger labels the event
// kind for metrics ("like", "comment", "follow", "block", "message").
type Notifier interface {
	Notify(ctx context.Context, userID uint, message, trigger string) error
	// NotifyTx persists the notification through an open transaction so the
	// row commits or rolls back together with the triggering write.
	NotifyTx(ctx context.Context, tx *gorm.DB, userID uint, message, trigger string) error
}

// notificationEvent is the payload published on the notifications channel.
type notificationEvent struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService handles notifications and the activity log.
type NotificationService struct {
	notifications repository.NotificationRepository
	activity      repository.ActivityRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications repository.NotificationRepository, activity repository.ActivityRepository) *NotificationService {
	return &NotificationService{notifications: notifications, activity: activity}
}

// Notify persists a notification row, then best-effort publishes the event
// on the Redis channel. Publish failures never fail the calling operation.
func (s *NotificationService) Notify(ctx context.Context, userID uint, message, trigger string) error {
	return s.deliver(ctx, s.notifications, userID, message, trigger)
}

// NotifyTx writes the notification row through tx. The Redis publish can
// precede the commit; a listener that wakes early re-reads and finds
// nothing, which at-least-once delivery tolerates.
func (s *NotificationService) NotifyTx(ctx context.Context, tx *gorm.DB, userID uint, message, trigger string) error {
	return s.deliver(ctx, repository.NewNotificationRepository(tx), userID, message, trigger)
}

func (s *NotificationService) deliver(ctx context.Context, notifications repository.NotificationRepository, userID uint, message, trigger string) error {
	notification := &models.Notification{
		UserID:  userID,
		Message: message,
	}
	if err := notifications.Create(ctx, notification); err != nil {
		return err
	}
	observability.NotificationsCreated.WithLabelValues(trigger).Inc()
	cache.InvalidateUnreadCount(ctx, userID)

	if client := cache.GetClient(); client != nil {
		event := notificationEvent{
			ID:        notification.ID,
			UserID:    notification.UserID,
			Message:   notification.Message,
			CreatedAt: notification.CreatedAt,
		}
		if payload, err := json.Marshal(event); err == nil {
			client.Publish(ctx, cache.NotificationChannel, payload)
		}
	}
	return nil
}

// MarkRead marks one of the caller's notifications as read. A notification
// that does not exist and one owned by someone else are indistinguishable.
func (s *NotificationService) MarkRead(ctx context.Context, id uint, userID uint) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", id)
	}
	cache.InvalidateUnreadCount(ctx, userID)
	return nil
}

// UnreadCount returns the number of unread notifications, consulting the
// Redis cache first.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	key := cache.UnreadCountKey(userID)
	if client := cache.GetClient(); client != nil {
		if raw, err := client.Get(ctx, key).Result(); err == nil {
			if count, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if client := cache.GetClient(); client != nil {
		client.Set(ctx, key, strconv.FormatInt(count, 10), cache.UnreadCountTTL)
	}
	return count, nil
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, limit, offset)
}

// LogActivity appends an entry to the user's activity log.
func (s *NotificationService) LogActivity(ctx context.Context, userID uint, action string) error {
	if action == "" {
		return models.NewValidationError("Action cannot be empty")
	}
	return s.activity.Create(ctx, &models.ActivityLog{UserID: userID, Action: action})
}

// LogActivityTx appends the entry through an open transaction.
func (s *NotificationService) LogActivityTx(ctx context.Context, tx *gorm.DB, userID uint, action string) error {
	if action == "" {
		return models.NewValidationError("Action cannot be empty")
	}
	return repository.NewActivityRepository(tx).Create(ctx, &models.ActivityLog{UserID: userID, Action: action})
}

// ListActivity returns the user's activity log, newest first.
func (s *NotificationService) ListActivity(ctx context.Context, userID uint, limit, offset int) ([]models.ActivityLog, error) {
	return s.activity.ListByUser(ctx, userID, limit, offset)
}
