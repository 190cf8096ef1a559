package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
	"github.com/mmdatafocus/pos_backend/utils"
)

type Notification struct {
	ID          int              `gorm:"primary_key" json:"id"`
	Type        NotificationType `gorm:"size:50;not null;index" json:"type"`
	Message     string           `gorm:"size:500;not null" json:"message"`
	ReferenceId int              `gorm:"default:0" json:"reference_id"`
	IsRead      *bool            `gorm:"not null;default:false" json:"is_read"`
	Timestamp   time.Time        `gorm:"not null;index" json:"timestamp"`
}

type NewNotification struct {
	Type        NotificationType `json:"type" binding:"required"`
	Message     string           `json:"message" binding:"required,max=500"`
	ReferenceId int              `json:"reference_id"`
}

// CreateNotification persists the notification, then publishes it.
// Publishing is best-effort and only logged on failure.
func CreateNotification(ctx context.Context, input *NewNotification) (*Notification, error) {
	if input.Type == "" || input.Message == "" {
		return nil, utils.Errorf(utils.ErrInvalidInput, "type and message are required")
	}
	notification := Notification{
		Type:        input.Type,
		Message:     input.Message,
		ReferenceId: input.ReferenceId,
		IsRead:      utils.NewFalse(),
		Timestamp:   time.Now().UTC(),
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, err
	}
	publishNotification(ctx, &notification)
	return &notification, nil
}

func publishNotification(ctx context.Context, n *Notification) {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	_, err := config.PublishNotification(ctx, config.NotificationMessage{
		ID:            n.ID,
		Type:          string(n.Type),
		Message:       n.Message,
		ReferenceId:   n.ReferenceId,
		Timestamp:     n.Timestamp,
		CorrelationId: correlationId,
	})
	if err != nil && !errors.Is(err, config.ErrPubSubDisabled) {
		config.LogError(config.GetLogger(), "Notification", "publishNotification", "failed to publish", n.ID, err)
	}
}

func ListNotifications(ctx context.Context, unreadOnly bool, skip int, limit int) ([]*Notification, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Notification{})
	if unreadOnly {
		dbCtx = dbCtx.Where("is_read = ?", false)
	}
	var results []*Notification
	if err := dbCtx.Scopes(utils.Paginate(skip, limit)).Order("timestamp DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func MarkNotificationRead(ctx context.Context, id int) (*Notification, error) {
	notification, err := utils.FetchModel[Notification](ctx, id, utils.ErrorRecordNotFound)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(notification).Update("IsRead", true).Error; err != nil {
		return nil, err
	}
	notification.IsRead = utils.NewTrue()
	return notification, nil
}
