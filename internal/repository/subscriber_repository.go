package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"countdown/internal/model"
)

// SubscriberRepository keeps the chats that receive timer notifications.
type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// UpsertFromTelegram finds or creates a subscriber for chatID and refreshes profile info.
func (r *SubscriberRepository) UpsertFromTelegram(ctx context.Context, chatID int64, firstName, username string) (*model.Subscriber, error) {
	var sub model.Subscriber
	db := r.db.WithContext(ctx)
	err := db.Where("chat_id = ?", chatID).First(&sub).Error
	switch {
	case err == nil:
		if sub.FirstName == firstName && sub.Username == username {
			return &sub, nil
		}
		updates := map[string]interface{}{
			"first_name": firstName,
			"username":   username,
		}
		if err := db.Model(&sub).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update subscriber: %w", err)
		}
		return &sub, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = model.Subscriber{
			ChatID:    chatID,
			FirstName: firstName,
			Username:  username,
		}
		if err := db.Create(&sub).Error; err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}
		return &sub, nil
	default:
		return nil, fmt.Errorf("find subscriber: %w", err)
	}
}

// SetMuted toggles notifications for a chat.
func (r *SubscriberRepository) SetMuted(ctx context.Context, chatID int64, muted bool) error {
	res := r.db.WithContext(ctx).Model(&model.Subscriber{}).Where("chat_id = ?", chatID).Update("muted", muted)
	if res.Error != nil {
		return fmt.Errorf("mute subscriber: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SubscriberRepository) ListAll(ctx context.Context) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	if err := r.db.WithContext(ctx).Order("id").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
