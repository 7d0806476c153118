package notify

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

const (
	TypeBriefing = "briefing"
	TypeAlert    = "alert"
)

// Notification is an in-app message produced by the sweep jobs (morning
// briefing, streak saver).
type Notification struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"index;not null"`
	Title     string    `gorm:"type:text;not null"`
	Content   string    `gorm:"type:text;not null;default:''"`
	Type      string    `gorm:"type:text;not null"`
	Link      string    `gorm:"type:text;not null;default:''"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

type Store struct {
	DB *gorm.DB
}

func (s *Store) Create(ctx context.Context, n *Notification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

func (s *Store) List(ctx context.Context, userID uint64, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *Store) MarkRead(ctx context.Context, userID, id uint64) error {
	res := s.DB.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
