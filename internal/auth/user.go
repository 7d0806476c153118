package auth

import "time"

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Plan         string    `gorm:"not null;default:'free'"`
	CreatedAt    time.Time `gorm:"not null"`
}
