package models

import (
	"time"

	"github.com/google/uuid"
)

type Investment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID int64     `gorm:"not null;index"`
	UserID     uuid.UUID `gorm:"not null;index"`
	Amount     float64   `gorm:"not null"`
	Shares     int       `gorm:"not null"`
	CreatedAt  time.Time

	User     User     `gorm:"foreignKey:UserID"`
	Property Property `gorm:"foreignKey:PropertyID"`
}
