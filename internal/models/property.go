package models

import (
	"time"

	"github.com/google/uuid"
)

// Property is a fractional-ownership listing. Shares are sold at SharePrice
// until AvailableShares reaches zero.
type Property struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"not null"`
	Address         string `gorm:"not null"`
	City            string
	State           string
	Description     string
	Price           float64 `gorm:"not null"`
	SharePrice      float64 `gorm:"not null"`
	TotalShares     int     `gorm:"not null"`
	AvailableShares int     `gorm:"not null"`
	ImageURL        string
	ListedBy        uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Investments []Investment `gorm:"foreignKey:PropertyID"`
}
