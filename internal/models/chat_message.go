package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the durable copy of a chat event. The live log in the
// coordinator is bounded; this table keeps the full history.
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID int64     `gorm:"not null;index"`
	UserID     string    `gorm:"not null"`
	UserName   string
	Kind       string `gorm:"not null;default:'message'"`
	Content    string
	Metadata   string `gorm:"type:jsonb;default:null"`
	CreatedAt  time.Time
}
