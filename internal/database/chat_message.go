package database

import (
	"context"
	"encoding/json"

	"github.com/fortyacres/property-chat/internal/chat"
	"github.com/fortyacres/property-chat/internal/models"
	"github.com/google/uuid"
)

// ArchiveEvent persists a chat event. It satisfies chat.Archiver; the
// coordinator calls it off its lock path.
func (d *Database) ArchiveEvent(ctx context.Context, evt *chat.ChatEvent) error {
	record := &models.ChatMessage{
		PropertyID: evt.PropertyID,
		UserID:     evt.UserID,
		UserName:   evt.UserName,
		Kind:       string(evt.Kind),
		Content:    evt.Message,
		CreatedAt:  evt.Timestamp,
	}

	var meta interface{}
	switch {
	case evt.Zoom != nil:
		meta = evt.Zoom
	case evt.Investment != nil:
		meta = evt.Investment
	case evt.Property != nil:
		meta = evt.Property
	}
	if meta != nil {
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		record.Metadata = string(data)
	}

	return d.db.WithContext(ctx).Create(record).Error
}

// GetPropertyMessages pages through the archived history of a property. When
// beforeID is set, only messages older than that row are returned. Results
// come back oldest first.
func (d *Database) GetPropertyMessages(propertyID int64, limit int, beforeID *uuid.UUID) ([]models.ChatMessage, error) {
	query := d.db.Where("property_id = ?", propertyID)

	if beforeID != nil {
		var before models.ChatMessage
		if err := d.db.First(&before, "id = ?", beforeID).Error; err == nil {
			query = query.Where("created_at < ?", before.CreatedAt)
		}
	}

	var messages []models.ChatMessage
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
