package database

import (
	"github.com/fortyacres/property-chat/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Investment{},
		&models.ChatMessage{},
	); err != nil {
		return err
	}

	d.db = db
	return nil
}
