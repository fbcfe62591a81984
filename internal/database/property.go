package database

import (
	"errors"

	"github.com/fortyacres/property-chat/internal/models"
	"gorm.io/gorm"
)

var ErrNotEnoughShares = errors.New("not enough shares available")

func (d *Database) CreateProperty(property *models.Property) error {
	return d.db.Create(property).Error
}

func (d *Database) GetProperty(id int64) (*models.Property, error) {
	var property models.Property
	if err := d.db.First(&property, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (d *Database) ListProperties() ([]models.Property, error) {
	var properties []models.Property
	err := d.db.Order("created_at DESC").Find(&properties).Error
	return properties, err
}

func (d *Database) UpdateProperty(property *models.Property) error {
	return d.db.Save(property).Error
}

// RecordInvestment stores an investment and decrements the listing's available
// shares in one transaction. Oversubscription is refused at the query level so
// concurrent buyers cannot drive the count negative.
func (d *Database) RecordInvestment(investment *models.Investment) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Property{}).
			Where("id = ? AND available_shares >= ?", investment.PropertyID, investment.Shares).
			UpdateColumn("available_shares", gorm.Expr("available_shares - ?", investment.Shares))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotEnoughShares
		}
		return tx.Create(investment).Error
	})
}

func (d *Database) GetPropertyInvestments(propertyID int64) ([]models.Investment, error) {
	var investments []models.Investment
	err := d.db.
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Preload("User").
		Find(&investments).Error
	return investments, err
}
