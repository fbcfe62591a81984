// Package database is the persistence layer: users, property listings,
// investments, and the durable chat archive, all behind one Database value.
package database

import "gorm.io/gorm"

type Database struct {
	db *gorm.DB
}

// NewDatabase wraps an already-open gorm handle, mainly for tests.
func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}
