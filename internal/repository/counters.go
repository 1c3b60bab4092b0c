package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// incrementCounter adds one to column in a single statement
func incrementCounter(tx *gorm.DB, model interface{}, id uuid.UUID, column string) error {
	return tx.Model(model).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

// decrementCounter subtracts one from column in a single statement, never going below zero
func decrementCounter(tx *gorm.DB, model interface{}, id uuid.UUID, column string) error {
	return tx.Model(model).
		Where("id = ? AND "+column+" > 0", id).
		UpdateColumn(column, gorm.Expr(column+" - 1")).Error
}

// withAuthor preloads the author of topics and comments
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("Author")
}
