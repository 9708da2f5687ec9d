package repository

import (
	"gorm.io/gorm"

	"github.com/customeros/mailsorter/interfaces"
	"github.com/customeros/mailsorter/internal/models"
)

type Repositories struct {
	EmailRepository interfaces.EmailRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		EmailRepository: NewEmailRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Email{},
	)
}
