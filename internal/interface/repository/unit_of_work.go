package repository

import (
	"context"

	"logsync-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormUnitOfWork implements the UnitOfWork interface on a GORM database
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GORM unit of work
func NewGormUnitOfWork(db *gorm.DB) repository.UnitOfWork {
	return &GormUnitOfWork{
		db: db,
	}
}

// WithinTransaction runs fn against repositories bound to one database
// transaction. Any error from fn rolls everything back.
func (u *GormUnitOfWork) WithinTransaction(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.TxRepos{
			Devices: NewGormDeviceRepository(tx),
			Events:  NewGormEventRepository(tx),
			Entries: NewGormLogbookRepository(tx),
		})
	})
}

// AutoMigrate creates or updates the engine's tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Devices{}, &Events{}, &LogbookEntries{})
}
