package repository

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/models"
)

type Repositories struct {
	MailboxConfigRepository interfaces.MailboxConfigRepository
	CandidateRepository     interfaces.CandidateRepository
	ProcessingLogRepository interfaces.ProcessingLogRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		MailboxConfigRepository: NewMailboxConfigRepository(db),
		CandidateRepository:     NewCandidateRepository(db),
		ProcessingLogRepository: NewProcessingLogRepository(db),
	}
}

// singleActiveIndex backs the one-active-configuration rule at the database level
const singleActiveIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_mailbox_configurations_single_active
	ON mailbox_configurations (is_active) WHERE is_active`

func MigrateDB(dbConfig *config.DatabaseConfig, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.MailboxConfig{},
		&models.Candidate{},
		&models.ProcessingLogEntry{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate failed")
	}

	if err = db.Exec(singleActiveIndex).Error; err != nil {
		return errors.Wrap(err, "failed to create single active configuration index")
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return nil
}
