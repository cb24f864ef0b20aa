package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/recruitstack/recruitstack/interfaces"
	internalerrors "github.com/recruitstack/recruitstack/internal/errors"
	"github.com/recruitstack/recruitstack/internal/models"
)

func newConfigTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	// every pooled connection to :memory: would get its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.MailboxConfig{}))
	require.NoError(t, db.Exec(singleActiveIndex).Error)
	return db
}

func saveConfig(t *testing.T, repo interfaces.MailboxConfigRepository, name string, active bool) *models.MailboxConfig {
	t.Helper()
	config, err := repo.Save(context.Background(), &models.MailboxConfig{
		Name:     name,
		Host:     "mail.example.com",
		Port:     993,
		Username: "jobs@example.com",
		Password: "secret",
		UseTLS:   true,
		IsActive: active,
	})
	require.NoError(t, err)
	return config
}

func activeIds(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var ids []string
	require.NoError(t, db.Model(&models.MailboxConfig{}).Where("is_active = ?", true).Pluck("id", &ids).Error)
	return ids
}

func TestMailboxConfigRepository_SetActiveIsIdempotent(t *testing.T) {
	db := newConfigTestDB(t)
	repo := NewMailboxConfigRepository(db)
	ctx := context.Background()

	first := saveConfig(t, repo, "first", true)
	second := saveConfig(t, repo, "second", false)
	saveConfig(t, repo, "third", false)
	require.Equal(t, []string{first.ID}, activeIds(t, db))

	require.NoError(t, repo.SetActive(ctx, second.ID))
	require.Equal(t, []string{second.ID}, activeIds(t, db))

	require.NoError(t, repo.SetActive(ctx, second.ID))
	require.Equal(t, []string{second.ID}, activeIds(t, db))

	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	require.Equal(t, second.ID, active.ID)
}

func TestMailboxConfigRepository_SetActiveUnknownId(t *testing.T) {
	db := newConfigTestDB(t)
	repo := NewMailboxConfigRepository(db)

	current := saveConfig(t, repo, "current", true)

	err := repo.SetActive(context.Background(), "mcfg_missing")
	require.True(t, errors.Is(err, internalerrors.ErrConfigNotFound))
	require.Equal(t, []string{current.ID}, activeIds(t, db))
}

func TestMailboxConfigRepository_SaveActiveReplacesCurrent(t *testing.T) {
	db := newConfigTestDB(t)
	repo := NewMailboxConfigRepository(db)

	saveConfig(t, repo, "old", true)
	replacement := saveConfig(t, repo, "new", true)

	require.Equal(t, []string{replacement.ID}, activeIds(t, db))
}

func TestMailboxConfigRepository_IndexRejectsSecondActive(t *testing.T) {
	db := newConfigTestDB(t)
	repo := NewMailboxConfigRepository(db)

	saveConfig(t, repo, "current", true)

	// bypasses the repository, only the index stands in the way
	err := db.Create(&models.MailboxConfig{
		Name:     "rogue",
		Host:     "mail.example.com",
		Port:     993,
		Username: "jobs@example.com",
		Password: "secret",
		IsActive: true,
	}).Error
	require.Error(t, err)
	require.Len(t, activeIds(t, db), 1)
}
