package database

import (
	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/config"
)

func InitDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	return NewConnection(&DatabaseConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		DBName:          cfg.DBName,
		Password:        cfg.Password,
		MaxConn:         cfg.MaxConn,
		MaxIdleConn:     cfg.MaxIdleConn,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
		SSLMode:         cfg.SSLMode,
	})
}
