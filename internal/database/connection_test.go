package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestValidateConfig(t *testing.T) {
	valid := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "recruit",
		Password: "secret",
		DBName:   "recruitstack",
		SSLMode:  "disable",
	}
	assert.NoError(t, validateConfig(valid))

	assert.EqualError(t, validateConfig(nil), "database config is nil")

	missingHost := *valid
	missingHost.Host = ""
	assert.EqualError(t, validateConfig(&missingHost), "database host config is empty")

	missingSSL := *valid
	missingSSL.SSLMode = ""
	assert.EqualError(t, validateConfig(&missingSSL), "database SSLMode config is empty")
}

func TestNewConnection_InvalidPort(t *testing.T) {
	_, err := NewConnection(&DatabaseConfig{
		Host:     "localhost",
		Port:     "not-a-port",
		User:     "recruit",
		Password: "secret",
		DBName:   "recruitstack",
		SSLMode:  "disable",
	})
	assert.ErrorContains(t, err, "invalid port number")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, gormLogLevel("info"))
	assert.Equal(t, gormlogger.Silent, gormLogLevel("SILENT"))
	assert.Equal(t, gormlogger.Warn, gormLogLevel(""))
}
