package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestValidateConfig(t *testing.T) {
	valid := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		DBName:   "mailsorter",
		SSLMode:  "disable",
	}
	assert.NoError(t, validateConfig(valid))
	assert.Error(t, validateConfig(nil))

	missingHost := *valid
	missingHost.Host = ""
	assert.EqualError(t, validateConfig(&missingHost), "database host config is empty")

	missingSSL := *valid
	missingSSL.SSLMode = ""
	assert.Error(t, validateConfig(&missingSSL))
}

func TestNewConnection_InvalidPort(t *testing.T) {
	_, err := NewConnection(&DatabaseConfig{
		Host:     "localhost",
		Port:     "not-a-port",
		User:     "postgres",
		Password: "secret",
		DBName:   "mailsorter",
		SSLMode:  "disable",
	})
	assert.ErrorContains(t, err, "invalid port number")
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Warn, gormLogLevel("WARN"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Error, gormLogLevel("ERROR"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
