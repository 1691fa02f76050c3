package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "unlinked", cfg.DBName)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_NAME", "unlinked_test")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "unlinked_test", cfg.DBName)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 587, cfg.SMTPPort)
}
