package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawmate/dogwalk-marketplace/internal/domain/repositories"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("RATING_SCORE_MODE")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("SERVER_PORT")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "dogwalk_marketplace", cfg.Database.Database)
	assert.Equal(t, repositories.ScoreModeAverage, cfg.Rating.ScoreMode)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_ScoreMode(t *testing.T) {
	os.Setenv("RATING_SCORE_MODE", "overwrite")
	defer os.Unsetenv("RATING_SCORE_MODE")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, repositories.ScoreModeOverwrite, cfg.Rating.ScoreMode)
}

func TestLoad_InvalidScoreMode(t *testing.T) {
	os.Setenv("RATING_SCORE_MODE", "median")
	defer os.Unsetenv("RATING_SCORE_MODE")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "walks",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=walks sslmode=disable", cfg.DatabaseDSN())
}
