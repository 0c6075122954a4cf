package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PEERRANK_APP_NAME":                          os.Getenv("PEERRANK_APP_NAME"),
		"PEERRANK_APP_ENV":                           os.Getenv("PEERRANK_APP_ENV"),
		"PEERRANK_APP_PORT":                          os.Getenv("PEERRANK_APP_PORT"),
		"PEERRANK_DATABASE_HOST":                     os.Getenv("PEERRANK_DATABASE_HOST"),
		"PEERRANK_DATABASE_PORT":                     os.Getenv("PEERRANK_DATABASE_PORT"),
		"PEERRANK_DATABASE_USER":                     os.Getenv("PEERRANK_DATABASE_USER"),
		"PEERRANK_DATABASE_PASSWORD":                 os.Getenv("PEERRANK_DATABASE_PASSWORD"),
		"PEERRANK_DATABASE_DBNAME":                   os.Getenv("PEERRANK_DATABASE_DBNAME"),
		"PEERRANK_DATABASE_SSLMODE":                  os.Getenv("PEERRANK_DATABASE_SSLMODE"),
		"PEERRANK_DATABASE_MAX_OPEN_CONNS":           os.Getenv("PEERRANK_DATABASE_MAX_OPEN_CONNS"),
		"PEERRANK_DATABASE_MAX_IDLE_CONNS":           os.Getenv("PEERRANK_DATABASE_MAX_IDLE_CONNS"),
		"PEERRANK_JWT_SECRET":                        os.Getenv("PEERRANK_JWT_SECRET"),
		"PEERRANK_SCORING_STUDENT_WEIGHT":            os.Getenv("PEERRANK_SCORING_STUDENT_WEIGHT"),
		"PEERRANK_SCORING_TEACHER_WEIGHT":            os.Getenv("PEERRANK_SCORING_TEACHER_WEIGHT"),
		"PEERRANK_SCORING_COMMENT_REWARD_PERCENTILE": os.Getenv("PEERRANK_SCORING_COMMENT_REWARD_PERCENTILE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "peerrank-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "peerrank", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 0.7, cfg.Scoring.StudentWeight)
		assert.Equal(t, 0.3, cfg.Scoring.TeacherWeight)
		assert.Equal(t, 3, cfg.Scoring.MaxCommentSelections)
		assert.Equal(t, "*/5 * * * *", cfg.Settlement.JanitorSchedule)
	})

	t.Run("loads values from environment variables with PEERRANK prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_APP_NAME", "test-app")
		os.Setenv("PEERRANK_APP_PORT", "9000")
		os.Setenv("PEERRANK_DATABASE_HOST", "testdb.local")
		os.Setenv("PEERRANK_DATABASE_PORT", "5433")
		os.Setenv("PEERRANK_DATABASE_USER", "testuser")
		os.Setenv("PEERRANK_DATABASE_PASSWORD", "testpass")
		os.Setenv("PEERRANK_SCORING_STUDENT_WEIGHT", "0.6")
		os.Setenv("PEERRANK_SCORING_TEACHER_WEIGHT", "0.4")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, 0.6, cfg.Scoring.StudentWeight)
		assert.Equal(t, 0.4, cfg.Scoring.TeacherWeight)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("PEERRANK_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects scoring weights that do not sum to one", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_SCORING_STUDENT_WEIGHT", "0.8")
		os.Setenv("PEERRANK_SCORING_TEACHER_WEIGHT", "0.4")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must equal 1.0")
	})

	t.Run("rejects out-of-range comment percentile", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_SCORING_COMMENT_REWARD_PERCENTILE", "150")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "comment_reward_percentile")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"PEERRANK_APP_ENV":           os.Getenv("PEERRANK_APP_ENV"),
		"PEERRANK_JWT_SECRET":        os.Getenv("PEERRANK_JWT_SECRET"),
		"PEERRANK_DATABASE_PASSWORD": os.Getenv("PEERRANK_DATABASE_PASSWORD"),
		"PEERRANK_DATABASE_SSLMODE":  os.Getenv("PEERRANK_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_APP_ENV", "production")
		os.Setenv("PEERRANK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PEERRANK_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_APP_ENV", "production")
		os.Setenv("PEERRANK_JWT_SECRET", "short-secret")
		os.Setenv("PEERRANK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PEERRANK_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_APP_ENV", "production")
		os.Setenv("PEERRANK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("PEERRANK_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_APP_ENV", "production")
		os.Setenv("PEERRANK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("PEERRANK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PEERRANK_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("PEERRANK_APP_ENV", "production")
		os.Setenv("PEERRANK_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("PEERRANK_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PEERRANK_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
