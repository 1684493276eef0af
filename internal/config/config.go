package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Uploads
		Seed
		Global
	}

	HTTP struct {
		Port           int32
		Host           string
		Mode           string   // gin mode: debug or release
		AllowedOrigins []string // CORS origins
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret      string
		TokenExpiry    time.Duration
		BcryptCost     int
		GoogleClientID string
	}
	Uploads struct {
		Dir      string
		MaxBytes int64
	}
	Seed struct {
		AdminEmail    string
		AdminPassword string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("cors_allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	// Auth defaults
	v.SetDefault("jwt_secret", "") // Auto-generated if empty
	v.SetDefault("token_expiry", "24h")
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("google_client_id", "")

	// Upload defaults
	v.SetDefault("upload_dir", DefaultUploadDir)
	v.SetDefault("upload_max_bytes", 16*1024*1024)

	// Seed defaults, used once on an empty database
	v.SetDefault("admin_email", "admin@admin.com")
	v.SetDefault("admin_password", "")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			Mode:           v.GetString("GIN_MODE"),
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:      v.GetString("JWT_SECRET"),
			TokenExpiry:    v.GetDuration("TOKEN_EXPIRY"),
			BcryptCost:     v.GetInt("BCRYPT_COST"),
			GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),
		},
		Uploads: Uploads{
			Dir:      v.GetString("UPLOAD_DIR"),
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Seed: Seed{
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
