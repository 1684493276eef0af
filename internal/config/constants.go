package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./bookmarket.db"

	// DefaultUploadDir is where book images and avatars are stored
	DefaultUploadDir = "./uploads"
)
