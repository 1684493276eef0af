package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookmarket/bookmarket/internal/entities"
)

var defaultCategories = []string{
	"Fiction", "Short Stories", "Poetry", "History", "Science",
	"Philosophy", "Psychology", "Children's Books", "Education",
	"Self-Improvement", "Art", "Biography", "Economics", "Politics",
	"Religion", "Science Fiction", "Fantasy", "Crime", "Horror", "Humor",
}

var defaultPublishers = []entities.Publisher{
	{Name: "Penguin Classics", Description: "Classic literature imprint"},
	{Name: "HarperCollins", Description: "General trade publisher"},
	{Name: "Oxford University Press", Description: "Academic and reference"},
	{Name: "Vintage Books", Description: "Modern fiction and non-fiction"},
	{Name: "Faber & Faber", Description: "Poetry and literary fiction"},
	{Name: "Bloomsbury", Description: "Trade and academic publisher"},
	{Name: "Picador", Description: "Literary imprint"},
	{Name: "Granta Books", Description: "Essays and reportage"},
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the SQLite store, migrates the schema, and seeds the
// default categories and publishers. TranslateError is on so uniqueness
// violations surface as gorm.ErrDuplicatedKey everywhere.
func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Publisher{},
		&entities.Book{},
		&entities.Category{},
		&entities.CartItem{},
		&entities.Order{},
		&entities.OrderItem{},
		&entities.Review{},
		&entities.WishlistItem{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedCategories(); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := database.seedPublishers(); err != nil {
		return nil, fmt.Errorf("failed to seed publishers: %w", err)
	}

	zap.L().Info("database initialized", zap.String("path", dbPath))

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the underlying connection is alive.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) seedCategories() error {
	for _, name := range defaultCategories {
		var existing entities.Category
		result := d.DB.Where("name = ?", name).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			if err := d.DB.Create(&entities.Category{Name: name}).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", name, err)
			}
		}
	}
	return nil
}

func (d *Database) seedPublishers() error {
	for _, publisher := range defaultPublishers {
		var existing entities.Publisher
		result := d.DB.Where("name = ?", publisher.Name).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			p := publisher
			if err := d.DB.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create publisher %s: %w", publisher.Name, err)
			}
		}
	}
	return nil
}
