package db

import (
	"sylmap/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Forum{},
		&models.ForumUser{},
		&models.Thread{},
		&models.Post{},
		&models.Marker{},
		&models.Suggestion{},
		&models.ImportRun{},
	)
}
