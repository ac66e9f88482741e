package database

import (
	"testing"

	"fluss/internal/config"
	"fluss/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.TempDir()+"/db_test.db?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "posts", "fames"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}

	// The denormalized tally starts at the creation offset.
	require.NoError(t, db.Create(&models.User{Username: "u", Email: "u@x.io", Password: "p"}).Error)
	require.NoError(t, db.Create(&models.Post{Title: "t", Text: "x", OwnerID: 1}).Error)
	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, 1, post.FamePoints)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestConfigurePool(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{
		DBMaxOpenConns:           7,
		DBMaxIdleConns:           3,
		DBConnMaxLifetimeMinutes: 5,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 7, sqlDB.Stats().MaxOpenConnections)
}
