package database

import (
	"testing"
	"time"

	"gdpr-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig()

	if config.MaxOpenConns != 25 {
		t.Errorf("Expected MaxOpenConns to be 25, got %d", config.MaxOpenConns)
	}
	if config.MaxIdleConns != 10 {
		t.Errorf("Expected MaxIdleConns to be 10, got %d", config.MaxIdleConns)
	}
	if config.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected ConnMaxLifetime to be 1 hour, got %v", config.ConnMaxLifetime)
	}
	if config.ConnMaxIdleTime != time.Minute*30 {
		t.Errorf("Expected ConnMaxIdleTime to be 30 minutes, got %v", config.ConnMaxIdleTime)
	}
	if config.LogLevel != logger.Info {
		t.Errorf("Expected LogLevel to be Info, got %v", config.LogLevel)
	}
}

func TestNewDatabasePool_WithNilConfig(t *testing.T) {
	_, err := NewDatabasePool(nil)
	if err == nil {
		t.Error("Expected error due to empty DSN, got nil")
	}
}

func TestPoolConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		config *PoolConfig
	}{
		{
			name:   "empty DSN",
			config: &PoolConfig{DSN: "", LogLevel: logger.Silent},
		},
		{
			name: "negative values",
			config: &PoolConfig{
				DSN:             "host=localhost dbname=x",
				MaxOpenConns:    -1,
				MaxIdleConns:    -1,
				ConnMaxLifetime: -time.Hour,
			},
		},
		{
			name:   "unknown driver",
			config: &PoolConfig{Driver: "mysql", DSN: "root@/db"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDatabasePool(tt.config); err == nil {
				t.Error("Expected error but pool creation succeeded")
			}
		})
	}
}

func TestDatabasePool_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{DB: nil, config: &PoolConfig{MaxOpenConns: 10}}

	stats := pool.Stats()
	if _, hasError := stats["error"]; !hasError {
		t.Error("Expected error in stats when DB is nil")
	}
	if err := pool.Health(); err == nil {
		t.Error("Expected error when checking health with nil DB")
	}
	if err := pool.Close(); err != nil {
		t.Errorf("Expected no error when closing nil DB, got: %v", err)
	}
}

func TestOpenInMemory_MigratesSchema(t *testing.T) {
	pool, err := OpenInMemory()
	require.NoError(t, err)
	defer pool.Close()

	for _, model := range models.All() {
		assert.True(t, pool.DB.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.NoError(t, pool.Health())
	assert.Equal(t, 1, pool.Stats()["max_open_connections"])
}

func TestOpenInMemory_IsolatedDatabases(t *testing.T) {
	first, err := OpenInMemory()
	require.NoError(t, err)
	defer first.Close()

	second, err := OpenInMemory()
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.DB.Create(&models.User{Email: "a@example.com", Username: "a", PasswordHash: "x", Role: models.RoleViewer}).Error)

	var count int64
	require.NoError(t, second.DB.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMigrate_KeywordsRoundTrip(t *testing.T) {
	pool, err := OpenInMemory()
	require.NoError(t, err)
	defer pool.Close()

	article := models.GdprArticle{
		ArticleNumber: "Art17",
		Title:         "Right to erasure",
		Keywords:      models.Keywords{"erasure", "forgotten"},
	}
	require.NoError(t, pool.DB.Create(&article).Error)

	var loaded models.GdprArticle
	require.NoError(t, pool.DB.First(&loaded, "id = ?", article.ID).Error)
	assert.Equal(t, models.Keywords{"erasure", "forgotten"}, loaded.Keywords)
}
