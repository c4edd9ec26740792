package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormDB(t *testing.T) {
	t.Run("SQLiteInMemory", func(t *testing.T) {
		db, err := NewGormDB(&DBConfig{Type: "sqlite"})
		require.NoError(t, err)
		require.NotNil(t, db)
		defer Close(db)

		require.NoError(t, AutoMigrate(db))
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		_, err := NewGormDB(&DBConfig{Type: "oracle"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database type")
	})

	t.Run("MaxConnsDefaultedWhenUnset", func(t *testing.T) {
		db, err := NewGormDB(&DBConfig{Type: "sqlite", MaxConns: 0})
		require.NoError(t, err)
		defer Close(db)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.NotNil(t, sqlDB)
	})
}

func TestAutoMigrate(t *testing.T) {
	db, err := NewGormDB(&DBConfig{Type: "sqlite"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&RunRecord{}))
	assert.True(t, db.Migrator().HasTable(&SharerEdgeRecord{}))
}
