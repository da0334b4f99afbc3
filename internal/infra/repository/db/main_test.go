package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 測試用sqlite in-memory db
// in-memory db綁單一連線，限制pool size避免跨連線看不到schema
func newTestDao(t *testing.T) *DbDao {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	dao := NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	return dao
}
