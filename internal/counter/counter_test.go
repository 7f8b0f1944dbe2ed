package counter

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.Exec(
		`CREATE TABLE counters (name TEXT PRIMARY KEY, value INTEGER NOT NULL DEFAULT 0)`,
	).Error)
	return conn
}

func TestNextStartsAtOne(t *testing.T) {
	conn := setupDB(t)
	repo := NewRepository()

	value, err := repo.Next(context.Background(), conn, SeqReceiptNumber)
	require.NoError(t, err)
	assert.EqualValues(t, 1, value)
}

func TestNextIncrements(t *testing.T) {
	conn := setupDB(t)
	repo := NewRepository()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		value, err := repo.Next(ctx, conn, SeqBookingNumber)
		require.NoError(t, err)
		assert.Equal(t, want, value)
	}
}

func TestNextIsolatesNames(t *testing.T) {
	conn := setupDB(t)
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Next(ctx, conn, SeqBookingNumber)
	require.NoError(t, err)
	_, err = repo.Next(ctx, conn, SeqBookingNumber)
	require.NoError(t, err)

	value, err := repo.Next(ctx, conn, SeqReceiptNumber)
	require.NoError(t, err)
	assert.EqualValues(t, 1, value)
}

func TestNextRejectsEmptyName(t *testing.T) {
	conn := setupDB(t)
	repo := NewRepository()

	_, err := repo.Next(context.Background(), conn, "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "RCT-000001", Format("RCT", 1))
	assert.Equal(t, "BK-001204", Format("BK", 1204))
}
