package models

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestIsFollowingTrueWhenEdgeExists(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `follows` WHERE user_id = ? AND author_id = ?")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	following, err := IsFollowing(db, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsFollowingFalseWithoutEdge(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT count(*) FROM `follows` WHERE user_id = ? AND author_id = ?")).
		WithArgs(1, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	following, err := IsFollowing(db, 1, 3)
	require.NoError(t, err)
	assert.False(t, following)
	assert.NoError(t, mock.ExpectationsWereMet())
}
