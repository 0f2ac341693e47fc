package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/techstore/storefront-backend/pkg/config"
	"github.com/techstore/storefront-backend/pkg/logger"
)

type widget struct {
	ID   int
	Name string
}

func openSQLite(t *testing.T, logg *logger.Logger) *Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	client, err := New(context.Background(), config.DocStoreSQLite, config.DBConfig{
		DSN:                dsn,
		SlowQueryThreshold: time.Hour,
	}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&widget{}))
	return client
}

func TestNewOpensSQLiteAndPings(t *testing.T) {
	client := openSQLite(t, nil)
	assert.Equal(t, config.DocStoreSQLite, client.Driver())
	require.NoError(t, client.Ping(context.Background()))

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewRejectsMissingDSNAndUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DocStoreSQLite, config.DBConfig{}, nil)
	require.ErrorContains(t, err, "DSN is required")

	_, err = New(context.Background(), "mysql", config.DBConfig{DSN: "x"}, nil)
	require.ErrorContains(t, err, `unsupported sql driver "mysql"`)
}

func TestQueryLoggerReportsFailuresButNotMissingRows(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	client := openSQLite(t, logg)
	buf.Reset()

	var w widget
	err := client.DB().First(&w, "id = ?", 42).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	err = client.DB().Exec("SELECT * FROM missing_table").Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"message":"query failed"`)
	assert.Contains(t, buf.String(), "missing_table")
}

func TestQueryLoggerFlagsSlowQueries(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	ql := newQueryLogger(logg, time.Millisecond)

	begin := time.Now().Add(-time.Second)
	ql.Trace(context.Background(), begin, func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Contains(t, buf.String(), `"message":"slow query"`)
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(context.Background(), begin, func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String())
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	assert.True(t, IsUniqueViolation(pgErr, "users_email_key"))
	assert.True(t, IsUniqueViolation(pgErr, ""))
	assert.False(t, IsUniqueViolation(pgErr, "other_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))

	client := openSQLite(t, nil)
	require.NoError(t, client.DB().Exec("CREATE UNIQUE INDEX widgets_name ON widgets(name)").Error)
	require.NoError(t, client.DB().Create(&widget{Name: "a"}).Error)
	dup := client.DB().Create(&widget{Name: "a"}).Error
	assert.True(t, IsUniqueViolation(dup, "widgets.name"))

	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
