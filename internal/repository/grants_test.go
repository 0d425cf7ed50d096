package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupGrantMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, GrantRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	repo := NewGrantRepository(gormDB, zap.NewNop())
	return db, mock, repo
}

func TestGrantListActive_WindowFilter(t *testing.T) {
	db, mock, repo := setupGrantMockDB(t)
	defer db.Close()

	asOf := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "patient_user_id", "granted_user_id", "starts_at", "ends_at",
	}).AddRow(
		"grant-1", asOf, asOf, "patient-1", "doctor-1",
		asOf.Add(-time.Hour), asOf.Add(time.Hour),
	)

	mock.ExpectQuery("SELECT \\* FROM `access_grants`").
		WithArgs("patient-1", asOf, asOf).
		WillReturnRows(rows)

	grants, err := repo.ListActive(context.Background(), "patient-1", asOf)

	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, "grant-1", grants[0].ID)
	assert.Equal(t, "doctor-1", grants[0].GrantedUserID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantHasActive(t *testing.T) {
	db, mock, repo := setupGrantMockDB(t)
	defer db.Close()

	asOf := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `access_grants`").
		WithArgs("patient-1", "nurse-1", asOf, asOf).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	active, err := repo.HasActive(context.Background(), "patient-1", "nurse-1", asOf)

	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantFindByID_NotFound(t *testing.T) {
	db, mock, repo := setupGrantMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT \\* FROM `access_grants`").
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	grant, err := repo.FindByID(context.Background(), "missing")

	assert.Nil(t, grant)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantDelete_NotFound(t *testing.T) {
	db, mock, repo := setupGrantMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `access_grants`").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantDelete_Success(t *testing.T) {
	db, mock, repo := setupGrantMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `access_grants`").
		WithArgs("grant-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "grant-1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
