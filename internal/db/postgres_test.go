package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var (
	_ models.KeyValueStore = (*PostgresDB)(nil)
	_ models.KeyValueStore = (*MemoryDB)(nil)
)

func TestGet(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"value"}).
		AddRow(`{"etag":"\"abc\"","data":[],"ts":1}`)

	mock.ExpectQuery("SELECT value FROM cache_entries").
		WithArgs("gh-cache:https://api.github.com/users/octocat/repos").
		WillReturnRows(rows)

	pg := &PostgresDB{db: mockDB}
	value, err := pg.Get(context.Background(), "gh-cache:https://api.github.com/users/octocat/repos")
	assert.NoError(t, err)
	assert.JSONEq(t, `{"etag":"\"abc\"","data":[],"ts":1}`, string(value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Missing(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT value FROM cache_entries").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	pg := &PostgresDB{db: mockDB}
	value, err := pg.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Failure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT value FROM cache_entries").
		WithArgs("key").
		WillReturnError(assert.AnError)

	pg := &PostgresDB{db: mockDB}
	_, err = pg.Get(context.Background(), "key")
	assert.Error(t, err)
	assert.True(t, errors.HasReference(err, errors.RefStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	value := []byte(`{"data":[1],"ts":2}`)
	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs("key", string(value)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	pg := &PostgresDB{db: mockDB}
	err = pg.Set(context.Background(), "key", value)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSet_Failure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("INSERT INTO cache_entries").
		WithArgs("key", "{}").
		WillReturnError(assert.AnError)

	pg := &PostgresDB{db: mockDB}
	err = pg.Set(context.Background(), "key", []byte("{}"))
	assert.True(t, errors.HasReference(err, errors.RefStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryDB(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryDB()

	value, err := m.Get(ctx, "absent")
	assert.NoError(t, err)
	assert.Nil(t, value)

	in := []byte(`{"ts":1}`)
	assert.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'X'

	value, err = m.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Equal(t, `{"ts":1}`, string(value))

	value[0] = 'Y'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, `{"ts":1}`, string(again))
	assert.Equal(t, 1, m.Len())
}
