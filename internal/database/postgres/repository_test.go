package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

var errUnknown = errors.New("unknown error")

var urlColumns = []string{"id", "short_code", "original_url", "created_at"}

func setupDB(t testing.TB) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")

	t.Cleanup(func() {
		mockDB.Close()
		db.Close()
	})

	return db, mock
}

func setupURLRepository(t testing.TB) (*URLRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := setupDB(t)
	return NewURLRepository(db), mock
}

func setupClickRepository(t testing.TB) (*ClickRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := setupDB(t)
	return NewClickRepository(db), mock
}

func TestURLRepository_Create(t *testing.T) {
	t.Run("short code exists", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("code1", "https://example.com").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode})

		url, err := repo.Create(context.TODO(), "code1", "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrShortCodeExists)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("code1", "https://example.com").
			WillReturnError(errUnknown)

		url, err := repo.Create(context.TODO(), "code1", "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(urlColumns).
			AddRow(1, "code1", "https://example.com", time.Time{})

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("code1", "https://example.com").
			WillReturnRows(rows)

		wantURL := models.URL{
			ID:          1,
			ShortCode:   "code1",
			OriginalURL: "https://example.com",
		}

		url, err := repo.Create(context.TODO(), "code1", "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, wantURL, *url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_CreateWithoutCode(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("https://example.com").
			WillReturnError(errUnknown)

		url, err := repo.CreateWithoutCode(context.TODO(), "https://example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(urlColumns).
			AddRow(1, nil, "https://example.com", time.Time{})

		mock.ExpectQuery(`INSERT INTO urls`).
			WithArgs("https://example.com").
			WillReturnRows(rows)

		url, err := repo.CreateWithoutCode(context.TODO(), "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, int64(1), url.ID)
		assert.Empty(t, url.ShortCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_AssignShortCode(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`UPDATE urls`).
			WithArgs("1", int64(1)).
			WillReturnError(sql.ErrNoRows)

		url, err := repo.AssignShortCode(context.TODO(), 1, "1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code exists", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`UPDATE urls`).
			WithArgs("1", int64(1)).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode})

		url, err := repo.AssignShortCode(context.TODO(), 1, "1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrShortCodeExists)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(urlColumns).
			AddRow(1, "1", "https://example.com", time.Time{})

		mock.ExpectQuery(`UPDATE urls`).
			WithArgs("1", int64(1)).
			WillReturnRows(rows)

		url, err := repo.AssignShortCode(context.TODO(), 1, "1")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, "1", url.ShortCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_GetByShortCode(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WithArgs("code2").
			WillReturnError(sql.ErrNoRows)

		url, err := repo.GetByShortCode(context.TODO(), "code2")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrURLNotFound)
		assert.Nil(t, url)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows(urlColumns).
			AddRow(1, "code1", "https://example.com", time.Time{})

		mock.ExpectQuery(`SELECT \* FROM urls`).
			WithArgs("code1").
			WillReturnRows(rows)

		url, err := repo.GetByShortCode(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, "https://example.com", url.OriginalURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestURLRepository_ExistsByShortCode(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("code1").
			WillReturnError(errUnknown)

		exists, err := repo.ExistsByShortCode(context.TODO(), "code1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code exists", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("code1").
			WillReturnRows(rows)

		exists, err := repo.ExistsByShortCode(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short code doesn't exist", func(t *testing.T) {
		repo, mock := setupURLRepository(t)

		rows := sqlmock.NewRows([]string{"exists"}).AddRow(false)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("code2").
			WillReturnRows(rows)

		exists, err := repo.ExistsByShortCode(context.TODO(), "code2")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_Create(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		mock.ExpectExec(`INSERT INTO clicks`).
			WithArgs("code1", "203.0.113.7", "curl/8.0").
			WillReturnError(errUnknown)

		err := repo.Create(context.TODO(), "code1", "203.0.113.7", "curl/8.0")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		mock.ExpectExec(`INSERT INTO clicks`).
			WithArgs("code1", "203.0.113.7", "curl/8.0").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(context.TODO(), "code1", "203.0.113.7", "curl/8.0")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_CountByShortCode(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clicks`).
			WithArgs("code1").
			WillReturnError(errUnknown)

		count, err := repo.CountByShortCode(context.TODO(), "code1")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Zero(t, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no clicks", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		rows := sqlmock.NewRows([]string{"count"}).AddRow(0)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clicks`).
			WithArgs("code2").
			WillReturnRows(rows)

		count, err := repo.CountByShortCode(context.TODO(), "code2")

		assert.NoError(t, err)
		assert.Zero(t, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		rows := sqlmock.NewRows([]string{"count"}).AddRow(3)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM clicks`).
			WithArgs("code1").
			WillReturnRows(rows)

		count, err := repo.CountByShortCode(context.TODO(), "code1")

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClickRepository_CountByDay(t *testing.T) {
	since := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		mock.ExpectQuery(`SELECT clicked_at::date`).
			WithArgs("code1", since).
			WillReturnError(errUnknown)

		counts, err := repo.CountByDay(context.TODO(), "code1", since)

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no clicks", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		rows := sqlmock.NewRows([]string{"date", "clicks"})

		mock.ExpectQuery(`SELECT clicked_at::date`).
			WithArgs("code2", since).
			WillReturnRows(rows)

		counts, err := repo.CountByDay(context.TODO(), "code2", since)

		assert.NoError(t, err)
		assert.Empty(t, counts)
		assert.NotNil(t, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupClickRepository(t)

		rows := sqlmock.NewRows([]string{"date", "clicks"}).
			AddRow(time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC), 2).
			AddRow(time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC), 5)

		mock.ExpectQuery(`SELECT clicked_at::date`).
			WithArgs("code1", since).
			WillReturnRows(rows)

		wantCounts := []models.DayCount{
			{Date: "2024-09-02", Clicks: 2},
			{Date: "2024-09-03", Clicks: 5},
		}

		counts, err := repo.CountByDay(context.TODO(), "code1", since)

		assert.NoError(t, err)
		assert.Equal(t, wantCounts, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
