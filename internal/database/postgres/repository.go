package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

type urlRecord struct {
	ID          int64          `db:"id"`
	ShortCode   sql.NullString `db:"short_code"`
	OriginalURL string         `db:"original_url"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ID:          r.ID,
		ShortCode:   r.ShortCode.String,
		OriginalURL: r.OriginalURL,
		CreatedAt:   r.CreatedAt,
	}
}

type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Create inserts a url record with its short code already decided. The unique
// index on short_code is the authoritative guard against concurrent inserts
// of the same code, so a violation here is reported as ErrShortCodeExists.
func (r *URLRepository) Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.Create"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, original_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// CreateWithoutCode inserts a url record with a NULL short code to obtain the
// database-assigned id. NULLs are distinct under the unique index, so
// concurrent pending inserts never collide on the placeholder.
func (r *URLRepository) CreateWithoutCode(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.CreateWithoutCode"

	rec := new(urlRecord)
	query := `INSERT INTO urls(original_url)
		VALUES ($1)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// AssignShortCode backfills the short code onto a record created by
// CreateWithoutCode. The record is keyed by its freshly assigned id, so no
// other request can touch it between the two writes.
func (r *URLRepository) AssignShortCode(ctx context.Context, id int64, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.AssignShortCode"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET short_code = $1
		WHERE id = $2
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to assign short code: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "database.postgres.URLRepository.GetByShortCode"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

func (r *URLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	const op = "database.postgres.URLRepository.ExistsByShortCode"

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM urls WHERE short_code = $1)`

	err := r.db.GetContext(ctx, &exists, query, shortCode)
	if err != nil {
		return false, fmt.Errorf("%s: failed to check short code existence: %w", op, err)
	}

	return exists, nil
}

type dayCountRecord struct {
	Date   time.Time `db:"date"`
	Clicks int64     `db:"clicks"`
}

type ClickRepository struct {
	db *sqlx.DB
}

func NewClickRepository(db *sqlx.DB) *ClickRepository {
	return &ClickRepository{
		db: db,
	}
}

func (r *ClickRepository) Create(ctx context.Context, shortCode, ipAddress, userAgent string) error {
	const op = "database.postgres.ClickRepository.Create"

	query := `INSERT INTO clicks(short_code, ip_address, user_agent)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, shortCode, ipAddress, userAgent); err != nil {
		return fmt.Errorf("%s: failed to create click record: %w", op, err)
	}

	return nil
}

func (r *ClickRepository) CountByShortCode(ctx context.Context, shortCode string) (int64, error) {
	const op = "database.postgres.ClickRepository.CountByShortCode"

	var count int64
	query := `SELECT COUNT(*) FROM clicks WHERE short_code = $1`

	err := r.db.GetContext(ctx, &count, query, shortCode)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to count click records: %w", op, err)
	}

	return count, nil
}

// CountByDay buckets clicks recorded at or after since by calendar date, in
// the database's configured time zone, oldest date first.
func (r *ClickRepository) CountByDay(ctx context.Context, shortCode string, since time.Time) ([]models.DayCount, error) {
	const op = "database.postgres.ClickRepository.CountByDay"

	var recs []dayCountRecord
	query := `SELECT clicked_at::date AS date, COUNT(*) AS clicks
		FROM clicks
		WHERE short_code = $1 AND clicked_at >= $2
		GROUP BY clicked_at::date
		ORDER BY date ASC`

	err := r.db.SelectContext(ctx, &recs, query, shortCode, since)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count click records by day: %w", op, err)
	}

	counts := make([]models.DayCount, 0, len(recs))
	for _, rec := range recs {
		counts = append(counts, models.DayCount{
			Date:   rec.Date.Format(time.DateOnly),
			Clicks: rec.Clicks,
		})
	}

	return counts, nil
}
