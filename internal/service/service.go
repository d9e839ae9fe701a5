package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/pkg/base62"
)

const (
	minCustomCodeLength = 3
	maxCustomCodeLength = 10
)

// ErrInvalidCustomCode is returned when a caller-supplied short code fails the length constraint.
var ErrInvalidCustomCode = fmt.Errorf(
	"custom code must be %d-%d characters long", minCustomCodeLength, maxCustomCodeLength,
)

// clickWindow is the trailing period covered by the day-bucketed click histogram.
const clickWindow = 7 * 24 * time.Hour

// URLRepository defines the interface for working with URLs at the business logic layer.
type URLRepository interface {
	// Create inserts a new shortened URL with its short code already decided.
	// Returns the created URL model or an error if the operation fails.
	Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// CreateWithoutCode inserts a new URL without a short code so the store
	// assigns an id. Returns the created URL model with its id populated.
	CreateWithoutCode(ctx context.Context, originalURL string) (*models.URL, error)

	// AssignShortCode sets the short code on the record with the given id.
	// Returns the updated URL model or an error if the operation fails.
	AssignShortCode(ctx context.Context, id int64, shortCode string) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code.
	// Returns the URL model if found or an error if not found.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// ExistsByShortCode reports whether a URL with the given short code exists.
	ExistsByShortCode(ctx context.Context, shortCode string) (bool, error)
}

// ClickRepository defines the interface for recording and aggregating clicks.
type ClickRepository interface {
	// Create records a single click for the given short code.
	Create(ctx context.Context, shortCode, ipAddress, userAgent string) error

	// CountByShortCode returns the all-time click count for the given short code.
	CountByShortCode(ctx context.Context, shortCode string) (int64, error)

	// CountByDay returns per-date click counts for clicks recorded at or after
	// since, in ascending date order.
	CountByDay(ctx context.Context, shortCode string, since time.Time) ([]models.DayCount, error)
}

// Visitor carries the optional request metadata captured with each click.
type Visitor struct {
	IPAddress string
	UserAgent string
}

// URLService provides methods to manage URL shortening and click analytics.
// The service uses repository interfaces to interact with the underlying database.
type URLService struct {
	urlRepo   URLRepository
	clickRepo ClickRepository
	logger    *slog.Logger
}

// NewURLService creates a new instance of URLService with the provided repositories.
func NewURLService(urlRepo URLRepository, clickRepo ClickRepository, logger *slog.Logger) *URLService {
	return &URLService{
		urlRepo:   urlRepo,
		clickRepo: clickRepo,
		logger:    logger,
	}
}

// ShortenURL persists the original URL under a short code and returns the
// created record. When customCode is non-empty it is validated for length and
// uniqueness and stored in a single insert. Otherwise the record is inserted
// first to obtain its id, and the code derived from the id in base62 is
// written back in a second update. The two-write sequence is deliberate: the
// code is a deterministic function of the assigned id, which is only known
// after the insert.
func (s *URLService) ShortenURL(ctx context.Context, originalURL, customCode string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	if customCode != "" {
		if n := utf8.RuneCountInString(customCode); n < minCustomCodeLength || n > maxCustomCodeLength {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCustomCode)
		}

		exists, err := s.urlRepo.ExistsByShortCode(ctx, customCode)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to check custom code: %w", op, err)
		}
		if exists {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		url, err := s.urlRepo.Create(ctx, customCode, originalURL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	url, err := s.urlRepo.CreateWithoutCode(ctx, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	shortCode := base62.Encode(uint64(url.ID))

	url, err = s.urlRepo.AssignShortCode(ctx, url.ID, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to assign short code: %w", op, err)
	}

	return url, nil
}

// ResolveShortCode retrieves the original URL associated with the provided
// short code and records a click for it. The click insert is best-effort: a
// failure is logged and the resolved URL is still returned. No click is
// recorded for an unknown code.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string, visitor Visitor) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if err := s.clickRepo.Create(ctx, shortCode, visitor.IPAddress, visitor.UserAgent); err != nil {
		s.logger.Error(
			"failed to record click",
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	}

	return url, nil
}

// GetURLStats returns the all-time click count and the day-bucketed click
// histogram over the trailing seven days for the provided short code. A code
// with no recorded clicks yields zero totals, not an error.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URLStats, error) {
	const op = "service.URLService.GetURLStats"

	total, err := s.clickRepo.CountByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count clicks: %w", op, err)
	}

	byDay, err := s.clickRepo.CountByDay(ctx, shortCode, time.Now().Add(-clickWindow))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to count clicks by day: %w", op, err)
	}

	return &models.URLStats{
		TotalClicks: total,
		ClicksByDay: byDay,
	}, nil
}
