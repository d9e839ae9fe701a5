package models

import "time"

// URL represents a shortened URL and its associated metadata.
type URL struct {
	// ID is the unique identifier for the shortened URL record.
	ID int64
	// ShortCode is the short code associated with the original URL. It is
	// either supplied by the caller or derived from ID in base62.
	ShortCode string
	// OriginalURL is the original, full-length URL that the short code points to.
	OriginalURL string
	// CreatedAt is the timestamp indicating when the shortened URL was created.
	CreatedAt time.Time
}
