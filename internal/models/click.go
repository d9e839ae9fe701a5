package models

import "time"

// Click represents a single recorded redirect for a short code.
type Click struct {
	// ID is the unique identifier for the click record.
	ID int64
	// ShortCode references the URL the click belongs to by value. There is no
	// foreign key; clicks survive independently of the urls table.
	ShortCode string
	// IPAddress is the source address of the visitor, if known.
	IPAddress string
	// UserAgent is the visitor's User-Agent header, if known.
	UserAgent string
	// ClickedAt is the timestamp of the redirect.
	ClickedAt time.Time
}

// DayCount is the number of clicks recorded on a single calendar date.
type DayCount struct {
	// Date is the calendar date in ISO-8601 form (YYYY-MM-DD).
	Date string
	// Clicks is the number of clicks recorded on that date.
	Clicks int64
}

// URLStats aggregates the click history of a short code.
type URLStats struct {
	// TotalClicks is the all-time click count.
	TotalClicks int64
	// ClicksByDay buckets the last seven days of clicks by calendar date,
	// in ascending chronological order.
	ClicksByDay []DayCount
}
