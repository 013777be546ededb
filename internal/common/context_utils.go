package common

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
)

// DefaultPageSize is the fixed page size of every catalog listing.
const DefaultPageSize = 10

// DateLayout is the wire format of dates in forms and query strings.
const DateLayout = "2006-01-02"

const maxSearchLength = 100

// WithSessionID stores the session id in ctx
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// GetSessionIDFromContext extracts the session id from ctx
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

// MaxPage caps page numbers so offsets stay within Postgres' bigint range.
const MaxPage = math.MaxInt32

// ParsePage parses a 1-based page number, coercing anything invalid to 1.
// Pages past MaxPage are clamped to it.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return MaxPage
	}
	if err != nil || page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

// PageOffset returns the row offset of page for the given page size. The
// result saturates instead of overflowing.
func PageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return 0
	}
	if page-1 > (math.MaxInt-pageSize)/pageSize {
		return math.MaxInt - pageSize
	}
	return (page - 1) * pageSize
}

// SanitizeSearchQuery trims a free-text search term and caps its length.
func SanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	for utf8.RuneCountInString(query) > maxSearchLength {
		_, size := utf8.DecodeLastRuneInString(query)
		query = query[:len(query)-size]
	}
	return query
}

// Today truncates now to its calendar date at midnight UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC date
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}
