package repository

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// parseNullableDecimal parses a sql.NullString into a decimal.NullDecimal.
// Returns an invalid value if the column is NULL, empty, or fails to parse.
func parseNullableDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid || s.String == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// nullableDecimalToValue converts a decimal.NullDecimal to a value suitable
// for SQLite storage. Amounts are stored as text to keep full precision.
func nullableDecimalToValue(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

// sortableTime is RFC3339 with a fixed-width fraction so rows sort as text.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(sortableTime)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
