package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dayLayout        = "2006-01-02"
	compactDayLayout = "20060102"
	moneyPlaces      = 2
)

var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrTooManyDecimals = errors.New("amount has more than 2 decimal places")
	ErrZeroDivisor     = errors.New("divisor must be greater than zero")
)

// Clock is the time source for anything that depends on "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// CalendarDay returns the calendar date of t as observed in loc, expressed as
// midnight UTC so the value is stable regardless of where it is stored.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats a calendar day as YYYY-MM-DD.
func DayKey(day time.Time) string {
	return day.Format(dayLayout)
}

// CompactDay formats a calendar day as YYYYMMDD.
func CompactDay(day time.Time) string {
	return day.Format(compactDayLayout)
}

// ParseMoney parses a decimal string with at most 2 fractional digits.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Equal(d.Round(moneyPlaces)) {
		return decimal.Zero, ErrTooManyDecimals
	}
	return d, nil
}

// RoundMoney rounds half away from zero to 2 decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// FloorDiv returns floor(a / b) for non-negative a and positive b, exactly.
func FloorDiv(a, b decimal.Decimal) (int64, error) {
	if !b.IsPositive() {
		return 0, ErrZeroDivisor
	}
	q, _ := a.QuoRem(b, 0)
	return q.IntPart(), nil
}

// CeilDiv returns ceil(a / b) for non-negative a and positive b, exactly.
func CeilDiv(a, b decimal.Decimal) (int64, error) {
	if !b.IsPositive() {
		return 0, ErrZeroDivisor
	}
	q, r := a.QuoRem(b, 0)
	if r.IsPositive() {
		q = q.Add(decimal.NewFromInt(1))
	}
	return q.IntPart(), nil
}
