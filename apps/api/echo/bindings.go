package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studsight/studsight/core"
)

// NowFunc returns the current time; tests pin it.
var NowFunc = func() time.Time { return time.Now().UTC() }

// DateRange binds optional `from` and `to` query params (YYYY-MM-DD).
// Defaults to the current ISO week when both are omitted.
type DateRange struct {
	From time.Time
	To   time.Time
}

func bindDateRange(ctx echo.Context) (DateRange, error) {
	now := NowFunc()
	// Monday of the current week through Sunday
	offset := int(now.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1-offset)
	rng := DateRange{From: monday, To: monday.AddDate(0, 0, 6)}

	if raw := ctx.QueryParam("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return DateRange{}, core.NewValidationError(err, core.FieldError{Field: "from", Error: "invalid date, expected YYYY-MM-DD"})
		}
		rng.From = from
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return DateRange{}, core.NewValidationError(err, core.FieldError{Field: "to", Error: "invalid date, expected YYYY-MM-DD"})
		}
		rng.To = to
	}
	return rng, nil
}
