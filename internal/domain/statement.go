package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance reduces a statement left to right: credits add, debits subtract.
// Amounts are summed as decimals so long statements do not drift.
func Balance(statement []Operation) float64 {
	return balanceDecimal(statement).InexactFloat64()
}

// CanWithdraw reports whether amount fits in the statement's balance.
func CanWithdraw(statement []Operation, amount float64) bool {
	return balanceDecimal(statement).GreaterThanOrEqual(decimal.NewFromFloat(amount))
}

func balanceDecimal(statement []Operation) decimal.Decimal {
	total := decimal.Zero
	for _, op := range statement {
		amount := decimal.NewFromFloat(op.Amount)
		if op.Type == OperationCredit {
			total = total.Add(amount)
		} else {
			total = total.Sub(amount)
		}
	}
	return total
}

// FilterByDate returns the operations created on the same calendar day as
// date. Both sides are compared in date's location, so two instants a few
// hours apart on either side of midnight do not match.
func FilterByDate(statement []Operation, date time.Time) []Operation {
	loc := date.Location()
	y, m, d := date.Date()

	out := make([]Operation, 0)
	for _, op := range statement {
		oy, om, od := op.CreatedAt.In(loc).Date()
		if oy == y && om == m && od == d {
			out = append(out, op)
		}
	}
	return out
}

// ParseStatementDate parses the date query of GET /statement/date. A bare
// calendar date is interpreted in loc; RFC 3339 timestamps are converted to loc.
func ParseStatementDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, &ErrValidation{Field: "date", Message: "is required"}
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, &ErrValidation{Field: "date", Message: "expected YYYY-MM-DD or RFC 3339"}
}
