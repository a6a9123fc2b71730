package projector

import (
	"strconv"

	"github.com/dtnitsch/har2csv/pkg/flatten"
	"github.com/dtnitsch/har2csv/pkg/jsonvalue"
)

const (
	KeyRating        = "rating"
	KeyAllStarHost   = "isAllStarHost"
	KeyAvgDailyPrice = "avgDailyPrice.amount"
	KeyTrips         = "completedTrips"

	defaultRating  = 5.0
	allStarBonus   = 1.1
	allStarLiteral = "True"
)

// Profitability scores a listing as
// round(avgDailyPrice.amount * completedTrips * rating/5 * bonus, 2).
//
// rating defaults to 5 when absent, null, or not a number; price and trips
// default to 0. The 1.1 bonus applies only when isAllStarHost is the string
// "True": a JSON boolean true does not qualify.
func Profitability(rec *flatten.Record) float64 {
	rating := number(rec, KeyRating, defaultRating)
	ratingFactor := rating / 5.0

	bonus := 1.0
	if v, ok := rec.Get(KeyAllStarHost); ok {
		if s, isStr := v.Str(); isStr && s == allStarLiteral {
			bonus = allStarBonus
		}
	}

	price := number(rec, KeyAvgDailyPrice, 0)
	trips := number(rec, KeyTrips, 0)

	return round2(price * trips * ratingFactor * bonus)
}

// Annotate stores the profitability score in rec under column.
func Annotate(rec *flatten.Record, column string) float64 {
	score := Profitability(rec)
	rec.Set(column, jsonvalue.NewFloat(score))
	return score
}

func number(rec *flatten.Record, key string, def float64) float64 {
	v, ok := rec.Get(key)
	if !ok {
		return def
	}
	f, ok := v.Float()
	if !ok {
		return def
	}
	return f
}

// round2 rounds the exact binary value of f to two decimals, ties to even.
func round2(f float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	return v
}
