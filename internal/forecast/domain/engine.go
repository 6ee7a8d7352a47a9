package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/smallbiznis/stockroom/internal/calendar"
)

// Horizon is the number of projected days.
const Horizon = 10

var ErrNoData = errors.New("no_data")

// DailyUnits is the total units sold for one product on one date.
type DailyUnits struct {
	Date  calendar.Date
	Units int64
}

// Point is one projected day.
type Point struct {
	Date     calendar.Date `json:"date"`
	Quantity float64       `json:"quantity"`
}

// Forecast is the linear depletion projection for one product.
type Forecast struct {
	ProductID       int64     `json:"product_id"`
	InitialQuantity int64     `json:"initial_quantity"`
	CurrentQuantity int64     `json:"current_quantity"`
	AverageDelta    float64   `json:"average_delta"`
	Points          []Point   `json:"points"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Projection is the pure result of Project.
type Projection struct {
	CurrentQuantity int64
	AverageDelta    float64
	Points          []Point
}

// Project extrapolates the mean day-over-day change in units sold. Input order
// does not matter; entries sharing a date are summed. Quantities never go
// below zero.
func Project(initialQuantity int64, days []DailyUnits) (Projection, error) {
	if len(days) == 0 {
		return Projection{}, ErrNoData
	}
	series := collapse(days)

	var total int64
	for _, d := range series {
		total += d.Units
	}
	current := initialQuantity - total

	var deltaSum int64
	for i, d := range series {
		if i == 0 {
			deltaSum += d.Units
			continue
		}
		deltaSum += d.Units - series[i-1].Units
	}
	avg := float64(deltaSum) / float64(len(series))
	if avg <= 0 {
		avg = 0
	}

	last := series[len(series)-1].Date
	points := make([]Point, 0, Horizon)
	for i := 0; i < Horizon; i++ {
		q := float64(current) - float64(i)*avg
		if q < 0 {
			q = 0
		}
		points = append(points, Point{Date: last.AddDays(i + 1), Quantity: q})
	}

	return Projection{CurrentQuantity: current, AverageDelta: avg, Points: points}, nil
}

func collapse(days []DailyUnits) []DailyUnits {
	byDate := make(map[string]int, len(days))
	out := make([]DailyUnits, 0, len(days))
	for _, d := range days {
		key := d.Date.ISO()
		if idx, ok := byDate[key]; ok {
			out[idx].Units += d.Units
			continue
		}
		byDate[key] = len(out)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
