package domain

import (
	"testing"
	"time"

	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) calendar.Date { return calendar.New(2024, time.January, d) }

func quantities(points []Point) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.Quantity)
	}
	return out
}

func TestProjectScenario(t *testing.T) {
	proj, err := Project(100, []DailyUnits{
		{Date: day(1), Units: 10},
		{Date: day(2), Units: 20},
		{Date: day(3), Units: 30},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(40), proj.CurrentQuantity)
	assert.Equal(t, 10.0, proj.AverageDelta)
	assert.Equal(t, []float64{40, 30, 20, 10, 0, 0, 0, 0, 0, 0}, quantities(proj.Points))
	require.Len(t, proj.Points, Horizon)
	assert.Equal(t, "01/04/2024", proj.Points[0].Date.String())
	assert.Equal(t, "01/13/2024", proj.Points[Horizon-1].Date.String())
}

func TestProjectNoData(t *testing.T) {
	_, err := Project(100, nil)
	require.ErrorIs(t, err, ErrNoData)
}

func TestProjectDecliningSalesHoldsFlat(t *testing.T) {
	// 30 then 10: deltas 30, -20 average to 5.
	proj, err := Project(100, []DailyUnits{
		{Date: day(1), Units: 30},
		{Date: day(2), Units: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, proj.AverageDelta)
	assert.Equal(t, 60.0, proj.Points[0].Quantity)

	proj, err = Project(100, []DailyUnits{
		{Date: day(1), Units: 0},
		{Date: day(2), Units: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, proj.AverageDelta)
	for _, p := range proj.Points {
		assert.Equal(t, 100.0, p.Quantity)
	}
}

func TestProjectSumsSameDateAndSorts(t *testing.T) {
	proj, err := Project(50, []DailyUnits{
		{Date: day(5), Units: 4},
		{Date: day(2), Units: 3},
		{Date: day(2), Units: 1},
	})
	require.NoError(t, err)
	// series 4, 4: deltas 4, 0.
	assert.Equal(t, int64(42), proj.CurrentQuantity)
	assert.Equal(t, 2.0, proj.AverageDelta)
	assert.Equal(t, "01/06/2024", proj.Points[0].Date.String())
}

func TestProjectNonIncreasingNonNegative(t *testing.T) {
	series := [][]int64{
		{1},
		{5, 9, 2, 14},
		{100, 1, 1, 1},
		{3, 3, 3, 3, 3},
		{0, 7, 0, 7},
	}
	for _, units := range series {
		days := make([]DailyUnits, 0, len(units))
		for i, u := range units {
			days = append(days, DailyUnits{Date: day(i + 1), Units: u})
		}
		proj, err := Project(120, days)
		require.NoError(t, err)

		prev := proj.Points[0].Quantity
		for _, p := range proj.Points {
			assert.GreaterOrEqual(t, p.Quantity, 0.0)
			assert.LessOrEqual(t, p.Quantity, prev)
			prev = p.Quantity
		}
	}
}
