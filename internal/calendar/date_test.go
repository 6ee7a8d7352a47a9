package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoundary(t *testing.T) {
	d, err := Parse("03/07/2024")
	require.NoError(t, err)
	assert.Equal(t, New(2024, time.March, 7), d)
	assert.Equal(t, "03/07/2024", d.String())
	assert.Equal(t, "2024-03-07", d.ISO())
	assert.Equal(t, "03/2024", d.MonthKey())
}

func TestParseRejectsISO(t *testing.T) {
	_, err := Parse("2024-03-07")
	assert.True(t, errors.Is(err, ErrMalformedDate))
}

func TestNormalizeAcceptsLegacyFormats(t *testing.T) {
	want := New(2024, time.December, 31)
	for _, in := range []string{"12/31/2024", "2024-12-31", "  2024-12-31 "} {
		got, err := Normalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "31/12/2024", "yesterday", "2024/12/31"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrMalformedDate, in)
	}
}

func TestAddDaysCrossesMonth(t *testing.T) {
	d := New(2024, time.February, 28).AddDays(2)
	assert.Equal(t, New(2024, time.March, 1), d)
}

func TestScanVariants(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-05-01"))
	assert.Equal(t, New(2024, time.May, 1), d)

	require.NoError(t, d.Scan([]byte("2024-05-02")))
	assert.Equal(t, New(2024, time.May, 2), d)

	require.NoError(t, d.Scan(time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, New(2024, time.May, 3), d)

	require.NoError(t, d.Scan("2024-05-04 00:00:00+00:00"))
	assert.Equal(t, New(2024, time.May, 4), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestValueStoresISO(t *testing.T) {
	v, err := New(2024, time.January, 9).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONRoundTripUsesISO(t *testing.T) {
	b, err := json.Marshal(struct{ D Date }{New(2023, time.July, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"D":"2023-07-04"}`, string(b))
}

func TestSameMonth(t *testing.T) {
	assert.True(t, New(2024, 1, 1).SameMonth(New(2024, 1, 31)))
	assert.False(t, New(2024, 1, 1).SameMonth(New(2025, 1, 1)))
}
