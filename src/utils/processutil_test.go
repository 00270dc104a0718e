package utils

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime_MixedFormats(t *testing.T) {
	want := time.Date(2021, 10, 1, 7, 30, 0, 0, time.UTC)

	cases := map[string]string{
		"canonical":       "2021-10-01 07:30:00",
		"fractional":      "2021-10-01 07:30:00.000",
		"iso T":           "2021-10-01T07:30:00",
		"rfc3339 utc":     "2021-10-01T07:30:00Z",
		"offset":          "2021-10-01T03:30:00-04:00",
		"space offset":    "2021-10-01 07:30:00+00:00",
		"no seconds":      "2021-10-01 07:30",
		"slashes":         "2021/10/01 07:30:00",
		"us":              "10/1/2021 7:30",
		"us seconds":      "10/1/2021 07:30:00",
		"us pm":           "10/1/2021 7:30 AM",
		"short year":      "10/1/21 7:30",
		"utc suffix":      "2021-10-01 07:30:00 UTC",
		"loose unpadded":  "2021-10-1 7:30",
		"padded by trims": "  2021-10-01 07:30:00 ",
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTime(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestParseTime_DateOnly(t *testing.T) {
	got, err := ParseTime("2021-10-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTime_NumericIsYear(t *testing.T) {
	got, err := ParseTime("2021")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTime("2021-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC), got)

	// csv里的序列号不会被当成1900年起的天数
	for _, in := range []string{"44470.3125", "44470", "7"} {
		_, err := ParseTime(in)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), "input %q", in)
	}
}

func TestParseTime_Empty(t *testing.T) {
	got, err := ParseTime("   ")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseTime_Invalid(t *testing.T) {
	for _, in := range []string{"not a date", "yesterday", "2021-13-45 99:99"} {
		_, err := ParseTime(in)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), "input %q", in)
		assert.Equal(t, in, pe.Value)
	}
}

func TestHoursBetween(t *testing.T) {
	created := time.Date(2021, 10, 1, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, 5.0, HoursBetween(created, created.Add(5*time.Hour)))
	assert.Equal(t, -1.5, HoursBetween(created, created.Add(-90*time.Minute)))
	assert.True(t, math.IsNaN(HoursBetween(time.Time{}, created)))
}

func TestSubSeriesHours(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"2021-10-01 12:00:00", "10/2/2021 6:00", ""}, series.String, "Start"),
		series.New([]string{"2021-10-01 07:00:00", "2021-10-01 18:00:00", "2021-10-01 18:00:00"}, series.String, "Created At"),
	)

	out, err := SubSeriesHours(df, "Start", "Created At", "Lead")
	require.NoError(t, err)

	lead := out.Col("Lead").Float()
	require.Len(t, lead, 3)
	assert.Equal(t, 5.0, lead[0])
	assert.Equal(t, 12.0, lead[1])
	assert.True(t, math.IsNaN(lead[2]))
}

func TestSubSeriesHours_Errors(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"garbage"}, series.String, "Start"),
		series.New([]string{"2021-10-01 07:00:00"}, series.String, "Created At"),
	)

	_, err := SubSeriesHours(df, "Start", "Created At", "Lead")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Start", pe.Column)
	assert.Equal(t, 0, pe.Row)

	_, err = SubSeriesHours(df, "End", "Created At", "Lead")
	assert.Error(t, err)
}

func TestNormalizeTimeColumn(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"10/1/2021 7:30", "", "2021-10-02T08:00:00Z"}, series.String, "Created At"),
	)

	out, err := NormalizeTimeColumn(df, "Created At")
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-10-01 07:30:00", "", "2021-10-02 08:00:00"}, out.Col("Created At").Records())
}

func TestFormatAndParseFloat(t *testing.T) {
	assert.Equal(t, "", FormatFloat(math.NaN()))
	assert.Equal(t, "3.5", FormatFloat(3.5))
	assert.Equal(t, "24", FormatFloat(24))

	v, err := ParseFloat("")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	v, err = ParseFloat(" 12.25 ")
	require.NoError(t, err)
	assert.Equal(t, 12.25, v)

	_, err = ParseFloat("abc")
	assert.Error(t, err)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]int{1, 2}, 3))
}
