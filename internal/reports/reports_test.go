package reports

import (
	"testing"
	"time"

	"invoiceflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func record(date string, profit float64) models.SalesRecord {
	return models.SalesRecord{SaleDate: date, TotalProfit: profit}
}

func TestBuild_CustomDailyExample(t *testing.T) {
	records := []models.SalesRecord{
		record("2024-01-02", 50),
		record("2024-01-01", 100),
		record("2024-01-01", -30),
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, ist)

	rep, err := Build(records, Query{Window: WindowCustom, From: "2024-01-01", To: "2024-01-02"}, now, ist)
	require.NoError(t, err)

	assert.Equal(t, Daily, rep.Granularity)
	assert.Equal(t, []Point{
		{Date: "2024-01-01", Profit: 100, Loss: 30},
		{Date: "2024-01-02", Profit: 50, Loss: 0},
	}, rep.Points)
	assert.Equal(t, Summary{TotalProfit: 150, TotalLoss: 30, Net: 120}, rep.Summary)
	assert.False(t, rep.Empty)
}

func TestBuild_EmptyWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, ist)

	rep, err := Build([]models.SalesRecord{record("2023-01-01", 10)}, Query{Window: WindowToday}, now, ist)
	require.NoError(t, err)

	assert.NotNil(t, rep.Points)
	assert.Empty(t, rep.Points)
	assert.True(t, rep.Empty)
	assert.Equal(t, Summary{}, rep.Summary)
}

func TestAggregate_MonthlyOverNinetyDays(t *testing.T) {
	records := []models.SalesRecord{
		record("2024-03-15", 20),
		record("2024-01-05", 10),
		record("2024-01-20", -4),
		record("2023-12-31", 99),
		record("not-a-date", 1000),
	}
	rng := Range{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, ist),
		End:   EndOfDay(time.Date(2024, 6, 30, 0, 0, 0, 0, ist), ist),
	}

	points, gran := Aggregate(records, rng, ist)

	assert.Equal(t, Monthly, gran)
	assert.Equal(t, []Point{
		{Date: "Jan 2024", Profit: 10, Loss: 4},
		{Date: "Mar 2024", Profit: 20, Loss: 0},
	}, points)
}

func TestAggregate_AcceptsTimestamps(t *testing.T) {
	rng := Range{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   EndOfDay(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC),
	}
	points, _ := Aggregate([]models.SalesRecord{record("2024-01-01T18:30:00Z", 5)}, rng, time.UTC)
	assert.Equal(t, []Point{{Date: "2024-01-01", Profit: 5}}, points)
}

func TestBounds(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 9, 30, 0, 0, ist)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, ist) }

	tests := []struct {
		window Window
		start  time.Time
		end    time.Time
	}{
		{WindowToday, day(2024, 5, 15), EndOfDay(now, ist)},
		{WindowLast7Days, day(2024, 5, 9), EndOfDay(now, ist)},
		{WindowLast30Days, day(2024, 4, 16), EndOfDay(now, ist)},
		{WindowThisWeek, day(2024, 5, 12), EndOfDay(now, ist)},
		{WindowThisMonth, day(2024, 5, 1), EndOfDay(now, ist)},
		{WindowThisYear, day(2024, 1, 1), EndOfDay(now, ist)},
		{WindowLastYear, day(2023, 1, 1), EndOfDay(day(2023, 12, 31), ist)},
	}
	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			rng, err := Bounds(Query{Window: tt.window}, now, ist, nil)
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(rng.Start), "start %s", rng.Start)
			assert.True(t, tt.end.Equal(rng.End), "end %s", rng.End)
		})
	}
}

func TestBounds_AllTimeUsesEarliestRecord(t *testing.T) {
	now := time.Date(2024, 5, 15, 9, 30, 0, 0, ist)
	records := []models.SalesRecord{record("2022-07-04", 1), record("2023-01-01", 1), record("", 1)}

	rng, err := Bounds(Query{Window: WindowAllTime}, now, ist, records)
	require.NoError(t, err)

	assert.True(t, time.Date(2022, 7, 4, 0, 0, 0, 0, ist).Equal(rng.Start))
	assert.True(t, rng.Monthly())
}

func TestBounds_CustomValidation(t *testing.T) {
	now := time.Now()
	_, err := Bounds(Query{Window: WindowCustom, From: "2024-01-02"}, now, ist, nil)
	assert.ErrorIs(t, err, ErrCustomRange)

	_, err = Bounds(Query{Window: WindowCustom, From: "2024-01-02", To: "2024-01-01"}, now, ist, nil)
	assert.ErrorIs(t, err, ErrCustomRange)
}

func TestEndOfDay(t *testing.T) {
	end := EndOfDay(time.Date(2024, 1, 1, 15, 0, 0, 0, ist), ist)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
	assert.Equal(t, 999*int(time.Millisecond), end.Nanosecond())
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, WindowThisMonth, w)

	w, err = ParseWindow("LAST_YEAR")
	require.NoError(t, err)
	assert.Equal(t, WindowLastYear, w)

	_, err = ParseWindow("fortnight")
	assert.ErrorIs(t, err, ErrUnknownWindow)
}
