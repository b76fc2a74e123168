package temporal

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestNow(t *testing.T) {
	tests := []struct {
		name     string
		instant  time.Time
		wantText string
		wantYear int
	}{
		{
			name:     "midday utc",
			instant:  time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			wantText: "2024-03-15 17:30:00 IST (UTC+05:30)",
			wantYear: 2024,
		},
		{
			name:     "utc new year's eve rolls into ist new year",
			instant:  time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC),
			wantText: "2025-01-01 01:30:00 IST (UTC+05:30)",
			wantYear: 2025,
		},
		{
			name:     "exactly at the ist midnight",
			instant:  time.Date(2025, 12, 31, 18, 30, 0, 0, time.UTC),
			wantText: "2026-01-01 00:00:00 IST (UTC+05:30)",
			wantYear: 2026,
		},
		{
			name:     "one second before the ist midnight",
			instant:  time.Date(2025, 12, 31, 18, 29, 59, 0, time.UTC),
			wantText: "2025-12-31 23:59:59 IST (UTC+05:30)",
			wantYear: 2025,
		},
		{
			name:     "non-utc input location is ignored",
			instant:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.FixedZone("PDT", -7*3600)),
			wantText: "2023-06-01 12:30:00 IST (UTC+05:30)",
			wantYear: 2023,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Now(fixed(tc.instant))
			assert.Equal(t, tc.wantText, got.NowText)
			assert.Equal(t, tc.wantYear, got.Year)
		})
	}
}

func TestNowYearMatchesText(t *testing.T) {
	start := time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48*4; i++ {
		instant := start.Add(time.Duration(i) * 15 * time.Minute)
		got := Now(fixed(instant))
		year, err := strconv.Atoi(got.NowText[:4])
		require.NoError(t, err)
		assert.Equal(t, year, got.Year, "instant %s", instant)
	}
}

func TestNowDefaultsToWallClock(t *testing.T) {
	got := Now(nil)
	assert.Contains(t, got.NowText, "IST")
	assert.GreaterOrEqual(t, got.Year, 2024)
}
