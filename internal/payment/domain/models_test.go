package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func completed(date string, amount float64) Payment {
	return Payment{Amount: amount, Date: date, Status: StatusCompleted}
}

func TestComputeStats(t *testing.T) {
	// A Wednesday; the week bucket opens on Sunday the 17th.
	now := time.Date(2024, 3, 20, 15, 30, 0, 0, time.UTC)

	payments := []Payment{
		completed("2024-03-20", 100), // today
		completed("2024-03-17", 50),  // Sunday, week boundary
		completed("2024-03-16", 25),  // Saturday, prior week
		completed("2024-03-01", 200), // month boundary
		completed("2024-02-28", 999), // prior month
		{Amount: 500, Date: "2024-03-20", Status: StatusPending},
		{Amount: 70, Date: "not-a-date", Status: StatusCompleted},
	}

	stats := ComputeStats(payments, now)

	require.Equal(t, Bucket{Amount: 100, Count: 1}, stats.Today)
	require.Equal(t, Bucket{Amount: 150, Count: 2}, stats.ThisWeek)
	require.Equal(t, Bucket{Amount: 375, Count: 4}, stats.ThisMonth)
}

func TestComputeStatsOnSunday(t *testing.T) {
	// On a Sunday the week bucket holds only that day, regardless of the
	// wall-clock time of the rollup.
	now := time.Date(2024, 3, 17, 18, 0, 0, 0, time.UTC)

	payments := []Payment{
		completed("2024-03-17", 80),
		completed("2024-03-16", 40),
	}

	stats := ComputeStats(payments, now)
	require.Equal(t, Bucket{Amount: 80, Count: 1}, stats.ThisWeek)
	require.Equal(t, Bucket{Amount: 120, Count: 2}, stats.ThisMonth)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	require.Equal(t, Stats{}, stats)
}

func TestParseMethod(t *testing.T) {
	for _, raw := range []string{"cash", "ecocash", "bank_transfer", "card"} {
		m, err := ParseMethod(raw)
		require.NoError(t, err)
		require.Equal(t, Method(raw), m)
	}
	_, err := ParseMethod("cheque")
	require.ErrorIs(t, err, ErrInvalidMethod)
}
