package clock_test

import (
	"testing"
	"time"

	"hrms-lite/internal/shared/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed_TodayKeepsLocalDate(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 00:30 on the 2nd in Jakarta is still the 1st in UTC.
	c := clock.Fixed(time.Date(2025, 3, 2, 0, 30, 0, 0, jakarta))

	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), c.Today())
}

func TestNew_NilLocationIsUTC(t *testing.T) {
	today := clock.New(nil).Today()

	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour())
}

func TestParseDate(t *testing.T) {
	d, err := clock.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, err = clock.ParseDate("2023-02-29")
	assert.Error(t, err)
}
