package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTCTimeParsesNaiveTimestamps(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{`"2026-08-28T09:15:30.123456"`, time.Date(2026, 8, 28, 9, 15, 30, 123456000, time.UTC)},
		{`"2026-08-28T09:15:30"`, time.Date(2026, 8, 28, 9, 15, 30, 0, time.UTC)},
		{`"2026-08-28T09:15:30Z"`, time.Date(2026, 8, 28, 9, 15, 30, 0, time.UTC)},
	}
	for _, tc := range cases {
		var ts UTCTime
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &ts), tc.raw)
		assert.True(t, ts.Equal(tc.want), "parsed %s as %v, want %v", tc.raw, ts.Time, tc.want)
	}
}

func TestUTCTimeNullAndEmpty(t *testing.T) {
	for _, raw := range []string{`""`, `null`} {
		var ts UTCTime
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, ts.IsZero())
	}
}

func TestUTCTimeRejectsGarbage(t *testing.T) {
	var ts UTCTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestThreadDecoding(t *testing.T) {
	raw := `{"thread_id":7,"created_at":"2026-08-20T10:00:00","updated_at":"2026-08-21T11:30:00.500000"}`
	var thread Thread
	require.NoError(t, json.Unmarshal([]byte(raw), &thread))
	assert.Equal(t, 7, thread.ThreadID)
	assert.Equal(t, 2026, thread.UpdatedAt.Year())
}
