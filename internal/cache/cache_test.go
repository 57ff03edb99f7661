package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func TestTTLCache_SetGet(t *testing.T) {
	c := New(1, time.Minute)

	want := []point{{Date: "2024-01-01", Value: 70}, {Date: "2024-01-02", Value: 71}}
	require.NoError(t, c.Set("trend::weight::daily", want))

	var got []point
	require.True(t, c.Get("trend::weight::daily", &got))
	assert.Equal(t, want, got)

	var missing []point
	assert.False(t, c.Get("trend::pace::daily", &missing))
	assert.Nil(t, missing)
}

func TestTTLCache_ClearKinds(t *testing.T) {
	c := New(1, time.Minute)
	require.NoError(t, c.Set(Key("trend", "weight", "daily"), 1))
	require.NoError(t, c.Set(Key("trend", "pace", "weekly"), 2))
	require.NoError(t, c.Set(Key("records"), 3))
	require.NoError(t, c.Set(Key("trendline"), 4))
	require.NoError(t, c.Set(Key("cycle", 12), 5))
	assert.EqualValues(t, 5, c.Len())

	c.Clear("trend", "cycle")

	var v int
	assert.False(t, c.Get(Key("trend", "weight", "daily"), &v))
	assert.False(t, c.Get(Key("trend", "pace", "weekly"), &v))
	assert.False(t, c.Get(Key("cycle", 12), &v))
	require.True(t, c.Get(Key("records"), &v))
	assert.Equal(t, 3, v)
	// A kind only matches whole key segments.
	require.True(t, c.Get(Key("trendline"), &v))
	assert.Equal(t, 4, v)

	c.Clear()
	assert.EqualValues(t, 0, c.Len())
}

func TestTTLCache_DecodeMismatch(t *testing.T) {
	c := New(1, time.Minute)
	require.NoError(t, c.Set("k", "a string"))

	var n int
	assert.False(t, c.Get("k", &n))
	// The undecodable entry is dropped.
	assert.EqualValues(t, 0, c.Len())
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New(1, time.Second)
	require.NoError(t, c.Set("k", 1))

	time.Sleep(2100 * time.Millisecond)

	var v int
	assert.False(t, c.Get("k", &v))
}

func TestNewDefaults(t *testing.T) {
	c := New(0, 0)
	assert.Equal(t, DefaultTTL, c.ttl)
	assert.Equal(t, 300, c.expireSeconds())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "records", Key("records"))
	assert.Equal(t, "stats::2024-01-01::2024-01-31::run_count", Key("stats", "2024-01-01", "2024-01-31", "run_count"))
}
