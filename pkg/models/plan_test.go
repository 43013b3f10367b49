package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlanSet(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	set := NewPlanSet(now)

	require.Len(t, set.Plans, 1)
	assert.Equal(t, "新しいプラン", set.Plans[0].Name)
	assert.Equal(t, "2026-03-14", set.Plans[0].Date)
	assert.Empty(t, set.Plans[0].Items)
	assert.Equal(t, set.Plans[0].ID, set.CurrentID)
	assert.Len(t, set.Categories, 5)
}

func TestPlanSetWireFormat(t *testing.T) {
	set := PlanSet{
		Plans:      []Plan{{ID: "p1"}},
		Categories: []Category{{ID: "food"}},
		CurrentID:  "p1",
	}

	raw, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cats"`)
	assert.Contains(t, string(raw), `"curId"`)

	var back PlanSet
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "p1", back.CurrentID)
	require.Len(t, back.Categories, 1)
}

func TestBudgetAmount(t *testing.T) {
	cases := map[string]int{
		"":       0,
		"abc":    0,
		"500":    500,
		"500円":   500,
		" 1200 ": 1200,
		"-300":   -300,
		"12.5":   12,
		"¥500":   0,
	}
	for in, want := range cases {
		assert.Equal(t, want, Item{Budget: in}.BudgetAmount(), "budget %q", in)
	}
}

func TestAddHour(t *testing.T) {
	assert.Equal(t, "10:00", AddHour("09:00", 1))
	assert.Equal(t, "23:30", AddHour("22:30", 1))
	// Hour clamps at 23, minutes untouched
	assert.Equal(t, "23:45", AddHour("23:45", 1))
	assert.Equal(t, "23:00", AddHour("22:00", 5))
	// Malformed input falls back to the day start
	assert.Equal(t, DayStart, AddHour("", 1))
	assert.Equal(t, DayStart, AddHour("junk", 1))
}

func TestSplitClock(t *testing.T) {
	h, m, ok := SplitClock("09:30")
	require.True(t, ok)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	_, _, ok = SplitClock("0930")
	assert.False(t, ok)
	_, _, ok = SplitClock("ab:cd")
	assert.False(t, ok)
}
