package diary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/and161185/lovary/internal/model"
)

func entriesOn(year int, month time.Month, days ...int) []model.Entry {
	out := make([]model.Entry, 0, len(days))
	for _, d := range days {
		out = append(out, model.Entry{Day: model.Date(year, month, d)})
	}
	return out
}

func TestAggregateMonth_February2024(t *testing.T) {
	t.Parallel()
	own := entriesOn(2024, time.February, 1, 5)
	partner := entriesOn(2024, time.February, 1, 2)
	today := model.Date(2024, time.February, 10)

	got := AggregateMonth(own, partner, 2024, time.February, today)
	require.Len(t, got, 29)

	for i, st := range got {
		day := i + 1
		assert.Equal(t, model.Date(2024, time.February, day), st.Date)
		switch day {
		case 1:
			assert.True(t, st.HasOwnEntry)
			assert.True(t, st.HasPartnerEntry)
			assert.True(t, st.IsComplete)
		case 2:
			assert.False(t, st.HasOwnEntry)
			assert.True(t, st.HasPartnerEntry)
			assert.False(t, st.IsComplete)
		case 5:
			assert.True(t, st.HasOwnEntry)
			assert.False(t, st.HasPartnerEntry)
			assert.False(t, st.IsComplete)
		default:
			assert.False(t, st.HasOwnEntry, "day %d", day)
			assert.False(t, st.HasPartnerEntry, "day %d", day)
			assert.False(t, st.IsComplete, "day %d", day)
		}
	}

	assert.Equal(t, model.DayPast, got[8].Status)
	assert.Equal(t, model.DayToday, got[9].Status)
	assert.Equal(t, model.DayFuture, got[10].Status)
}

func TestAggregateMonth_IgnoresOtherMonthsAndCountsTargetDay(t *testing.T) {
	t.Parallel()
	// Written at 02:00 on March 1st but counts for February 29th.
	late := model.Entry{
		Day:       model.Date(2024, time.February, 29),
		CreatedAt: time.Date(2024, time.March, 1, 2, 0, 0, 0, time.UTC),
	}
	own := append(entriesOn(2024, time.January, 3), late)

	got := AggregateMonth(own, nil, 2024, time.February, model.Date(2024, time.March, 5))
	require.Len(t, got, 29)
	assert.False(t, got[2].HasOwnEntry)
	assert.True(t, got[28].HasOwnEntry)
	for _, st := range got {
		assert.Equal(t, model.DayPast, st.Status)
	}
}

func TestAggregateMonth_Lengths(t *testing.T) {
	t.Parallel()
	today := model.Date(2000, time.January, 1)
	assert.Len(t, AggregateMonth(nil, nil, 2023, time.February, today), 28)
	assert.Len(t, AggregateMonth(nil, nil, 2024, time.April, today), 30)
	assert.Len(t, AggregateMonth(nil, nil, 2024, time.December, today), 31)
}

func TestMonthRange(t *testing.T) {
	t.Parallel()
	first, last := MonthRange(2024, time.February)
	assert.Equal(t, model.Date(2024, time.February, 1), first)
	assert.Equal(t, model.Date(2024, time.February, 29), last)
}
