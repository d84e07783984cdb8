package diary

import (
	"time"

	"github.com/and161185/lovary/internal/model"
)

// AggregateMonth builds one status per calendar day of year/month. Entries are
// keyed by their target day; entries outside the month are ignored. Reveal
// rules do not apply here.
func AggregateMonth(own, partner []model.Entry, year int, month time.Month, today model.Day) []model.MonthDayStatus {
	ownDays := daysOfMonth(own, year, month)
	partnerDays := daysOfMonth(partner, year, month)

	n := model.DaysIn(year, month)
	out := make([]model.MonthDayStatus, 0, n)
	for d := 1; d <= n; d++ {
		date := model.Date(year, month, d)
		st := model.MonthDayStatus{
			Date:            date,
			Status:          classify(date, today),
			HasOwnEntry:     ownDays[d],
			HasPartnerEntry: partnerDays[d],
		}
		st.IsComplete = st.HasOwnEntry && st.HasPartnerEntry
		out = append(out, st)
	}
	return out
}

func classify(d, today model.Day) model.DayStatus {
	switch {
	case d.Before(today):
		return model.DayPast
	case d == today:
		return model.DayToday
	default:
		return model.DayFuture
	}
}

func daysOfMonth(entries []model.Entry, year int, month time.Month) map[int]bool {
	set := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.Day.Year == year && e.Day.Month == month {
			set[e.Day.Day] = true
		}
	}
	return set
}

// MonthRange returns the first and last day of year/month.
func MonthRange(year int, month time.Month) (model.Day, model.Day) {
	return model.Date(year, month, 1), model.Date(year, month, model.DaysIn(year, month))
}
