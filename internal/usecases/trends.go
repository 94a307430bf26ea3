package usecases

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"moodtrack/internal/models"
)

const isoDay = "2006-01-02"

var weekDayLabels = [7]string{"M", "T", "W", "T", "F", "S", "S"}

func ParsePeriod(s string) (models.Period, error) {
	switch models.Period(s) {
	case "", models.PeriodWeek:
		return models.PeriodWeek, nil
	case models.PeriodMonth:
		return models.PeriodMonth, nil
	default:
		return "", &ValidationError{Reason: fmt.Sprintf("unknown period %q (want week or month)", s)}
	}
}

// ParseDay parses a YYYY-MM-DD anchor in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(isoDay, s, loc)
	if err != nil {
		return time.Time{}, &ValidationError{Reason: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", s)}
	}
	return d, nil
}

// EntryDay returns the calendar day an entry pertains to, in loc.
// Plain dates are taken as they are; instants are converted to loc first.
func EntryDay(date string, loc *time.Location) (string, bool) {
	if d, err := time.ParseInLocation(isoDay, date, loc); err == nil {
		return d.Format(isoDay), true
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.In(loc).Format(isoDay), true
	}
	return "", false
}

// newer reports whether a should win over b for the same day and category:
// the later timestamp wins, and on equal timestamps the higher id.
func newer(a, b models.MoodEntry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}

// BuildTrend lays out the days of the period containing anchor and picks at
// most one level per day and category.
func BuildTrend(entries []models.MoodEntry, period models.Period, anchor time.Time, loc *time.Location) (models.Trend, error) {
	if loc == nil {
		loc = time.Local
	}

	a := anchor.In(loc)
	var start time.Time
	var days int

	switch period {
	case models.PeriodWeek, "":
		period = models.PeriodWeek
		offset := (int(a.Weekday()) + 6) % 7
		start = time.Date(a.Year(), a.Month(), a.Day()-offset, 0, 0, 0, 0, loc)
		days = 7
	case models.PeriodMonth:
		start = time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, loc)
		days = time.Date(a.Year(), a.Month()+1, 0, 0, 0, 0, 0, loc).Day()
	default:
		return models.Trend{}, &ValidationError{Reason: fmt.Sprintf("unknown period %q (want week or month)", period)}
	}

	index := make(map[string]int, days)
	isoDays := make([]string, days)
	for i := 0; i < days; i++ {
		iso := time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, loc).Format(isoDay)
		isoDays[i] = iso
		index[iso] = i
	}

	type slot struct {
		day      int
		category string
	}
	winners := make(map[slot]models.MoodEntry)
	extra := make(map[string]struct{})

	for _, e := range entries {
		iso, ok := EntryDay(e.Date, loc)
		if !ok {
			continue
		}
		i, ok := index[iso]
		if !ok {
			continue
		}
		k := slot{day: i, category: e.Type}
		if cur, seen := winners[k]; !seen || newer(e, cur) {
			winners[k] = e
		}
		extra[e.Type] = struct{}{}
	}

	categories := make([]string, 0, len(models.MoodTypes)+len(extra))
	for _, t := range models.MoodTypes {
		categories = append(categories, t.ID)
		delete(extra, t.ID)
	}
	others := make([]string, 0, len(extra))
	for c := range extra {
		others = append(others, c)
	}
	sort.Strings(others)
	categories = append(categories, others...)

	trend := models.Trend{
		Period: period,
		Start:  isoDays[0],
		End:    isoDays[days-1],
		Days:   make([]models.TrendDay, days),
	}

	for i := 0; i < days; i++ {
		d := time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, loc)

		label := strconv.Itoa(d.Day())
		if period == models.PeriodWeek {
			label = weekDayLabels[i]
		}

		values := make(map[string]*int, len(categories))
		for _, c := range categories {
			values[c] = nil
			if e, ok := winners[slot{day: i, category: c}]; ok {
				level := e.MoodLevel
				values[c] = &level
			}
		}

		trend.Days[i] = models.TrendDay{
			Day:    label,
			Date:   d.Format("Jan 02"),
			ISO:    isoDays[i],
			Values: values,
		}
	}

	return trend, nil
}
