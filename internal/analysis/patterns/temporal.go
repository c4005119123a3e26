package patterns

import (
	"math"
	"sort"
	"time"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

// Temporal summarises daily citation volume. It returns nil when fewer than
// domain.MinTemporalDays distinct UTC days were observed.
func Temporal(events []domain.CitationEvent) *domain.TemporalPattern {
	daily := make(map[time.Time]int)
	var weekdays [7]int
	for _, e := range events {
		t := e.ObservedAt.UTC()
		daily[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)]++
		weekdays[t.Weekday()]++
	}
	if len(daily) < domain.MinTemporalDays {
		return nil
	}

	days := make([]domain.DayCount, 0, len(daily))
	for d, n := range daily {
		days = append(days, domain.DayCount{Day: d, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })

	tp := &domain.TemporalPattern{Days: len(days), Spikes: []domain.DayCount{}}
	for _, d := range days {
		tp.Citations += d.Count
		tp.PeakDaily = max(tp.PeakDaily, d.Count)
	}
	tp.AvgDaily = float64(tp.Citations) / float64(tp.Days)

	// Sample standard deviation over observed days.
	ss := 0.0
	for _, d := range days {
		diff := float64(d.Count) - tp.AvgDaily
		ss += diff * diff
	}
	tp.Volatility = math.Sqrt(ss/float64(tp.Days-1)) / tp.AvgDaily

	for _, d := range days {
		if float64(d.Count) > tp.AvgDaily*domain.SpikeFactor {
			tp.Spikes = append(tp.Spikes, d)
		}
	}

	busiest, quietest := -1, -1
	for wd, n := range weekdays {
		if n == 0 {
			continue
		}
		if busiest < 0 || n > weekdays[busiest] {
			busiest = wd
		}
		if quietest < 0 || n < weekdays[quietest] {
			quietest = wd
		}
	}
	tp.BusiestWeekday = time.Weekday(busiest).String()
	tp.QuietestWeekday = time.Weekday(quietest).String()
	tp.WeeklyVariation = float64(weekdays[busiest]) > float64(weekdays[quietest])*domain.WeeklyVariationRatio
	return tp
}
