package stats

import (
	"time"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/task"
)

// Aggregator computes completion counts by scanning the task mapping on
// demand. Nothing is cached; correctness depends only on the clock at call
// time.
type Aggregator struct {
	store *task.Store
	clock clock.Clock
}

func NewAggregator(store *task.Store, c clock.Clock) *Aggregator {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Aggregator{store: store, clock: c}
}

type Summary struct {
	CompletedTotal     int `json:"completedTotal"`
	CompletedToday     int `json:"completedToday"`
	CompletedThisWeek  int `json:"completedThisWeek"`
	CompletedThisMonth int `json:"completedThisMonth"`
}

func (a *Aggregator) Summary() Summary {
	return Summary{
		CompletedTotal:     a.CompletedTotal(),
		CompletedToday:     a.CompletedToday(),
		CompletedThisWeek:  a.CompletedThisWeek(),
		CompletedThisMonth: a.CompletedThisMonth(),
	}
}

func (a *Aggregator) CompletedTotal() int {
	return a.countCompletedSince(time.Time{})
}

func (a *Aggregator) CompletedToday() int {
	return a.countCompletedSince(a.startOfDay())
}

// CompletedThisWeek counts from the most recent Monday 00:00; Sunday
// belongs to the week that started six days earlier.
func (a *Aggregator) CompletedThisWeek() int {
	day := a.startOfDay()
	back := (int(day.Weekday()) + 6) % 7
	return a.countCompletedSince(day.AddDate(0, 0, -back))
}

func (a *Aggregator) CompletedThisMonth() int {
	now := a.clock.Now()
	return a.countCompletedSince(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
}

func (a *Aggregator) startOfDay() time.Time {
	now := a.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (a *Aggregator) countCompletedSince(cutoff time.Time) int {
	tasks, _ := a.store.Snapshot()
	count := 0
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		if t.CompletedAt.Before(cutoff) {
			continue
		}
		count++
	}
	return count
}
