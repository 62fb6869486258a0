// Package analytics derives every user-visible metric from the raw habit and
// log collections. Nothing computed here is ever stored: totals, percentages,
// rankings, streaks and trends are recomputed from the store on each call, so
// they cannot drift from the underlying facts.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tasktraq/backend/models"
	"github.com/tasktraq/backend/store"
)

type Engine struct {
	store *store.Store
	now   func() time.Time
}

func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// HabitCalculation is one habit's month view. Days holds 31 entries indexed
// by day-1: 1 or 0 inside the month, nil past its end.
type HabitCalculation struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Days            []*int  `json:"days"`
	Total           int     `json:"total"`
	PercentComplete float64 `json:"percent_complete"`
}

type HabitRef struct {
	Name            string  `json:"name"`
	PercentComplete float64 `json:"percent_complete"`
}

type HabitSummary struct {
	Name            string  `json:"name"`
	Total           int     `json:"total"`
	PercentComplete float64 `json:"percent_complete"`
}

type DashboardMetrics struct {
	TotalHabits              int            `json:"total_habits"`
	OverallCompletionPercent float64        `json:"overall_completion_percent"`
	BestHabit                *HabitRef      `json:"best_habit"`
	WorstHabit               *HabitRef      `json:"worst_habit"`
	HabitSummaries           []HabitSummary `json:"habit_summaries"`
	DaysInMonth              int            `json:"days_in_month"`
	TotalCompletedDays       int            `json:"total_completed_days"`
	TotalPossibleDays        int            `json:"total_possible_days"`
}

type TrendPoint struct {
	Month             int     `json:"month"`
	CompletionPercent float64 `json:"completion_percent"`
}

type TodaySummary struct {
	Date           string `json:"date"`
	HabitsCount    int    `json:"habits_count"`
	CompletedToday int    `json:"completed_today"`
	TotalToday     int    `json:"total_today"`
	Streak         int    `json:"streak"`
}

type CalendarDay struct {
	Date       string `json:"date"`
	Day        int    `json:"day"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	IsPast     bool   `json:"is_past"`
	IsMissed   bool   `json:"is_missed"`
}

func daysInMonth(year, month int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// HabitsWithCalculations builds the month sheet: each habit with its per-day
// completion values, total and percentage. An absent log entry counts as 0.
func (e *Engine) HabitsWithCalculations(userID string, year, month int) []HabitCalculation {
	habits := e.store.UserHabits(userID)
	dim := daysInMonth(year, month)

	result := make([]HabitCalculation, 0, len(habits))
	for _, habit := range habits {
		logs := e.store.QueryLogs(store.LogFilter{HabitID: habit.ID}, year, month)

		completion := make(map[int]int, len(logs))
		for _, entry := range logs {
			if parsed, err := time.Parse(models.DateLayout, entry.Date); err == nil {
				completion[parsed.Day()] = entry.Completed
			}
		}

		days := make([]*int, 31)
		total := 0
		for day := 1; day <= dim && day <= 31; day++ {
			v := completion[day]
			days[day-1] = &v
			if v == 1 {
				total++
			}
		}

		percent := 0.0
		if dim > 0 {
			percent = round1(float64(total) / float64(dim) * 100)
		}

		result = append(result, HabitCalculation{
			ID:              habit.ID,
			Name:            habit.Name,
			Days:            days,
			Total:           total,
			PercentComplete: percent,
		})
	}
	return result
}

// DashboardMetrics aggregates the month across all habits. With zero habits
// every numeric field is 0 and best/worst are nil. Ties on best and worst go
// to the first habit encountered in calculation order.
func (e *Engine) DashboardMetrics(userID string, year, month int) DashboardMetrics {
	habitsData := e.HabitsWithCalculations(userID, year, month)
	if len(habitsData) == 0 {
		return DashboardMetrics{HabitSummaries: []HabitSummary{}}
	}

	dim := daysInMonth(year, month)

	totalCompleted := 0
	for _, h := range habitsData {
		totalCompleted += h.Total
	}
	totalPossible := len(habitsData) * dim

	overall := 0.0
	if totalPossible > 0 {
		overall = round1(float64(totalCompleted) / float64(totalPossible) * 100)
	}

	best := habitsData[0]
	worst := habitsData[0]
	for _, h := range habitsData[1:] {
		if h.PercentComplete > best.PercentComplete {
			best = h
		}
		if h.PercentComplete < worst.PercentComplete {
			worst = h
		}
	}

	summaries := make([]HabitSummary, 0, len(habitsData))
	for _, h := range habitsData {
		summaries = append(summaries, HabitSummary{
			Name:            h.Name,
			Total:           h.Total,
			PercentComplete: h.PercentComplete,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].PercentComplete > summaries[j].PercentComplete
	})

	return DashboardMetrics{
		TotalHabits:              len(habitsData),
		OverallCompletionPercent: overall,
		BestHabit:                &HabitRef{Name: best.Name, PercentComplete: best.PercentComplete},
		WorstHabit:               &HabitRef{Name: worst.Name, PercentComplete: worst.PercentComplete},
		HabitSummaries:           summaries,
		DaysInMonth:              dim,
		TotalCompletedDays:       totalCompleted,
		TotalPossibleDays:        totalPossible,
	}
}

// MonthlyTrend computes the overall completion percentage for each requested
// month, preserving the caller's order. A month with no habits yields 0.
func (e *Engine) MonthlyTrend(userID string, year int, months []int) []TrendPoint {
	points := make([]TrendPoint, 0, len(months))
	for _, month := range months {
		habitsData := e.HabitsWithCalculations(userID, year, month)
		dim := daysInMonth(year, month)

		completion := 0.0
		if len(habitsData) > 0 {
			totalCompleted := 0
			for _, h := range habitsData {
				totalCompleted += h.Total
			}
			if possible := len(habitsData) * dim; possible > 0 {
				completion = round1(float64(totalCompleted) / float64(possible) * 100)
			}
		}
		points = append(points, TrendPoint{Month: month, CompletionPercent: completion})
	}
	return points
}

// Streak counts consecutive days ending today on which every habit was
// completed. A day with no entries at all, or with any habit left
// incomplete, stops the walk; an incomplete today yields 0.
//
// "Every habit" means the user's current habit set: deleting a habit
// retroactively changes what past days required. Known limitation, kept to
// match observed behavior.
func (e *Engine) Streak(userID string) int {
	habits := e.store.UserHabits(userID)
	if len(habits) == 0 {
		return 0
	}

	day := e.now().UTC()
	streak := 0
	for {
		entries := e.store.UserLogsOn(userID, day.Format(models.DateLayout))
		if len(entries) == 0 {
			break
		}

		completed := make(map[string]bool, len(entries))
		for _, entry := range entries {
			if entry.Completed == 1 {
				completed[entry.HabitID] = true
			}
		}

		allDone := true
		for _, h := range habits {
			if !completed[h.ID] {
				allDone = false
				break
			}
		}
		if !allDone {
			break
		}

		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// TodaySummary is the landing-page snapshot: habit count, today's completions
// and the current streak.
func (e *Engine) TodaySummary(userID string) TodaySummary {
	habits := e.store.UserHabits(userID)
	today := e.now().UTC().Format(models.DateLayout)

	completed := make(map[string]bool)
	for _, entry := range e.store.UserLogsOn(userID, today) {
		if entry.Completed == 1 {
			completed[entry.HabitID] = true
		}
	}
	count := 0
	for _, h := range habits {
		if completed[h.ID] {
			count++
		}
	}

	return TodaySummary{
		Date:           today,
		HabitsCount:    len(habits),
		CompletedToday: count,
		TotalToday:     len(habits),
		Streak:         e.Streak(userID),
	}
}

// MonthCalendar is the per-day completion series for a month: how many of the
// user's habits were done each day. Days before today with habits but zero
// completions are flagged missed.
func (e *Engine) MonthCalendar(userID string, year, month int) []CalendarDay {
	habits := e.store.UserHabits(userID)
	logs := e.store.QueryLogs(store.LogFilter{UserID: userID}, year, month)

	byDate := make(map[string]map[string]bool)
	for _, entry := range logs {
		if entry.Completed != 1 {
			continue
		}
		if byDate[entry.Date] == nil {
			byDate[entry.Date] = make(map[string]bool)
		}
		byDate[entry.Date][entry.HabitID] = true
	}

	now := e.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	dim := daysInMonth(year, month)
	days := make([]CalendarDay, 0, dim)
	for day := 1; day <= dim; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)

		completed := 0
		for _, h := range habits {
			if byDate[date][h.ID] {
				completed++
			}
		}
		total := len(habits)

		percentage := 0
		if total > 0 {
			percentage = completed * 100 / total
		}

		dayDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		isPast := dayDate.Before(today)

		days = append(days, CalendarDay{
			Date:       date,
			Day:        day,
			Completed:  completed,
			Total:      total,
			Percentage: percentage,
			IsPast:     isPast,
			IsMissed:   isPast && total > 0 && completed == 0,
		})
	}
	return days
}
