// Package store owns the persisted collections: users, habits and daily
// logs. Each collection lives in memory behind its own RWMutex and is written
// back as a whole snapshot on every mutation, so a read always observes a
// fully committed state and interleaved read-modify-write cycles cannot lose
// updates. Collections are independent; there is no cross-collection
// transaction.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tasktraq/backend/apperr"
	"github.com/tasktraq/backend/models"
)

const (
	usersCollection  = "users"
	habitsCollection = "habits"
	logsCollection   = "daily_logs"
)

// LogFilter narrows a log query. Empty fields match everything.
type LogFilter struct {
	UserID  string
	HabitID string
}

type Store struct {
	snap   Snapshotter
	logger *zap.Logger

	usersMu sync.RWMutex
	users   []models.User

	habitsMu sync.RWMutex
	habits   []models.Habit

	logsMu sync.RWMutex
	logs   []models.LogEntry
}

// Open loads all three collections from the snapshotter. A missing or
// corrupt snapshot loads as an empty collection; the store never refuses to
// start over bad data.
func Open(snap Snapshotter, logger *zap.Logger) *Store {
	s := &Store{snap: snap, logger: logger}
	s.load(usersCollection, &s.users)
	s.load(habitsCollection, &s.habits)
	s.load(logsCollection, &s.logs)
	return s
}

func (s *Store) load(name string, v any) {
	if err := s.snap.Load(name, v); err != nil && !errors.Is(err, ErrNoSnapshot) {
		s.logger.Warn("store_load_failed",
			zap.String("collection", name),
			zap.Error(err),
		)
	}
}

func (s *Store) persist(name string, v any) error {
	if err := s.snap.Save(name, v); err != nil {
		s.logger.Error("store_save_failed",
			zap.String("collection", name),
			zap.Error(err),
		)
		return &apperr.StoreError{Op: "save " + name, Err: err}
	}
	return nil
}

// --- users ---

func (s *Store) AddUser(user models.User) (models.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	s.users = append(s.users, user)
	if err := s.persist(usersCollection, s.users); err != nil {
		s.users = s.users[:len(s.users)-1]
		return models.User{}, err
	}
	return user, nil
}

// FindUserByEmail matches case-sensitively, as stored.
func (s *Store) FindUserByEmail(email string) (models.User, bool) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Store) FindUserByID(id string) (models.User, bool) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// --- habits ---

func (s *Store) AddHabit(habit models.Habit) (models.Habit, error) {
	s.habitsMu.Lock()
	defer s.habitsMu.Unlock()

	s.habits = append(s.habits, habit)
	if err := s.persist(habitsCollection, s.habits); err != nil {
		s.habits = s.habits[:len(s.habits)-1]
		return models.Habit{}, err
	}
	return habit, nil
}

// UserHabits returns the user's habits in insertion order.
func (s *Store) UserHabits(userID string) []models.Habit {
	s.habitsMu.RLock()
	defer s.habitsMu.RUnlock()

	var out []models.Habit
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out
}

func (s *Store) FindHabit(id string) (models.Habit, bool) {
	s.habitsMu.RLock()
	defer s.habitsMu.RUnlock()

	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (s *Store) RenameHabit(id, name string) (models.Habit, bool, error) {
	s.habitsMu.Lock()
	defer s.habitsMu.Unlock()

	for i, h := range s.habits {
		if h.ID != id {
			continue
		}
		prev := s.habits[i]
		s.habits[i].Name = name
		if err := s.persist(habitsCollection, s.habits); err != nil {
			s.habits[i] = prev
			return models.Habit{}, false, err
		}
		return s.habits[i], true, nil
	}
	return models.Habit{}, false, nil
}

func (s *Store) DeleteHabit(id string) (bool, error) {
	s.habitsMu.Lock()
	defer s.habitsMu.Unlock()

	for i, h := range s.habits {
		if h.ID != id {
			continue
		}
		old := s.habits
		s.habits = append(append([]models.Habit{}, s.habits[:i]...), s.habits[i+1:]...)
		if err := s.persist(habitsCollection, s.habits); err != nil {
			s.habits = old
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// --- daily logs ---

// UpsertLog replaces the entry for (user, habit, date) in place, or appends
// when none exists. The collection never holds two entries for the same key.
func (s *Store) UpsertLog(userID, habitID, date string, completed int) (models.LogEntry, error) {
	s.logsMu.Lock()
	defer s.logsMu.Unlock()

	entry := models.LogEntry{
		UserID:    userID,
		HabitID:   habitID,
		Date:      date,
		Completed: completed,
		UpdatedAt: time.Now().UTC(),
	}

	idx := -1
	for i, l := range s.logs {
		if l.UserID == userID && l.HabitID == habitID && l.Date == date {
			idx = i
			break
		}
	}

	if idx >= 0 {
		prev := s.logs[idx]
		s.logs[idx] = entry
		if err := s.persist(logsCollection, s.logs); err != nil {
			s.logs[idx] = prev
			return models.LogEntry{}, err
		}
		return entry, nil
	}

	s.logs = append(s.logs, entry)
	if err := s.persist(logsCollection, s.logs); err != nil {
		s.logs = s.logs[:len(s.logs)-1]
		return models.LogEntry{}, err
	}
	return entry, nil
}

// QueryLogs returns entries within the given year-month matching the filter,
// in insertion order.
func (s *Store) QueryLogs(filter LogFilter, year, month int) []models.LogEntry {
	prefix := fmt.Sprintf("%04d-%02d", year, month)

	s.logsMu.RLock()
	defer s.logsMu.RUnlock()

	var out []models.LogEntry
	for _, l := range s.logs {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.HabitID != "" && l.HabitID != filter.HabitID {
			continue
		}
		if !strings.HasPrefix(l.Date, prefix) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// UserLogsOn returns all of a user's entries for one date.
func (s *Store) UserLogsOn(userID, date string) []models.LogEntry {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()

	var out []models.LogEntry
	for _, l := range s.logs {
		if l.UserID == userID && l.Date == date {
			out = append(out, l)
		}
	}
	return out
}

// DeleteLogsForHabit removes every entry referencing the habit. No-op when
// none exist.
func (s *Store) DeleteLogsForHabit(habitID string) error {
	s.logsMu.Lock()
	defer s.logsMu.Unlock()

	kept := make([]models.LogEntry, 0, len(s.logs))
	for _, l := range s.logs {
		if l.HabitID != habitID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(s.logs) {
		return nil
	}

	old := s.logs
	s.logs = kept
	if err := s.persist(logsCollection, s.logs); err != nil {
		s.logs = old
		return err
	}
	return nil
}
