// Package habits manages habit definitions: creation, renaming, deletion and
// day toggles, with ownership checks and name constraints.
package habits

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tasktraq/backend/apperr"
	"github.com/tasktraq/backend/models"
	"github.com/tasktraq/backend/store"
)

const maxNameLength = 25

type Registry struct {
	store  *store.Store
	logger *zap.Logger
}

func NewRegistry(st *store.Store, logger *zap.Logger) *Registry {
	return &Registry{store: st, logger: logger}
}

func validateName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return apperr.Validation("Habit name must be 1-25 characters")
	}
	return nil
}

// nameTaken reports a case-insensitive collision among the user's habits,
// excluding excludeID so a rename never collides with itself.
func (r *Registry) nameTaken(userID, name, excludeID string) bool {
	for _, h := range r.store.UserHabits(userID) {
		if h.ID != excludeID && strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

func (r *Registry) Create(userID, name string) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return models.Habit{}, err
	}
	if r.nameTaken(userID, name, "") {
		return models.Habit{}, apperr.Validation("Habit name already exists")
	}

	habit := models.Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	created, err := r.store.AddHabit(habit)
	if err != nil {
		return models.Habit{}, err
	}

	r.logger.Info("habit_created",
		zap.String("habit_id", habit.ID),
		zap.String("user_id", userID),
	)
	return created, nil
}

func (r *Registry) Rename(habitID, userID, newName string) (models.Habit, error) {
	newName = strings.TrimSpace(newName)
	if err := validateName(newName); err != nil {
		return models.Habit{}, err
	}

	habit, ok := r.store.FindHabit(habitID)
	if !ok || habit.UserID != userID {
		return models.Habit{}, apperr.NotFound("Habit not found")
	}
	if r.nameTaken(userID, newName, habitID) {
		return models.Habit{}, apperr.Validation("Habit name already exists")
	}

	updated, ok, err := r.store.RenameHabit(habitID, newName)
	if err != nil {
		return models.Habit{}, err
	}
	if !ok {
		return models.Habit{}, apperr.NotFound("Habit not found")
	}

	r.logger.Info("habit_renamed",
		zap.String("habit_id", habitID),
		zap.String("user_id", userID),
	)
	return updated, nil
}

// Delete removes the habit and cascades into its log entries within the same
// call. The two collections are guarded independently, so a crash between
// them can orphan log entries; queries always go through habit existence, so
// orphans are invisible.
func (r *Registry) Delete(habitID, userID string) error {
	habit, ok := r.store.FindHabit(habitID)
	if !ok || habit.UserID != userID {
		return apperr.NotFound("Habit not found")
	}

	removed, err := r.store.DeleteHabit(habitID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("Habit not found")
	}
	if err := r.store.DeleteLogsForHabit(habitID); err != nil {
		return err
	}

	r.logger.Info("habit_deleted",
		zap.String("habit_id", habitID),
		zap.String("user_id", userID),
	)
	return nil
}

// ToggleDay records completion for one habit on one date. Completed must be
// 0 or 1 and the date must be a valid Y-M-D value.
func (r *Registry) ToggleDay(userID, habitID, date string, completed int) (models.LogEntry, error) {
	habit, ok := r.store.FindHabit(habitID)
	if !ok || habit.UserID != userID {
		return models.LogEntry{}, apperr.NotFound("Habit not found")
	}
	if completed != 0 && completed != 1 {
		return models.LogEntry{}, apperr.Validation("Completed value must be 0 or 1")
	}
	parsed, err := time.Parse(models.DateLayout, date)
	if err != nil || parsed.Format(models.DateLayout) != date {
		return models.LogEntry{}, apperr.Validation("Invalid date, expected YYYY-MM-DD")
	}

	return r.store.UpsertLog(userID, habitID, date, completed)
}
