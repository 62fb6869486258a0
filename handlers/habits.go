package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tasktraq/backend/middleware"
)

type habitNameRequest struct {
	Name string `json:"name"`
}

type toggleDayRequest struct {
	Completed *int `json:"completed" validate:"required,oneof=0 1"`
}

func (a *API) ListHabits(c *gin.Context) {
	year, month, err := yearMonthQuery(c)
	if err != nil {
		a.respondError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"habits": a.Engine.HabitsWithCalculations(user.ID, year, month),
		"year":   year,
		"month":  month,
	})
}

func (a *API) CreateHabit(c *gin.Context) {
	var req habitNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	user := middleware.CurrentUser(c)
	habit, err := a.Registry.Create(user.ID, req.Name)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Habit created successfully",
		"habit":   habit,
	})
}

func (a *API) UpdateHabit(c *gin.Context) {
	var req habitNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	user := middleware.CurrentUser(c)
	habit, err := a.Registry.Rename(c.Param("id"), user.ID, req.Name)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Habit updated successfully",
		"habit":   habit,
	})
}

func (a *API) DeleteHabit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := a.Registry.Delete(c.Param("id"), user.ID); err != nil {
		a.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted successfully"})
}

// ToggleDay marks one habit done or not done for one date and returns the
// month recomputed, so the client can redraw without a second request.
func (a *API) ToggleDay(c *gin.Context) {
	var req toggleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}
	if err := middleware.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Completed value must be 0 or 1"})
		return
	}

	user := middleware.CurrentUser(c)
	date := c.Param("date")
	if _, err := a.Registry.ToggleDay(user.ID, c.Param("id"), date, *req.Completed); err != nil {
		a.respondError(c, err)
		return
	}

	// date is validated by ToggleDay, so the split cannot fail
	parts := strings.SplitN(date, "-", 3)
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])

	c.JSON(http.StatusOK, gin.H{
		"message": "Day updated successfully",
		"habits":  a.Engine.HabitsWithCalculations(user.ID, year, month),
	})
}
