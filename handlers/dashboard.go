package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tasktraq/backend/apperr"
	"github.com/tasktraq/backend/middleware"
)

func (a *API) Dashboard(c *gin.Context) {
	year, month, err := yearMonthQuery(c)
	if err != nil {
		a.respondError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"metrics": a.Engine.DashboardMetrics(user.ID, year, month),
		"year":    year,
		"month":   month,
	})
}

func (a *API) Trend(c *gin.Context) {
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(currentYear())))
	if err != nil {
		a.respondError(c, apperr.Validation("Invalid year"))
		return
	}

	months, err := parseMonths(c.DefaultQuery("months", "1,2,3,4,5,6,7,8,9,10,11,12"))
	if err != nil {
		a.respondError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"trend": a.Engine.MonthlyTrend(user.ID, year, months),
		"year":  year,
	})
}

func (a *API) Today(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, a.Engine.TodaySummary(user.ID))
}

func (a *API) Calendar(c *gin.Context) {
	year, month, err := yearMonthQuery(c)
	if err != nil {
		a.respondError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"calendar": a.Engine.MonthCalendar(user.ID, year, month),
		"year":     year,
		"month":    month,
	})
}

func parseMonths(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	months := make([]int, 0, len(parts))
	for _, part := range parts {
		month, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || month < 1 || month > 12 {
			return nil, apperr.Validation("Months must be integers between 1 and 12")
		}
		months = append(months, month)
	}
	return months, nil
}
