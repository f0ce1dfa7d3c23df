package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bitesquicky/internal/logger"
	"bitesquicky/internal/realtime"
)

const profitHistoryDays = 30

func GetOrderStats(store DashboardStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/stats"
		defer handlePanic(c, route)

		stats, err := store.Stats(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// CloseDay stores today's profit (in the store's time zone) and clears the
// order board.
func CloseDay(store DashboardStore, loc *time.Location, events realtime.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/close-day"
		defer handlePanic(c, route)

		date := time.Now().In(loc).Format("2006-01-02")
		record, err := store.CloseDay(c.Request.Context(), date)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		events.Publish(realtime.Event{Table: "orders", Type: realtime.EventDelete})
		logger.Area("ORDER").Info("day closed",
			zap.String("date", record.Date),
			zap.Int64("orders", record.TotalOrders),
			zap.Int64("profit", record.TotalProfit))
		c.JSON(http.StatusOK, record)
	}
}

func GetDailyProfits(store DashboardStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/profits"
		defer handlePanic(c, route)

		profits, err := store.DailyProfits(c.Request.Context(), profitHistoryDays)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, profits)
	}
}

func GetNotifications(store DashboardStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/notifications"
		defer handlePanic(c, route)

		unread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
		list, err := store.Notifications(c.Request.Context(), unread, 100)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// MarkNotificationsRead marks :id, or every unread notification on the
// collection route.
func MarkNotificationsRead(store DashboardStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/notifications/read"
		defer handlePanic(c, route)

		n, err := store.MarkNotificationsRead(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": n})
	}
}
