package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"bitesquicky/internal/database"
	"bitesquicky/internal/export"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
	"bitesquicky/internal/realtime"
)

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending preparing delivered cancelled"`
}

func orderFilterFromQuery(c *gin.Context) (database.OrderFilter, bool) {
	f := database.OrderFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Phone:  strings.TrimSpace(c.Query("phone")),
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" && status != "all" {
		f.Status = models.OrderStatus(status)
		if !f.Status.Valid() {
			return f, false
		}
	}
	return f, true
}

/*
GET /admin/api/orders
- status, search (receipt code, name or phone), page, limit
*/
func GetAllOrders(store OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		filter, ok := orderFilterFromQuery(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "unknown status")
			return
		}
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		filter.Skip = (page - 1) * limit
		filter.Limit = limit

		orders, total, err := store.ListOrders(c.Request.Context(), filter)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

func GetOrderDetails(store OrderStore, settings ReceiptSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		defer handlePanic(c, route)

		order, err := store.OrderByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		r, err := loadReceipt(c.Request.Context(), store, order)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, settings.respond(r))
	}
}

// UpdateOrderStatus is idempotent: re-sending the current status changes nothing.
func UpdateOrderStatus(store OrderStore, events realtime.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		order, changed, err := store.TransitionOrder(c.Request.Context(), c.Param("id"), models.OrderStatus(req.Status))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if changed {
			events.Publish(realtime.Event{Table: "orders", Type: realtime.EventUpdate, ID: order.ID.Hex()})
			logger.Area("ORDER").Info("status changed",
				zap.String("receiptCode", order.ReceiptCode), zap.String("status", string(order.Status)))
		}
		c.JSON(http.StatusOK, gin.H{"order": order, "changed": changed})
	}
}

func DeleteOrder(store OrderStore, events realtime.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		id := c.Param("id")
		if err := store.DeleteOrder(c.Request.Context(), id); err != nil {
			respondAppError(c, route, err)
			return
		}
		events.Publish(realtime.Event{Table: "orders", Type: realtime.EventDelete, ID: id})
		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}

func GetAdminReceiptPDF(store OrderStore, settings ReceiptSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id/receipt.pdf"
		defer handlePanic(c, route)

		order, err := store.OrderByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		r, err := loadReceipt(c.Request.Context(), store, order)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		writeReceiptPDF(c, route, r.Document(settings.Brand))
	}
}

/*
GET /admin/api/orders/export
- format: csv (default) | xlsx
- same filters as the order list, no paging
*/
func ExportOrders(store OrderStore, loc *time.Location) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/export"
		defer handlePanic(c, route)

		format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
		if format != "csv" && format != "xlsx" {
			respondWithError(c, http.StatusBadRequest, route, "format must be csv or xlsx")
			return
		}
		filter, ok := orderFilterFromQuery(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "unknown status")
			return
		}

		ctx := c.Request.Context()
		orders, _, err := store.ListOrders(ctx, filter)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		zones, err := store.PickupZones(ctx)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		zoneNames := make(map[primitive.ObjectID]string, len(zones))
		for _, z := range zones {
			zoneNames[z.ID] = z.Name
		}
		rows := export.Rows(orders, zoneNames, loc)

		filename := fmt.Sprintf("orders-%s.%s", time.Now().In(loc).Format("2006-01-02"), format)
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if format == "xlsx" {
			c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			err = export.WriteXLSX(c.Writer, rows)
		} else {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			err = export.WriteCSV(c.Writer, rows)
		}
		if err != nil {
			logger.Area("EXPORT").Error("export failed", zap.String("format", format), zap.Error(err))
			if !c.Writer.Written() {
				respondWithError(c, http.StatusInternalServerError, route, "export failed")
			}
			return
		}
		logger.Area("EXPORT").Info("orders exported", zap.String("format", format), zap.Int("rows", len(rows)))
	}
}
