package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bitesquicky/internal/database"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
	"bitesquicky/internal/ordering"
	"bitesquicky/internal/pricing"
	"bitesquicky/internal/receipt"
)

const receiptWidth = 40

// ReceiptSettings brands every rendered receipt and addresses the WhatsApp link.
type ReceiptSettings struct {
	Brand          receipt.Branding
	WhatsAppNumber string
}

type checkoutRequest struct {
	CartID              string `json:"cartId" binding:"required"`
	ContactName         string `json:"contactName"`
	ContactPhone        string `json:"contactPhone"`
	PickupZoneID        string `json:"pickupZoneId"`
	RoomNumber          string `json:"roomNumber"`
	SpecialInstructions string `json:"specialInstructions"`
}

type receiptResponse struct {
	Receipt     *ordering.Receipt `json:"receipt"`
	Document    receipt.Document  `json:"document"`
	Text        string            `json:"text"`
	WhatsAppURL string            `json:"whatsappUrl"`
	PDFURL      string            `json:"pdfUrl"`
}

func (s ReceiptSettings) respond(r *ordering.Receipt) receiptResponse {
	doc := r.Document(s.Brand)
	q := url.Values{"phone": {r.Order.ContactPhone}}
	return receiptResponse{
		Receipt:     r,
		Document:    doc,
		Text:        doc.Text(receiptWidth),
		WhatsAppURL: receipt.WhatsAppLink(s.WhatsAppNumber, doc),
		PDFURL:      "/orders/receipt/" + url.PathEscape(r.Order.ReceiptCode) + "/pdf?" + q.Encode(),
	}
}

/*
POST /orders
- body: cartId + contact form
- header Idempotency-Key (optional): a replay returns the first receipt
*/
func PlaceOrder(placer OrderPlacer, settings ReceiptSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		attempt, err := placer.Place(c.Request.Context(), ordering.Request{
			CartID: strings.TrimSpace(req.CartID),
			Form: ordering.ContactForm{
				ContactName:         req.ContactName,
				ContactPhone:        req.ContactPhone,
				PickupZoneID:        req.PickupZoneID,
				RoomNumber:          req.RoomNumber,
				SpecialInstructions: req.SpecialInstructions,
			},
			IdempotencyKey: c.GetHeader("Idempotency-Key"),
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		status := http.StatusCreated
		if attempt.Receipt.Replayed {
			status = http.StatusOK
		}
		c.JSON(status, settings.respond(attempt.Receipt))
	}
}

// loadReceipt rebuilds the confirmation view of a stored order.
func loadReceipt(ctx context.Context, store OrderStore, order *models.Order) (*ordering.Receipt, error) {
	items, err := store.OrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	zoneName := ""
	if zone, err := store.PickupZone(ctx, order.PickupZoneID); err == nil {
		zoneName = zone.Name
	} else {
		logger.Area("ORDER").Warn("pickup zone lookup failed", zap.String("receiptCode", order.ReceiptCode), zap.Error(err))
	}
	return &ordering.Receipt{
		Order:    *order,
		Items:    items,
		ZoneName: zoneName,
		Totals: pricing.Totals{
			Subtotal:    order.Subtotal(),
			DeliveryFee: order.DeliveryFee,
			Total:       order.TotalAmount,
		},
	}, nil
}

func writeReceiptPDF(c *gin.Context, route string, doc receipt.Document) {
	var buf bytes.Buffer
	if err := receipt.WritePDF(&buf, doc); err != nil {
		logger.Area("ORDER").Error("receipt pdf failed", zap.String("receiptCode", doc.ReceiptCode), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, route, "could not render receipt")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", doc.ReceiptCode))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// publicOrder finds an order by receipt code, gated on the contact phone.
func publicOrder(c *gin.Context, route string, store OrderStore) (*models.Order, bool) {
	phone := strings.TrimSpace(c.Query("phone"))
	if phone == "" {
		respondWithError(c, http.StatusBadRequest, route, "phone is required")
		return nil, false
	}
	order, err := store.OrderByReceipt(c.Request.Context(), strings.TrimSpace(c.Param("code")), phone)
	if err != nil {
		respondAppError(c, route, err)
		return nil, false
	}
	return order, true
}

func GetPublicReceipt(store OrderStore, settings ReceiptSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/receipt/:code"
		defer handlePanic(c, route)

		order, ok := publicOrder(c, route, store)
		if !ok {
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

func GetPublicReceiptPDF(store OrderStore, settings ReceiptSettings) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/receipt/:code/pdf"
		defer handlePanic(c, route)

		order, ok := publicOrder(c, route, store)
		if !ok {
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

// TraceOrders lists a customer's recent orders by the phone they ordered with.
func TraceOrders(store OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/trace"
		defer handlePanic(c, route)

		phone := strings.TrimSpace(c.Query("phone"))
		if phone == "" {
			respondWithError(c, http.StatusBadRequest, route, "phone is required")
			return
		}
		orders, _, err := store.ListOrders(c.Request.Context(), database.OrderFilter{Phone: phone, Limit: 20})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
