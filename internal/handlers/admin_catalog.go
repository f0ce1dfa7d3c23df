package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
	"bitesquicky/internal/pricing"
)

type tierRequest struct {
	MinAmount *int64 `json:"minAmount" binding:"required,min=0"`
	MaxAmount *int64 `json:"maxAmount" binding:"omitempty,min=0"`
	Fee       *int64 `json:"fee" binding:"required,min=0"`
}

func (r tierRequest) tier() (models.DeliveryFeeTier, error) {
	t := models.DeliveryFeeTier{MinAmount: *r.MinAmount, MaxAmount: r.MaxAmount, Fee: *r.Fee}
	if t.MaxAmount != nil && *t.MaxAmount < t.MinAmount {
		return t, apperr.Validation("maxAmount", "maxAmount must not be below minAmount")
	}
	return t, nil
}

// tierWarnings re-reads the table after a change and reports gaps or overlaps.
// The change itself is already saved; warnings are advisory.
func tierWarnings(ctx context.Context, store TierStore) []pricing.TierIssue {
	tiers, err := store.DeliveryTiers(ctx)
	if err != nil {
		logger.Area("TIERS").Warn("tier check skipped", zap.Error(err))
		return nil
	}
	return pricing.CheckTiers(tiers)
}

func GetTierReport(store TierStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/tiers"
		defer handlePanic(c, route)

		tiers, err := store.DeliveryTiers(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tiers": tiers, "warnings": pricing.CheckTiers(tiers)})
	}
}

func CreateDeliveryTier(store TierStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/tiers"
		defer handlePanic(c, route)

		var req tierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		tier, err := req.tier()
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if err := store.CreateDeliveryTier(c.Request.Context(), &tier); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"tier": tier, "warnings": tierWarnings(c.Request.Context(), store)})
	}
}

func UpdateDeliveryTier(store TierStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/tiers/:id"
		defer handlePanic(c, route)

		var req tierRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		tier, err := req.tier()
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if err := store.ReplaceDeliveryTier(c.Request.Context(), c.Param("id"), &tier); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tier": tier, "warnings": tierWarnings(c.Request.Context(), store)})
	}
}

func DeleteDeliveryTier(store TierStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/tiers/:id"
		defer handlePanic(c, route)

		if err := store.DeleteDeliveryTier(c.Request.Context(), c.Param("id")); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "tier deleted", "warnings": tierWarnings(c.Request.Context(), store)})
	}
}

type zoneRequest struct {
	Name               *string `json:"name"`
	RequiresRoomNumber *bool   `json:"requiresRoomNumber"`
}

func CreatePickupZone(store ZoneStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/zones"
		defer handlePanic(c, route)

		var req zoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}
		zone := models.PickupZone{Name: strings.TrimSpace(*req.Name)}
		if req.RequiresRoomNumber != nil {
			zone.RequiresRoomNumber = *req.RequiresRoomNumber
		}
		if err := store.CreatePickupZone(c.Request.Context(), &zone); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, zone)
	}
}

func UpdatePickupZone(store ZoneStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/zones/:id"
		defer handlePanic(c, route)

		var req zoneRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		set := bson.M{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name cannot be empty")
				return
			}
			set["name"] = name
		}
		if req.RequiresRoomNumber != nil {
			set["requiresRoomNumber"] = *req.RequiresRoomNumber
		}
		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}
		zone, err := store.UpdatePickupZone(c.Request.Context(), c.Param("id"), set)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, zone)
	}
}

func DeletePickupZone(store ZoneStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/zones/:id"
		defer handlePanic(c, route)

		if err := store.DeletePickupZone(c.Request.Context(), c.Param("id")); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pickup zone deleted"})
	}
}
