package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetPickupZones(store ZoneStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /pickup-zones"
		defer handlePanic(c, route)

		zones, err := store.PickupZones(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, zones)
	}
}

func GetDeliveryTiers(store TierStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /delivery-tiers"
		defer handlePanic(c, route)

		tiers, err := store.DeliveryTiers(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, tiers)
	}
}
