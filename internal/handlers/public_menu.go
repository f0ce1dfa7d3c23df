package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/database"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
)

var menuSorts = map[string]bool{
	"":                     true,
	database.SortNewest:    true,
	database.SortPriceLow:  true,
	database.SortPriceHigh: true,
	database.SortPopular:   true,
}

var menuCategories = map[string]bool{
	"":                    true,
	"all":                 true,
	models.CategoryFood:   true,
	models.CategorySnacks: true,
}

/*
GET /menu
- only available items
- category: food | snacks | all
- sort: newest | price-low | price-high | popular (pinned always first)
*/
func GetMenu(store MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), store); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		category := strings.ToLower(strings.TrimSpace(c.Query("category")))
		sort := strings.ToLower(strings.TrimSpace(c.Query("sort")))
		if !menuCategories[category] {
			respondWithError(c, http.StatusBadRequest, route, "unknown category")
			return
		}
		if !menuSorts[sort] {
			respondWithError(c, http.StatusBadRequest, route, "unknown sort")
			return
		}
		if category == "all" {
			category = ""
		}

		items, err := store.ListMenuItems(c.Request.Context(), database.MenuQuery{
			Category:      category,
			Sort:          sort,
			AvailableOnly: true,
			Search:        strings.TrimSpace(c.Query("search")),
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func GetMenuItem(store MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu/:id"
		defer handlePanic(c, route)

		item, err := store.MenuItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if !item.IsAvailable {
			respondWithError(c, http.StatusNotFound, route, "menu item not found")
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// RecordMenuView bumps the popularity counter. Failures are logged and
// otherwise ignored; the storefront does not wait on it.
func RecordMenuView(store MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /menu/:id/view"
		defer handlePanic(c, route)

		if err := store.IncrementViewCount(c.Request.Context(), c.Param("id")); err != nil {
			if apperr.IsValidation(err) {
				respondAppError(c, route, err)
				return
			}
			logger.Area("MENU").Warn("view count not recorded", zap.String("id", c.Param("id")), zap.Error(err))
		}
		c.Status(http.StatusNoContent)
	}
}
