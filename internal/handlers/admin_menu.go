package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"bitesquicky/internal/database"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
)

func validateMenuInput(in MenuItemInput, creating bool) string {
	if creating {
		switch {
		case !in.TitleSet || in.Title == "":
			return "title is required"
		case !in.PriceSet:
			return "price is required"
		case !in.CategorySet:
			return "category is required"
		}
	}
	if in.TitleSet && in.Title == "" {
		return "title cannot be empty"
	}
	if in.PriceSet && in.Price < 0 {
		return "price cannot be negative"
	}
	if in.CategorySet && in.Category != models.CategoryFood && in.Category != models.CategorySnacks {
		return "category must be food or snacks"
	}
	return ""
}

// GetAllMenuItems lists every item, including unavailable ones.
func GetAllMenuItems(store MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/menu"
		defer handlePanic(c, route)

		category := strings.ToLower(strings.TrimSpace(c.Query("category")))
		if category == "all" {
			category = ""
		}
		items, err := store.ListMenuItems(c.Request.Context(), database.MenuQuery{
			Category: category,
			Sort:     strings.TrimSpace(c.Query("sort")),
			Search:   strings.TrimSpace(c.Query("search")),
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func CreateMenuItem(store MenuStore, blobs BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menu"
		defer handlePanic(c, route)
		log := logger.Area("MENU")

		input, err := parseMenuItemRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if msg := validateMenuInput(input, true); msg != "" {
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}

		item := models.MenuItem{
			Title:        input.Title,
			Description:  input.Description,
			Price:        input.Price,
			Category:     input.Category,
			IsNegotiable: input.IsNegotiable,
			IsAvailable:  true,
			Pinned:       input.Pinned,
		}
		if input.IsAvailableSet {
			item.IsAvailable = input.IsAvailable
		}
		if input.Image != nil {
			url, err := saveImage(blobs, input.Image)
			if err != nil {
				log.Error("image upload failed", zap.Error(err))
				respondWithError(c, http.StatusInternalServerError, route, "image upload failed")
				return
			}
			item.ImageURL = &url
		}

		if err := store.CreateMenuItem(c.Request.Context(), &item); err != nil {
			if item.ImageURL != nil {
				_ = blobs.Delete(*item.ImageURL)
			}
			respondAppError(c, route, err)
			return
		}

		log.Info("menu item created", zap.String("id", item.ID.Hex()), zap.String("title", item.Title))
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateMenuItem(store MenuStore, blobs BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/menu/:id"
		defer handlePanic(c, route)
		log := logger.Area("MENU")

		input, err := parseMenuItemRequest(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if msg := validateMenuInput(input, false); msg != "" {
			respondWithError(c, http.StatusBadRequest, route, msg)
			return
		}

		ctx := c.Request.Context()
		existing, err := store.MenuItem(ctx, c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		set := bson.M{}
		if input.TitleSet {
			set["title"] = input.Title
		}
		if input.DescriptionSet {
			set["description"] = input.Description
		}
		if input.PriceSet {
			set["price"] = input.Price
		}
		if input.CategorySet {
			set["category"] = input.Category
		}
		if input.IsNegotiableSet {
			set["isNegotiable"] = input.IsNegotiable
		}
		if input.IsAvailableSet {
			set["isAvailable"] = input.IsAvailable
		}
		if input.PinnedSet {
			set["pinned"] = input.Pinned
		}

		var newImage string
		switch {
		case input.Image != nil:
			newImage, err = saveImage(blobs, input.Image)
			if err != nil {
				log.Error("image upload failed", zap.Error(err))
				respondWithError(c, http.StatusInternalServerError, route, "image upload failed")
				return
			}
			set["imageUrl"] = newImage
		case input.RemoveImage:
			set["imageUrl"] = nil
		}

		if len(set) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		item, err := store.UpdateMenuItem(ctx, c.Param("id"), set)
		if err != nil {
			if newImage != "" {
				_ = blobs.Delete(newImage)
			}
			respondAppError(c, route, err)
			return
		}

		if _, replaced := set["imageUrl"]; replaced && existing.ImageURL != nil {
			if err := blobs.Delete(*existing.ImageURL); err != nil {
				log.Warn("old image not removed", zap.String("url", *existing.ImageURL), zap.Error(err))
			}
		}

		log.Info("menu item updated", zap.String("id", item.ID.Hex()), zap.Int("fields", len(set)))
		c.JSON(http.StatusOK, item)
	}
}

func DeleteMenuItem(store MenuStore, blobs BlobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/menu/:id"
		defer handlePanic(c, route)
		log := logger.Area("MENU")

		item, err := store.DeleteMenuItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if item.ImageURL != nil {
			if err := blobs.Delete(*item.ImageURL); err != nil {
				log.Warn("image not removed", zap.String("url", *item.ImageURL), zap.Error(err))
			}
		}

		log.Info("menu item deleted", zap.String("id", item.ID.Hex()))
		c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
	}
}
