package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/models"
	"bitesquicky/internal/pricing"
)

type addCartItemRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1,max=99"`
}

type setCartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

type cartResponse struct {
	Cart       *models.Cart   `json:"cart"`
	Totals     pricing.Totals `json:"totals"`
	TotalItems int            `json:"totalItems"`
}

func cartView(ctx context.Context, store CartStore, cart *models.Cart) (cartResponse, error) {
	tiers, err := store.DeliveryTiers(ctx)
	if err != nil {
		return cartResponse{}, err
	}
	return cartResponse{
		Cart:       cart,
		Totals:     pricing.ComputeOrderTotals(cart.Lines, tiers),
		TotalItems: cart.TotalItems(),
	}, nil
}

func CreateCart(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart"
		defer handlePanic(c, route)

		cart, err := store.NewCart(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		view, err := cartView(c.Request.Context(), store, cart)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func GetCart(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart/:cartId"
		defer handlePanic(c, route)

		cart, err := store.Cart(c.Request.Context(), c.Param("cartId"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		view, err := cartView(c.Request.Context(), store, cart)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// QuoteCart returns only the totals, for the checkout summary.
func QuoteCart(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart/:cartId/quote"
		defer handlePanic(c, route)

		cart, err := store.Cart(c.Request.Context(), c.Param("cartId"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		tiers, err := store.DeliveryTiers(c.Request.Context())
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, pricing.ComputeOrderTotals(cart.Lines, tiers))
	}
}

// AddCartItem snapshots the menu item's current title and price into the cart.
func AddCartItem(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/:cartId/items"
		defer handlePanic(c, route)

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		ctx := c.Request.Context()
		cart, err := store.Cart(ctx, c.Param("cartId"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		item, err := store.MenuItem(ctx, req.ItemID)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		if !item.IsAvailable {
			respondAppError(c, route, apperr.Validation("itemId", "this item is currently unavailable"))
			return
		}

		cart.Add(models.CartLine{
			ItemID:    item.ID,
			Title:     item.Title,
			UnitPrice: item.Price,
			Quantity:  req.Quantity,
			ImageURL:  item.ImageURL,
		})
		saveCartAndRespond(c, route, store, cart)
	}
}

func UpdateCartItem(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/:cartId/items/:itemId"
		defer handlePanic(c, route)

		var req setCartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		updateCartLine(c, route, store, *req.Quantity)
	}
}

func RemoveCartItem(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:cartId/items/:itemId"
		defer handlePanic(c, route)

		updateCartLine(c, route, store, 0)
	}
}

func ClearCart(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/:cartId"
		defer handlePanic(c, route)

		cart, err := store.Cart(c.Request.Context(), c.Param("cartId"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		cart.Clear()
		saveCartAndRespond(c, route, store, cart)
	}
}

func updateCartLine(c *gin.Context, route string, store CartStore, quantity int) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid item id")
		return
	}
	cart, err := store.Cart(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		respondAppError(c, route, err)
		return
	}
	if !cart.SetQuantity(itemID, quantity) {
		respondWithError(c, http.StatusNotFound, route, "item not in cart")
		return
	}
	saveCartAndRespond(c, route, store, cart)
}

func saveCartAndRespond(c *gin.Context, route string, store CartStore, cart *models.Cart) {
	if err := store.SaveCart(c.Request.Context(), cart); err != nil {
		respondAppError(c, route, err)
		return
	}
	view, err := cartView(c.Request.Context(), store, cart)
	if err != nil {
		respondAppError(c, route, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
