package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/shopcart/backend/internal/application/cart"
)

// CartService is the cart behaviour the cart endpoints rely on
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, input cartapp.AddItemInput) (*cartapp.CartResponse, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cartapp.CartResponse, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cartapp.CartResponse, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*cartapp.CartResponse, error)
}

// CartHandler handles the authenticated user's cart
type CartHandler struct {
	BaseHandler
	cartService CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// AddToCartRequest is the body of an add-to-cart request
// @Description Request body for adding a product to the cart
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity  *int   `json:"quantity" binding:"omitempty,min=1" example:"1"`
}

// UpdateCartItemRequest is the body of a cart item quantity change
// @Description Request body for changing a cart item's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"2"`
}

// Get godoc
// @Summary      Get cart
// @Description  The caller's cart, created on first access
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Add godoc
// @Summary      Add to cart
// @Description  Add a product to the cart, merging with an existing line for the same product
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body AddToCartRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/add [post]
func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), userID, cartapp.AddItemInput{
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateItem godoc
// @Summary      Change cart item quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path string true "Cart item ID" format(uuid)
// @Param        request body UpdateCartItemRequest true "New quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "Cart item")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem godoc
// @Summary      Remove cart item
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart item ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "Cart item")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear godoc
// @Summary      Clear cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cart/clear [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	cart, err := h.cartService.ClearCart(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}
