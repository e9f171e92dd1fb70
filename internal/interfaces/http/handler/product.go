package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopcart/backend/internal/interfaces/http/dto"
)

// ProductService is the catalog behaviour the product endpoints rely on
type ProductService interface {
	List(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	Search(ctx context.Context, filter catalogapp.ProductSearchFilter) ([]catalogapp.ProductResponse, error)
	Featured(ctx context.Context) ([]catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	Create(ctx context.Context, input catalogapp.ProductInput, image *catalogapp.ImageUpload) (*catalogapp.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, input catalogapp.ProductInput, image *catalogapp.ImageUpload) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService ProductService
	maxImageSize   int64
}

// NewProductHandler creates a new ProductHandler. Uploaded images larger than
// maxImageSize bytes are rejected; zero disables the check.
func NewProductHandler(productService ProductService, maxImageSize int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxImageSize:   maxImageSize,
	}
}

// List godoc
// @Summary      List products
// @Description  List active products with filtering, search, ordering and pagination
// @Tags         products
// @Produce      json
// @Param        name query string false "Name contains (case-insensitive)"
// @Param        category query string false "Category ID" format(uuid)
// @Param        min_price query number false "Minimum price (inclusive)"
// @Param        max_price query number false "Maximum price (inclusive)"
// @Param        is_featured query bool false "Featured flag"
// @Param        in_stock query bool false "Only in-stock (true) or out-of-stock (false) products"
// @Param        search query string false "Search name, description and category name"
// @Param        ordering query string false "Order by name, price or created_at; prefix with - for descending" default(-created_at)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	filter := query.toFilter()
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = catalogapp.DefaultPageSize
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Featured godoc
// @Summary      Featured products
// @Description  The newest active featured products (at most 8)
// @Tags         products
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/featured [get]
func (h *ProductHandler) Featured(c *gin.Context) {
	products, err := h.productService.Featured(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Search godoc
// @Summary      Search products
// @Description  Unpaginated search over active products, newest first
// @Tags         products
// @Produce      json
// @Param        q query string false "Text matched against name, description and category name"
// @Param        category query string false "Category ID" format(uuid)
// @Param        min_price query number false "Minimum price (inclusive)"
// @Param        max_price query number false "Maximum price (inclusive)"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/search [get]
func (h *ProductHandler) Search(c *gin.Context) {
	var query ProductSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	products, err := h.productService.Search(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// GetByID godoc
// @Summary      Get product by ID
// @Description  Retrieve a product, active or not
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Description  Create a product. Send multipart/form-data to attach an image in the "image" field.
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Param        request body ProductRequest true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.BadRequest(c, "A valid number is required")
		return
	}
	image, ok := h.readImage(c)
	if !ok {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), input, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Replace a product
// @Description  Full update: name, description and price are required
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body ProductRequest true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Product")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.BadRequest(c, "A valid number is required")
		return
	}

	h.update(c, id, input)
}

// Patch godoc
// @Summary      Update a product
// @Description  Partial update: omitted fields keep their values
// @Tags         products
// @Accept       json,mpfd
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body PatchProductRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [patch]
func (h *ProductHandler) Patch(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Product")
	if !ok {
		return
	}

	var req PatchProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.BadRequest(c, "A valid number is required")
		return
	}

	h.update(c, id, input)
}

func (h *ProductHandler) update(c *gin.Context, id uuid.UUID, input catalogapp.ProductInput) {
	image, ok := h.readImage(c)
	if !ok {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, input, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Delete a product together with its cart items and image
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// readImage reads the optional image upload, answering 400 when it is unusable
func (h *ProductHandler) readImage(c *gin.Context) (*catalogapp.ImageUpload, bool) {
	return readImageOrFail(&h.BaseHandler, c, h.maxImageSize)
}

func readImageOrFail(h *BaseHandler, c *gin.Context, maxSize int64) (*catalogapp.ImageUpload, bool) {
	image, err := readImageUpload(c, maxSize)
	if errors.Is(err, errImageTooLarge) {
		h.ValidationError(c, []dto.ValidationDetail{{Field: imageField, Message: "Image file is too large"}})
		return nil, false
	}
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: imageField, Message: "Upload a valid image"}})
		return nil, false
	}
	return image, true
}
