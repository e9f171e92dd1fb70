package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/shopcart/backend/internal/application/catalog"
	"github.com/shopcart/backend/internal/interfaces/http/dto"
)

// CategoryService is the catalog behaviour the category endpoints rely on
type CategoryService interface {
	List(ctx context.Context, filter catalogapp.CategoryListFilter) ([]catalogapp.CategoryResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.CategoryResponse, error)
	Create(ctx context.Context, input catalogapp.CategoryInput, image *catalogapp.ImageUpload) (*catalogapp.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, input catalogapp.CategoryInput, image *catalogapp.ImageUpload) (*catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryHandler handles category-related API endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService CategoryService
	maxImageSize    int64
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService CategoryService, maxImageSize int64) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		maxImageSize:    maxImageSize,
	}
}

// CategoryRequest is the body of a category create or full update
// @Description Request body for creating or replacing a category
type CategoryRequest struct {
	Name        *string `json:"name" form:"name" binding:"required,max=100" example:"Electronics"`
	Description *string `json:"description" form:"description" example:"Gadgets and accessories"`
	IsActive    *bool   `json:"is_active" form:"is_active" example:"true"`
}

// PatchCategoryRequest is the body of a partial category update
// @Description Request body for partially updating a category
type PatchCategoryRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,max=100" example:"Electronics"`
	Description *string `json:"description" form:"description" example:"Gadgets and accessories"`
	IsActive    *bool   `json:"is_active" form:"is_active" example:"false"`
}

func (r PatchCategoryRequest) toInput() catalogapp.CategoryInput {
	return catalogapp.CategoryInput{
		Name:        r.Name,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

// CategoryListQuery holds the category list query parameters
type CategoryListQuery struct {
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	dto.PageRequest
}

// List godoc
// @Summary      List categories
// @Description  List active categories with their active product counts
// @Tags         categories
// @Produce      json
// @Param        search query string false "Search name and description"
// @Param        ordering query string false "Order by name or created_at; prefix with - for descending" default(name)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var query CategoryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	filter := catalogapp.CategoryListFilter{
		Search:   query.Search,
		Ordering: query.Ordering,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = catalogapp.DefaultPageSize
	}

	categories, total, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, categories, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get category by ID
// @Tags         categories
// @Produce      json
// @Param        id path string true "Category ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id} [get]
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create godoc
// @Summary      Create a category
// @Description  Create a category. Send multipart/form-data to attach an image in the "image" field.
// @Tags         categories
// @Accept       json,mpfd
// @Produce      json
// @Param        request body CategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	image, ok := readImageOrFail(&h.BaseHandler, c, h.maxImageSize)
	if !ok {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), PatchCategoryRequest(req).toInput(), image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update godoc
// @Summary      Replace a category
// @Tags         categories
// @Accept       json,mpfd
// @Produce      json
// @Param        id path string true "Category ID" format(uuid)
// @Param        request body CategoryRequest true "Category"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Category")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	h.update(c, id, PatchCategoryRequest(req).toInput())
}

// Patch godoc
// @Summary      Update a category
// @Tags         categories
// @Accept       json,mpfd
// @Produce      json
// @Param        id path string true "Category ID" format(uuid)
// @Param        request body PatchCategoryRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /categories/{id} [patch]
func (h *CategoryHandler) Patch(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Category")
	if !ok {
		return
	}

	var req PatchCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	h.update(c, id, req.toInput())
}

func (h *CategoryHandler) update(c *gin.Context, id uuid.UUID, input catalogapp.CategoryInput) {
	image, ok := readImageOrFail(&h.BaseHandler, c, h.maxImageSize)
	if !ok {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, input, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete godoc
// @Summary      Delete a category
// @Description  Delete a category together with its products
// @Tags         categories
// @Param        id path string true "Category ID" format(uuid)
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "Category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
