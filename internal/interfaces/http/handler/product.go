package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wimotos/backend/internal/application/catalog"
	"github.com/wimotos/backend/internal/interfaces/http/dto"
)

// ImageFormField is the multipart field of POST /products/:id/image
const ImageFormField = "image"

// ProductHandler handles vehicles in stock
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *catalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create godoc
// @Summary      Register product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Chassis or plate already registered"
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        q      query string false "Search brand, model, plate or chassis"
// @Param        status query string false "IN_STOCK, RESERVED or SOLD"
// @Param        limit  query int    false "Page size (max 200)"
// @Param        offset query int    false "Offset"
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q catalog.ListProductsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	products, err := h.productService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Window(c, products, len(products), q.ListQuery)
}

// Get godoc
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Update godoc
// @Summary      Update product
// @Description  Partial update. Omitted fields are left untouched.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Product ID"
// @Param        request body catalog.UpdateProductRequest true "Changes"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UploadImage godoc
// @Summary      Upload product image
// @Description  Replaces the cover image. Accepts JPEG, PNG or WebP.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Product ID"
// @Param        image formData file   true "Image file"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse "Object storage not configured"
// @Security     BearerAuth
// @Router       /products/{id}/image [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	header, err := c.FormFile(ImageFormField)
	if err != nil {
		h.BadRequest(c, "multipart field \"image\" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image exceeds maximum allowed size")
		return
	}

	product, err := h.productService.UploadImage(c.Request.Context(), id, catalog.UploadImageRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
