package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/internal/service"
	"martapp/kiosk/pkg/response"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	response.Success(c, h.catalogService.Products())
}

func (h *CatalogHandler) ListBrands(c *gin.Context) {
	response.Success(c, h.catalogService.Brands())
}

func (h *CatalogHandler) ListDiscounts(c *gin.Context) {
	response.Success(c, h.catalogService.Discounts())
}

func (h *CatalogHandler) ToggleManaged(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	if err := h.catalogService.ToggleManaged(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, h.catalogService.Products())
}

func (h *CatalogHandler) UpdateProductImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	name, mimeType, data, ok := readUpload(c)
	if !ok {
		return
	}

	key, err := h.catalogService.UpdateProductImage(c.Request.Context(), id, name, mimeType, data)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		storageError(c, err)
		return
	}
	response.Success(c, gin.H{"image_key": key})
}

type BrandRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CatalogHandler) AddBrand(c *gin.Context) {
	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.catalogService.AddBrand(req.Name); err != nil {
		if errors.Is(err, service.ErrBrandExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, h.catalogService.Brands())
}

func (h *CatalogHandler) RemoveBrand(c *gin.Context) {
	if err := h.catalogService.RemoveBrand(c.Param("name")); err != nil {
		if errors.Is(err, service.ErrBrandNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, h.catalogService.Brands())
}

type DiscountRequest struct {
	Percent int `json:"percent" binding:"required"`
}

func (h *CatalogHandler) AddDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.catalogService.AddDiscount(req.Percent); err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountInvalid):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrDiscountExists):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}
	response.Success(c, h.catalogService.Discounts())
}

func (h *CatalogHandler) RemoveDiscount(c *gin.Context) {
	percent, err := strconv.Atoi(c.Param("percent"))
	if err != nil {
		response.BadRequest(c, "invalid discount percent")
		return
	}

	if err := h.catalogService.RemoveDiscount(percent); err != nil {
		if errors.Is(err, service.ErrDiscountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, h.catalogService.Discounts())
}
