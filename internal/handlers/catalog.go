package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/service"
)

func (h HandlerSet) ListVendors(c *gin.Context) {
	vendors, err := h.catalogService.ListVendors(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	limit, offset := page(c)
	c.JSON(http.StatusOK, gin.H{
		"items": toVendors(paginate(vendors, limit, offset)),
		"total": len(vendors),
	})
}

type createVendorRequest struct {
	Name       string `json:"name"`
	VendorType string `json:"vendorType"`
}

func (r *createVendorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.VendorType, validation.Required, validation.In(
			string(models.VendorTypePrivate),
			string(models.VendorTypeVirtual),
		)),
	)
}

func (h HandlerSet) CreateVendor(c *gin.Context) {
	var req createVendorRequest
	if !bindJSON(c, &req) {
		return
	}

	vendor, err := h.catalogService.CreateVendor(c.Request.Context(), middleware.PrincipalID(c), service.CreateVendorInput{
		Name:       req.Name,
		VendorType: models.VendorType(req.VendorType),
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vendor": toVendor(vendor)})
}

func (h HandlerSet) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	limit, offset := page(c)
	c.JSON(http.StatusOK, gin.H{
		"items": toProducts(paginate(products, limit, offset)),
		"total": len(products),
	})
}

type createProductRequest struct {
	VendorID string `json:"vendorId"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
}

func (r *createProductRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.VendorID, validation.Required),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.SKU, validation.Length(0, 64)),
	)
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), middleware.PrincipalID(c), service.CreateProductInput{
		VendorID: req.VendorID,
		Name:     req.Name,
		SKU:      req.SKU,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": toProduct(product)})
}
