package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
)

func (h HandlerSet) ListPendingAccounts(c *gin.Context) {
	users, err := h.approvals.ListPendingAccounts(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	limit, offset := page(c)
	c.JSON(http.StatusOK, gin.H{
		"items": toUsers(paginate(users, limit, offset)),
		"total": len(users),
	})
}

func (h HandlerSet) ApproveUser(c *gin.Context) {
	user, err := h.approvals.ApproveUser(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) RejectUser(c *gin.Context) {
	user, err := h.approvals.RejectUser(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) BlockUser(c *gin.Context) {
	user, err := h.adminService.Block(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) UnblockUser(c *gin.Context) {
	user, err := h.adminService.Unblock(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	if err := h.adminService.Delete(c.Request.Context(), middleware.PrincipalID(c), c.Param("id")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListPendingVendors(c *gin.Context) {
	vendors, err := h.approvals.ListPendingVendors(c.Request.Context(), middleware.PrincipalID(c))
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

type approveVendorRequest struct {
	AutoApproveInventory *bool `json:"autoApproveInventory"`
}

func (r *approveVendorRequest) Validate() error { return nil }

func (h HandlerSet) ApproveVendor(c *gin.Context) {
	var req approveVendorRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	vendor, err := h.approvals.ApproveVendor(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"), req.AutoApproveInventory)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": toVendor(vendor)})
}

func (h HandlerSet) RejectVendor(c *gin.Context) {
	vendor, err := h.approvals.RejectVendor(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": toVendor(vendor)})
}

type autoApproveRequest struct {
	Enabled *bool `json:"enabled"`
}

func (r *autoApproveRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Enabled, validation.NotNil),
	)
}

func (h HandlerSet) ToggleAutoApprove(c *gin.Context) {
	var req autoApproveRequest
	if !bindJSON(c, &req) {
		return
	}

	vendor, err := h.approvals.ToggleAutoApprove(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"), *req.Enabled)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": toVendor(vendor)})
}

func (h HandlerSet) ListPendingProducts(c *gin.Context) {
	products, err := h.approvals.ListPendingProducts(c.Request.Context(), middleware.PrincipalID(c))
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

type productIDsRequest struct {
	ProductIDs []string `json:"productIds"`
}

func (r *productIDsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProductIDs, validation.Required, validation.Length(1, 500)),
	)
}

type batchResponse struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

func (h HandlerSet) ApproveProducts(c *gin.Context) {
	var req productIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.approvals.ApproveProducts(c.Request.Context(), middleware.PrincipalID(c), req.ProductIDs)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{Applied: nonNil(result.Applied), Skipped: nonNil(result.Skipped)})
}

func (h HandlerSet) RejectProducts(c *gin.Context) {
	var req productIDsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.approvals.RejectProducts(c.Request.Context(), middleware.PrincipalID(c), req.ProductIDs)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batchResponse{Applied: nonNil(result.Applied), Skipped: nonNil(result.Skipped)})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
