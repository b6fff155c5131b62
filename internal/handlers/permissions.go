package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
)

type checkPermissionRequest struct {
	Module string `json:"module"`
	Action string `json:"action"`
}

func (r *checkPermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Module, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Action, validation.Required, validation.In(permission.ActionView, permission.ActionEdit)),
	)
}

// CheckPermission evaluates the caller against module/action. A denial is a
// normal answer here, not an error.
func (h HandlerSet) CheckPermission(c *gin.Context) {
	var req checkPermissionRequest
	if !bindJSON(c, &req) {
		return
	}

	_, decision, err := h.checker.Check(c.Request.Context(), middleware.PrincipalID(c), req.Module, req.Action)
	if err != nil && !errors.Is(err, apperr.ErrAuthorization) {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}
