package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error    string   `json:"error"`
	Reason   string   `json:"reason,omitempty"`
	Module   string   `json:"module,omitempty"`
	Action   string   `json:"action,omitempty"`
	Details  []string `json:"details,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func errorBody(err error) ErrorBody {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return ErrorBody{Error: string(apperr.KindStore), Reason: "internal error"}
	}
	body := ErrorBody{
		Error:   string(appErr.Kind),
		Reason:  appErr.Reason,
		Module:  appErr.Module,
		Action:  appErr.Action,
		Details: appErr.Details,
	}
	// Store failures are logged by the request logger, not echoed.
	if appErr.Kind == apperr.KindStore {
		body.Reason = "internal error"
	}
	return body
}

// AbortWithError records err on the context and writes the mapped status
// and body.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), errorBody(err))
}
