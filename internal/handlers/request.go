package handlers

import (
	"errors"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
)

// bindJSON decodes the body into req and runs its validation rules. On
// failure the response is already written.
func bindJSON(c *gin.Context, req validation.Validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.AbortWithError(c, apperr.InvalidInput("malformed request body"))
		return false
	}
	if err := req.Validate(); err != nil {
		middleware.AbortWithError(c, validationError(err))
		return false
	}
	return true
}

func validationError(err error) error {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return apperr.InvalidInput(err.Error())
	}
	details := make([]string, 0, len(fields))
	for field, fieldErr := range fields {
		details = append(details, field+": "+fieldErr.Error())
	}
	sort.Strings(details)
	return apperr.InvalidInputDetails("invalid request", details)
}

// page reads page/perPage query parameters.
func page(c *gin.Context) (limit, offset int) {
	limit = 50
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
