package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/studycrew/web/internal/pkg/apperrors"
	"github.com/studycrew/web/internal/pkg/validation"
)

// BindForm binds a posted form into obj. Validation failures come back as
// per-field messages; a body that cannot be parsed at all is ErrBadRequest.
func BindForm(c *gin.Context, obj interface{}) (validation.FieldErrors, error) {
	err := c.ShouldBindWith(obj, binding.Form)
	if err == nil {
		return nil, nil
	}
	if fields, ok := validation.Messages(err); ok {
		return fields, nil
	}
	return nil, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
}
