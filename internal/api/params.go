package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

// ErrInvalidID is returned when a path id is missing, not a number or zero.
var ErrInvalidID = errors.New("invalid id")

// PathID binds the named path parameter as a positive numeric id.
func PathID(c *gin.Context, name string) (uint, error) {
	var id uint64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidID, name, err)
	}
	if id == 0 || uint64(uint(id)) != id {
		return 0, fmt.Errorf("%w: %s", ErrInvalidID, name)
	}
	return uint(id), nil
}
