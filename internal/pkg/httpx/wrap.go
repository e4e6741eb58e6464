package httpx

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"vidtube/internal/pkg/apierror"
	"vidtube/internal/pkg/response"
)

// HandlerFunc is a request handler that reports failure through its return
// value instead of writing an error response itself.
type HandlerFunc func(c *gin.Context) error

// Wrap adapts a HandlerFunc to a gin.HandlerFunc. Every failure raised by
// the inner handler, whether returned or panicked, is delivered to the
// single error translation path below exactly once. Errors are also
// recorded on the gin context so the request logger can see them.
func Wrap(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return fn(c)
		}()
		if err == nil {
			return
		}
		_ = c.Error(err)
		respond(c, err)
	}
}

func respond(c *gin.Context, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.Internal(err, "INTERNAL_ERROR", "Internal server error")
	}
	response.Error(c, apiErr.Status, apiErr.Code, apiErr.Message)
	c.Abort()
}
