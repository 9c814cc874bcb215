package middleware

import (
	"errors"
	"net/http"

	apierrors "codeberg.org/iburba/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// caps request bodies at limit bytes; a non-positive limit disables the cap
// declared oversize bodies are refused up front, streamed ones fail on read
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			apierrors.PayloadTooLarge(c)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// reports whether err came from reading past the BodyLimit cap
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
