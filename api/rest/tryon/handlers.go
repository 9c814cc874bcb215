package tryon

import (
	"net/http"

	"codeberg.org/iburba/server/iburba/tryon"
	apierrors "codeberg.org/iburba/server/internal/errors"
	"codeberg.org/iburba/server/internal/middleware"
	"github.com/gin-gonic/gin"
)

// VirtualTryonHandler godoc
// @Summary Run a virtual try-on
// @Description Submits a person and a garment image and waits for the rendered result.
// @Description Always answers 200; failures are reported in the body with success=false and an error_code.
// @Tags tryon
// @Accept json
// @Produce json
// @Param request body TryonRequest true "Images and options"
// @Success 200 {object} tryon.Result
// @Failure 413 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/virtual-tryon [post]
// @Security BearerAuth
func VirtualTryonHandler(svc Submitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TryonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if middleware.IsBodyTooLarge(err) {
				apierrors.PayloadTooLarge(c)
				return
			}

			c.JSON(http.StatusOK, &tryon.Result{
				Success:   false,
				ErrorCode: apierrors.CodeValidationError,
				Error:     "invalid request body: " + apierrors.Sanitize(err),
			})
			return
		}

		result := svc.SubmitTryon(c.Request.Context(), c.GetHeader("Authorization"), req.toDomain())
		c.JSON(http.StatusOK, result)
	}
}
