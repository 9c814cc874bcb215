package tryon

import "github.com/gin-gonic/gin"

// registers the try-on route; authentication happens inside the service
func RegisterRoutes(router *gin.RouterGroup, svc Submitter) {
	router.POST("/virtual-tryon", VirtualTryonHandler(svc))
}
