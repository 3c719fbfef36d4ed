package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/asq3-api/internal/middleware"
	"github.com/noah-isme/asq3-api/internal/service"
)

// actorFromContext is the caller of the current request, or an empty Actor
// when no claims were set.
func actorFromContext(c *gin.Context) service.Actor {
	return service.ActorFromClaims(middleware.Claims(c))
}
