package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/rs/zerolog/log"
)

const identityKey = "margays_identity"

// Middleware parses the bearer token and stores the caller identity in the
// gin context. Requests without a valid token are rejected before reaching
// any handler.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing bearer token"})
			return
		}
		identity, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Rejected request with invalid token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid token"})
			return
		}
		ctx.Set(identityKey, identity)
		ctx.Next()
	}
}

// FromContext returns the identity set by Middleware. The second return is
// false when the middleware did not run.
func FromContext(ctx *gin.Context) (Identity, bool) {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
