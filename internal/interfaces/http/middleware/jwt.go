package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wimotos/backend/internal/infrastructure/auth"
	"github.com/wimotos/backend/internal/infrastructure/logger"
	"github.com/wimotos/backend/internal/interfaces/http/dto"
)

const (
	JWTClaimsKey = "jwt_claims"
	BearerPrefix = "Bearer "
)

// JWTMiddlewareConfig configures bearer authentication
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// PublicPaths are exact request paths served without a token. /health and
	// /swagger are outside the API group and never reach this middleware.
	PublicPaths []string
	Logger      *zap.Logger
}

// DefaultJWTConfig leaves only login public
func DefaultJWTConfig(svc *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService:  svc,
		PublicPaths: []string{"/api/v1/auth/login"},
	}
}

func JWTAuthMiddleware(svc *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(svc))
}

// JWTAuthMiddlewareWithConfig validates the bearer token and stores its claims in
// the gin context. The request logger gains user_id from here on.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	public := make(map[string]struct{}, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = struct{}{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if _, ok := public[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			rejectToken(c, log, auth.ErrInvalidToken)
			return
		}
		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			rejectToken(c, log, err)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(logger.GinUserIDKey, claims.UserID)
		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, BearerPrefix)
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

// rejectToken aborts with 401. Expired tokens get their own code so the back
// office can send the user to the login screen.
func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	log.Debug("Bearer token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))

	code, msg := dto.ErrCodeTokenInvalid, "Invalid token"
	if errors.Is(err, auth.ErrExpiredToken) {
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, msg, c.GetString(RequestIDKey)))
}

// RequireRole rejects authenticated callers whose role is not listed
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetJWTRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Insufficient role", c.GetString(RequestIDKey)))
	}
}

// GetJWTClaims returns the validated claims, or nil on public routes
func GetJWTClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.Value(JWTClaimsKey).(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func GetJWTRole(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Role
	}
	return ""
}
