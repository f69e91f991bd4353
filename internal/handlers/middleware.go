package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campus-qa/access-control-service/internal/services"
	"github.com/campus-qa/access-control-service/internal/utils"
)

// ActingUserHeader names the identity performing a mutating request.
const ActingUserHeader = "X-Acting-User"

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(SecurityMiddleware())
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, "+ActingUserHeader)
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Max-Age", "43200")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// ModerationGateMiddleware blocks mutating requests from restricted
// identities. The acting identity comes from the X-Acting-User header.
func ModerationGateMiddleware(gate services.ModerationGateService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actingUser := c.GetHeader(ActingUserHeader)
		if actingUser == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Message: "Missing " + ActingUserHeader + " header",
			})
			return
		}

		allowed, err := gate.CanMutate(c.Request.Context(), actingUser)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
					Message: "Acting identity not found",
					Details: err.Error(),
				})
				return
			}
			utils.FromContext(c, logger).Error("moderation gate check failed", "username", actingUser, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Internal server error",
			})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Identity is restricted from mutating actions",
			})
			return
		}

		c.Set("acting_user", actingUser)
		c.Next()
	}
}
