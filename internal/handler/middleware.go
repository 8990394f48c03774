package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
)

const (
	authUserKey  = "auth_user"
	requestIDKey = "request_id"
)

// AuthMiddleware admits a request only when its bearer token is structurally
// valid, absent from the revocation ledger and bound to an existing account.
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if !strings.HasPrefix(header, "Bearer ") || token == "" {
			abortAuth(c, http.StatusUnauthorized, "Authorization header is missing or malformed", "authorization_required")
			return
		}

		user, err := authService.Admit(c.Request.Context(), token)
		if err != nil {
			logger.Info("request not admitted",
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			writeAdmissionError(c, err)
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

func writeAdmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		abortAuth(c, http.StatusUnauthorized, "Token has expired", "token_expired")
	case errors.Is(err, service.ErrTokenRevoked):
		abortAuth(c, http.StatusUnauthorized, "Token has been revoked", "token_revoked")
	case errors.Is(err, service.ErrStorageUnavailable):
		abortAuth(c, http.StatusInternalServerError, "Internal server error", "server_error")
	default:
		abortAuth(c, http.StatusUnauthorized, "Invalid token", "invalid_token")
	}
}

func abortAuth(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, model.AuthErrorResponse{Message: message, Error: code})
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger logs each request with its id, status and latency.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user := GetAuthUser(c); user != nil {
			fields = append(fields, zap.Int64("user_id", user.ID))
		}

		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}
