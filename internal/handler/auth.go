package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
)

type AuthHandler struct {
	svc    *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Username and password"
// @Success 201 {object} model.RegisterResponse
// @Failure 400 {object} model.AuthErrorResponse
// @Failure 429 {object} model.AuthErrorResponse
// @Failure 500 {object} model.AuthErrorResponse
// @Router /api/user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.RegisterResponse{Message: "User registered successfully"})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.AuthRequest true "Username and password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.AuthErrorResponse
// @Failure 401 {object} model.AuthErrorResponse
// @Failure 429 {object} model.AuthErrorResponse
// @Failure 500 {object} model.AuthErrorResponse
// @Router /api/user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req, ok := bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		Message:     "Login successful",
		AccessToken: token.Token,
		ExpiresIn:   int64(token.ExpiresAt.Sub(token.IssuedAt) / time.Second),
	})
}

// Logout godoc
// @Summary Logout
// @Description Revokes the presented access token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.LogoutResponse
// @Failure 401 {object} model.AuthErrorResponse
// @Failure 500 {object} model.AuthErrorResponse
// @Router /api/user/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		abortAuth(c, http.StatusUnauthorized, "Authorization header is missing or malformed", "authorization_required")
		return
	}

	if err := h.svc.Logout(c.Request.Context(), user); err != nil {
		h.writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LogoutResponse{
		Message:  "Token revoked",
		LogoutAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AuthMeResponse
// @Failure 401 {object} model.AuthErrorResponse
// @Router /api/user/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		abortAuth(c, http.StatusUnauthorized, "Authorization header is missing or malformed", "authorization_required")
		return
	}
	c.JSON(http.StatusOK, model.AuthMeResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}

func bindCredentials(c *gin.Context) (model.AuthRequest, bool) {
	var req model.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, model.AuthErrorResponse{
			Message: "Username and password are required",
			Error:   "invalid_request",
		})
		return req, false
	}
	return req, true
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.AuthErrorResponse{
			Message: "Username must be 3-64 characters and password 8 characters to 72 bytes",
			Error:   "invalid_input",
		})
	case errors.Is(err, service.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, model.AuthErrorResponse{
			Message: "Username already exists",
			Error:   "username_taken",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, model.AuthErrorResponse{
			Message: "Invalid username or password",
			Error:   "invalid_credentials",
		})
	case errors.Is(err, service.ErrTokenMalformed):
		c.JSON(http.StatusUnauthorized, model.AuthErrorResponse{Message: "Invalid token", Error: "invalid_token"})
	default:
		h.logger.Error("auth request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.AuthErrorResponse{
			Message: "Internal server error",
			Error:   "server_error",
		})
	}
}
