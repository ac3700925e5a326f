package admin

import (
	"errors"
	"time"

	"github.com/spedigo-next/internal/http/response"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest operator login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse operator login result.
type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

// Login authenticates an operator and issues a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	operator, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warnw("operator_login_rejected", "username", req.Username, "remote", c.ClientIP())
			response.Unauthorized(c, "invalid credentials")
			return
		}
		logger.Errorw("operator_login_failed", "username", req.Username, "error", err)
		response.Error(c, response.CodeInternal, "login failed")
		return
	}

	logger.Infow("operator_login", "operator_id", operator.ID, "username", operator.Username)
	response.Success(c, LoginResponse{
		Token:     token,
		Username:  operator.Username,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// ChangePasswordRequest password rotation payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword rotates the authenticated operator's password and revokes
// every outstanding token.
func (h *Handler) ChangePassword(c *gin.Context) {
	operatorID, ok := getOperatorID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "old and new password are required, new password min 8 chars")
		return
	}

	if err := h.AuthService.ChangePassword(operatorID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "old password incorrect")
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "operator not found")
			return
		}
		logger.Errorw("operator_change_password_failed", "operator_id", operatorID, "error", err)
		response.Error(c, response.CodeInternal, "change password failed")
		return
	}

	response.Success(c, nil)
}

func getOperatorID(c *gin.Context) (uint, bool) {
	value, ok := c.Get("operator_id")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
