package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/dto"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出，当前 Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), CurrentIdentity(c)); err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, nil)
}

// Me 当前登录用户
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authSvc.Me(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), CurrentIdentity(c), &req); err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrOldPasswordWrong):
		response.BadRequest(c, 11002, "原密码错误")
	case errors.Is(err, service.ErrSamePassword):
		response.BadRequest(c, 11003, "新密码不能与原密码相同")
	default:
		handleCommonError(c, err)
	}
}
