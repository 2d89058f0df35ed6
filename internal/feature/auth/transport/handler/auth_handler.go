// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"split_backend/internal/api"
	"split_backend/internal/feature/auth/domain/entity"
	"split_backend/internal/feature/auth/transport/http/dto"
	"split_backend/internal/feature/auth/usecase"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, username, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// AuthHandler は認証とユーザー参照のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - 入力不正は400
// - ユーザー名またはメールアドレスの重複は409
// - 成功時は作成したユーザーとともに201
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		slog.Warn("signup failed", "error", err, "username", req.Username, "remote_addr", c.ClientIP())
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrUsernameTaken), errors.Is(err, usecase.ErrEmailAlreadyExists):
			// どちらが重複したかは公開しない
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "signup failed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		}
		return
	}

	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - 認証失敗時は401
// - 認証成功時はJWTトークン付きで200
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
			return
		}
		slog.Error("login error", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	slog.Info("user login successful", "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

// GetUserByID は GET /users/:id を処理します。
func (h *AuthHandler) GetUserByID(c *gin.Context) {
	id, err := api.PathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user id"})
		return
	}
	h.respondUser(c, func(ctx context.Context) (*entity.User, error) { return h.auth.FindByID(ctx, id) })
}

// GetUserByUsername は GET /users/by-username/:username を処理します。
func (h *AuthHandler) GetUserByUsername(c *gin.Context) {
	username := c.Param("username")
	h.respondUser(c, func(ctx context.Context) (*entity.User, error) { return h.auth.FindByUsername(ctx, username) })
}

func (h *AuthHandler) respondUser(c *gin.Context, find func(ctx context.Context) (*entity.User, error)) {
	user, err := find(c.Request.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "user not found"})
			return
		}
		slog.Error("user lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
