// Package router はHTTPルーティングを組み立てます。
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "split_backend/internal/feature/auth/transport/handler"
	grouphandler "split_backend/internal/feature/groups/transport/handler"
	platformhandler "split_backend/internal/platform/http/handler"
	jwtmw "split_backend/internal/platform/jwt"
	"split_backend/internal/platform/middleware"
)

// Options はルーターの横断的な設定です。
type Options struct {
	JWTSecret   string
	CORSEnabled bool
	CORSOrigins []string
}

// NewRouter は全ルートを登録したgin.Engineを返します。
func NewRouter(opts Options, health *platformhandler.HealthHandler, authHandler *authhandler.AuthHandler,
	groups *grouphandler.GroupHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	if opts.CORSEnabled {
		cfg := cors.DefaultConfig()
		if len(opts.CORSOrigins) > 0 {
			cfg.AllowOrigins = opts.CORSOrigins
		} else {
			cfg.AllowAllOrigins = true
		}
		cfg.AddAllowHeaders("Authorization", middleware.HeaderRequestID)
		cfg.AddExposeHeaders(middleware.HeaderRequestID)
		r.Use(cors.New(cfg))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Live)
	r.HEAD("/healthz", health.Live)
	r.GET("/readyz", health.Ready)
	// 新規ユーザー登録
	r.POST("/signup", authHandler.Signup)
	// ログイン（JWT 発行）
	r.POST("/login", authHandler.Login)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(opts.JWTSecret))
	{
		auth.GET("/users/:id", authHandler.GetUserByID)
		auth.GET("/users/by-username/:username", authHandler.GetUserByUsername)
		auth.GET("/users/:id/groups", groups.UserGroups)
		auth.GET("/users/:id/created-groups", groups.CreatedGroups)
		auth.GET("/me/groups", groups.MyGroups)

		auth.POST("/groups", groups.Create)
		auth.GET("/groups/search", groups.Search)
		auth.GET("/groups/:id", groups.Get)
		auth.PATCH("/groups/:id", groups.Update)
		auth.DELETE("/groups/:id", groups.Delete)
		auth.GET("/groups/:id/members", groups.Members)
		auth.POST("/groups/:id/members", groups.AddMember)
		auth.DELETE("/groups/:id/members/:userId", groups.RemoveMember)
	}

	return r
}
