// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"split_backend/internal/app/router"
	authadapters "split_backend/internal/feature/auth/adapters"
	authentity "split_backend/internal/feature/auth/domain/entity"
	authhandler "split_backend/internal/feature/auth/transport/handler"
	authusecase "split_backend/internal/feature/auth/usecase"
	groupadapters "split_backend/internal/feature/groups/adapters"
	grouphandler "split_backend/internal/feature/groups/transport/handler"
	groupusecase "split_backend/internal/feature/groups/usecase"
	"split_backend/internal/platform/cache"
	"split_backend/internal/platform/config"
	"split_backend/internal/platform/db"
	platformhandler "split_backend/internal/platform/http/handler"
	jwtmw "split_backend/internal/platform/jwt"
)

// Models returns every gorm model, in dependency order, for schema migration.
func Models() []any {
	return append([]any{&authentity.User{}}, groupadapters.Models()...)
}

// NewGroupStore returns the group repository and its transactor. When Redis is
// available both are the caching decorator, so invalidation follows commits.
func NewGroupStore(gdb *gorm.DB, rdb *goredis.Client, cfg config.Config) (groupusecase.GroupRepository, groupusecase.Transactor) {
	repo := groupadapters.NewGroupRepository(gdb)
	tx := db.NewTransactor(gdb)
	if rdb == nil {
		return repo, tx
	}
	cached := cache.NewCachingGroupRepository(rdb, cfg.GroupCacheTTL, repo, tx, "groups")
	return cached, cached
}

// NewAuthUsecase wires the auth feature.
func NewAuthUsecase(gdb *gorm.DB, cfg config.Config) *authusecase.AuthUsecase {
	return authusecase.NewAuthUsecase(
		authadapters.NewUserRepository(gdb),
		jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTExpiration),
	)
}

// NewGroupUsecase wires the groups feature.
func NewGroupUsecase(gdb *gorm.DB, rdb *goredis.Client, cfg config.Config) *groupusecase.GroupUsecase {
	groups, tx := NewGroupStore(gdb, rdb, cfg)
	return groupusecase.NewGroupUsecase(groups, groupadapters.NewUserDirectory(gdb), tx)
}

// NewHealthHandler registers readiness checks for the database and, when configured, Redis.
func NewHealthHandler(gdb *gorm.DB, rdb *goredis.Client) *platformhandler.HealthHandler {
	checks := map[string]platformhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return platformhandler.NewHealthHandler(checks)
}

// NewEngine builds the full HTTP engine.
func NewEngine(gdb *gorm.DB, rdb *goredis.Client, cfg config.Config) *gin.Engine {
	if rdb == nil {
		slog.Warn("Redis unavailable. Running without group cache.")
	}
	return router.NewRouter(
		router.Options{JWTSecret: cfg.JWTSecret, CORSEnabled: cfg.CORSEnabled, CORSOrigins: cfg.CORSOrigins},
		NewHealthHandler(gdb, rdb),
		authhandler.NewAuthHandler(NewAuthUsecase(gdb, cfg)),
		grouphandler.NewGroupHandler(NewGroupUsecase(gdb, rdb, cfg)),
	)
}
