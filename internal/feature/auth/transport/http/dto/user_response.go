package dto

import (
	"split_backend/internal/api"
	"split_backend/internal/feature/auth/domain/entity"
)

// NewUserResponse はエンティティを公開用のレスポンスに変換します。
func NewUserResponse(u *entity.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
