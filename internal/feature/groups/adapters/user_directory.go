package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"split_backend/internal/feature/groups/domain/entity"
	"split_backend/internal/feature/groups/usecase"
	dbpkg "split_backend/internal/platform/db"
)

// userDirectory resolves user ids against app_users.
type userDirectory struct {
	db *gorm.DB
}

var _ usecase.UserDirectory = (*userDirectory)(nil)

// NewUserDirectory は指定されたDB接続でuserDirectoryを生成します。
func NewUserDirectory(db *gorm.DB) *userDirectory {
	return &userDirectory{db: db}
}

// FindByID はIDでユーザーを取得します。存在しない場合はusecase.ErrUserNotFoundを返します。
func (d *userDirectory) FindByID(ctx context.Context, id uint) (entity.User, error) {
	if id == 0 {
		return entity.User{}, usecase.ErrUserNotFound
	}
	var rec userRecord
	if err := dbpkg.Conn(ctx, d.db).
		Select("id", "username", "email", "created_at", "updated_at").
		First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.User{}, usecase.ErrUserNotFound
		}
		return entity.User{}, err
	}
	return rec.toEntity(), nil
}

func (r userRecord) toEntity() entity.User {
	return entity.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
