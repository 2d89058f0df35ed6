// Package adapters はgroupsフィーチャーのリポジトリ実装を提供します。
package adapters

import "time"

// GroupModel is the app_groups row. Members live in app_group_members.
type GroupModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;index"`
	CreatedByID uint   `gorm:"column:created_by_user_id;not null;index"`
	Version     uint   `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (GroupModel) TableName() string { return "app_groups" }

// GroupMemberModel is one membership edge. The composite key makes a duplicate
// edge impossible at the storage level.
type GroupMemberModel struct {
	GroupID   uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

// TableName はGORMが使用するテーブル名を返します。
func (GroupMemberModel) TableName() string { return "app_group_members" }

// userRecord is the read side of app_users. The password column is never selected.
type userRecord struct {
	ID        uint
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "app_users" }

// Models returns the gorm models owned by this package, for schema migration.
func Models() []any {
	return []any{&GroupModel{}, &GroupMemberModel{}}
}
