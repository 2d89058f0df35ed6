package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"split_backend/internal/feature/groups/domain/entity"
	"split_backend/internal/feature/groups/usecase"
	dbpkg "split_backend/internal/platform/db"
)

// groupGorm はGroupRepositoryインターフェースのGORM実装です。
// グループ本体はapp_groups、メンバーはapp_group_membersに保存されます。
type groupGorm struct {
	db *gorm.DB
}

var _ usecase.GroupRepository = (*groupGorm)(nil)

// NewGroupRepository は指定されたDB接続でgroupGormの新しいインスタンスを生成します。
func NewGroupRepository(db *gorm.DB) *groupGorm {
	return &groupGorm{db: db}
}

// atomic runs fn in the caller's transaction, or in a new one when there is none.
func (r *groupGorm) atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if dbpkg.InTransaction(ctx) {
		return fn(ctx)
	}
	return dbpkg.NewTransactor(r.db).WithinTransaction(ctx, fn)
}

// Save はグループを作成または更新します。
// 更新はversionが一致する場合のみ成功し、一致しない場合はusecase.ErrConcurrentUpdateを返します。
func (r *groupGorm) Save(ctx context.Context, g *entity.Group) error {
	if g == nil {
		return errors.New("group is nil")
	}
	if g.ID == 0 {
		return r.atomic(ctx, func(ctx context.Context) error { return r.create(ctx, g) })
	}
	return r.atomic(ctx, func(ctx context.Context) error { return r.update(ctx, g) })
}

func (r *groupGorm) create(ctx context.Context, g *entity.Group) error {
	m := GroupModel{Name: g.Name, CreatedByID: g.Creator.ID, Version: 1}
	if err := dbpkg.Conn(ctx, r.db).Create(&m).Error; err != nil {
		return err
	}
	if err := r.insertMembers(ctx, m.ID, g.MemberIDs()); err != nil {
		return err
	}
	g.ID = m.ID
	g.Version = m.Version
	g.CreatedAt = m.CreatedAt
	g.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *groupGorm) update(ctx context.Context, g *entity.Group) error {
	now := time.Now()
	res := dbpkg.Conn(ctx, r.db).
		Model(&GroupModel{}).
		Where("id = ? AND version = ?", g.ID, g.Version).
		Updates(map[string]any{
			"name":       g.Name,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := dbpkg.Conn(ctx, r.db).Model(&GroupModel{}).Where("id = ?", g.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return usecase.ErrGroupNotFound
		}
		return usecase.ErrConcurrentUpdate
	}

	if err := r.syncMembers(ctx, g); err != nil {
		return err
	}
	g.Version++
	g.UpdatedAt = now
	return nil
}

// syncMembers makes the stored edges equal to the in-memory member set.
func (r *groupGorm) syncMembers(ctx context.Context, g *entity.Group) error {
	var stored []uint
	if err := dbpkg.Conn(ctx, r.db).
		Model(&GroupMemberModel{}).
		Where("group_id = ?", g.ID).
		Pluck("user_id", &stored).Error; err != nil {
		return err
	}

	storedSet := make(map[uint]struct{}, len(stored))
	var stale []uint
	for _, id := range stored {
		storedSet[id] = struct{}{}
		if !g.HasMember(id) {
			stale = append(stale, id)
		}
	}
	var added []uint
	for _, id := range g.MemberIDs() {
		if _, ok := storedSet[id]; !ok {
			added = append(added, id)
		}
	}

	if len(stale) > 0 {
		if err := dbpkg.Conn(ctx, r.db).
			Where("group_id = ? AND user_id IN ?", g.ID, stale).
			Delete(&GroupMemberModel{}).Error; err != nil {
			return err
		}
	}
	return r.insertMembers(ctx, g.ID, added)
}

func (r *groupGorm) insertMembers(ctx context.Context, groupID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	edges := make([]GroupMemberModel, 0, len(userIDs))
	for _, id := range userIDs {
		edges = append(edges, GroupMemberModel{GroupID: groupID, UserID: id})
	}
	if err := dbpkg.Conn(ctx, r.db).Create(&edges).Error; err != nil {
		return fmt.Errorf("insert members of group %d: %w", groupID, err)
	}
	return nil
}

// FindByID はIDでグループを取得します。存在しない場合はusecase.ErrGroupNotFoundを返します。
func (r *groupGorm) FindByID(ctx context.Context, id uint) (*entity.Group, error) {
	return r.findOne(ctx, dbpkg.Conn(ctx, r.db), id)
}

// FindByIDForUpdate はFindByIDに加えて、トランザクション終了まで行ロックを保持します。
// SQLiteではロック句は無視され、単一接続による直列化に依存します。
func (r *groupGorm) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Group, error) {
	return r.findOne(ctx, dbpkg.Conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *groupGorm) findOne(ctx context.Context, q *gorm.DB, id uint) (*entity.Group, error) {
	if id == 0 {
		return nil, usecase.ErrGroupNotFound
	}
	var m GroupModel
	if err := q.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrGroupNotFound
		}
		return nil, err
	}
	groups, err := r.hydrate(ctx, []GroupModel{m})
	if err != nil {
		return nil, err
	}
	return groups[0], nil
}

// FindByName は名前が完全一致する最初のグループを返します。
func (r *groupGorm) FindByName(ctx context.Context, name string) (*entity.Group, error) {
	var m GroupModel
	if err := dbpkg.Conn(ctx, r.db).Where("name = ?", name).Order("id ASC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrGroupNotFound
		}
		return nil, err
	}
	groups, err := r.hydrate(ctx, []GroupModel{m})
	if err != nil {
		return nil, err
	}
	return groups[0], nil
}

// FindByMember はuserIDが所属するグループをID順に返します。
func (r *groupGorm) FindByMember(ctx context.Context, userID uint) ([]*entity.Group, error) {
	var rows []GroupModel
	if err := dbpkg.Conn(ctx, r.db).
		Joins("JOIN app_group_members m ON m.group_id = app_groups.id").
		Where("m.user_id = ?", userID).
		Order("app_groups.id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// FindByCreator はuserIDが作成したグループをID順に返します。
func (r *groupGorm) FindByCreator(ctx context.Context, userID uint) ([]*entity.Group, error) {
	var rows []GroupModel
	if err := dbpkg.Conn(ctx, r.db).
		Where("created_by_user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// ExistsByName は同名のグループが存在するかを返します。
func (r *groupGorm) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := dbpkg.Conn(ctx, r.db).Model(&GroupModel{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete はグループとそのメンバー関係をすべて削除します。
func (r *groupGorm) Delete(ctx context.Context, g *entity.Group) error {
	if g == nil || g.ID == 0 {
		return usecase.ErrGroupNotFound
	}
	return r.atomic(ctx, func(ctx context.Context) error {
		if err := dbpkg.Conn(ctx, r.db).Where("group_id = ?", g.ID).Delete(&GroupMemberModel{}).Error; err != nil {
			return err
		}
		res := dbpkg.Conn(ctx, r.db).Delete(&GroupModel{}, g.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrGroupNotFound
		}
		return nil
	})
}

// memberRow is one row of the member join. Fields are flat because gorm's Scan
// does not populate unexported embedded structs.
type memberRow struct {
	GroupID   uint
	ID        uint
	Username  string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r memberRow) toEntity() entity.User {
	return entity.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// hydrate loads creators and member sets for rows in two queries.
func (r *groupGorm) hydrate(ctx context.Context, rows []GroupModel) ([]*entity.Group, error) {
	out := make([]*entity.Group, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	groupIDs := make([]uint, 0, len(rows))
	creatorIDs := make([]uint, 0, len(rows))
	for _, m := range rows {
		groupIDs = append(groupIDs, m.ID)
		creatorIDs = append(creatorIDs, m.CreatedByID)
	}

	var creators []userRecord
	if err := dbpkg.Conn(ctx, r.db).
		Select("id", "username", "email", "created_at", "updated_at").
		Where("id IN ?", creatorIDs).
		Find(&creators).Error; err != nil {
		return nil, err
	}
	creatorByID := make(map[uint]entity.User, len(creators))
	for _, c := range creators {
		creatorByID[c.ID] = c.toEntity()
	}

	var members []memberRow
	if err := dbpkg.Conn(ctx, r.db).
		Table("app_group_members AS m").
		Select("m.group_id, u.id, u.username, u.email, u.created_at, u.updated_at").
		Joins("JOIN app_users u ON u.id = m.user_id").
		Where("m.group_id IN ?", groupIDs).
		Order("u.id ASC").
		Scan(&members).Error; err != nil {
		return nil, err
	}
	membersByGroup := make(map[uint][]entity.User, len(rows))
	for _, mr := range members {
		membersByGroup[mr.GroupID] = append(membersByGroup[mr.GroupID], mr.toEntity())
	}

	for _, m := range rows {
		creator, ok := creatorByID[m.CreatedByID]
		if !ok {
			creator = entity.User{ID: m.CreatedByID}
		}
		out = append(out, entity.Restore(m.ID, m.Name, creator, membersByGroup[m.ID], m.Version, m.CreatedAt, m.UpdatedAt))
	}
	return out, nil
}
