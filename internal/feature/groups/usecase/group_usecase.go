package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"split_backend/internal/feature/groups/domain/entity"
)

// GroupUsecase is the only writer of group state. It holds no state between calls.
//
// Authorization:
//   - adding a member requires the requester to be the creator or a current member;
//   - a member may remove themselves, only the creator may remove someone else;
//   - renaming and deleting are creator-only.
//
// A requester who fails these checks gets ErrAccessDenied even when they are not
// a member, so the existence of the group is not hidden.
type GroupUsecase struct {
	groups GroupRepository
	users  UserDirectory
	tx     Transactor
}

// NewGroupUsecase creates a GroupUsecase from its collaborators.
func NewGroupUsecase(groups GroupRepository, users UserDirectory, tx Transactor) *GroupUsecase {
	return &GroupUsecase{groups: groups, users: users, tx: tx}
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// CreateGroup creates a group whose only member is the creator.
func (u *GroupUsecase) CreateGroup(ctx context.Context, name string, creatorID uint) (*entity.Group, error) {
	validName, err := entity.ValidateGroupName(name)
	if err != nil {
		return nil, validationError(err)
	}

	var created *entity.Group
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		creator, err := u.users.FindByID(ctx, creatorID)
		if err != nil {
			return err
		}

		g, err := entity.NewGroup(validName, creator)
		if err != nil {
			return validationError(err)
		}

		if err := u.groups.Save(ctx, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		created = g
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "create group failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "group created", "group_id", created.ID, "creator_id", creatorID)
	return created, nil
}

// FindGroupByID looks a group up. A missing group is reported as ok == false, not as an error.
func (u *GroupUsecase) FindGroupByID(ctx context.Context, groupID uint) (*entity.Group, bool, error) {
	g, err := u.groups.FindByID(ctx, groupID)
	if errors.Is(err, ErrGroupNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// FindGroupByName returns the first group with the exact name.
func (u *GroupUsecase) FindGroupByName(ctx context.Context, name string) (*entity.Group, bool, error) {
	g, err := u.groups.FindByName(ctx, name)
	if errors.Is(err, ErrGroupNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// AddMemberToGroup adds userIDToAdd to the group on behalf of requestingUserID.
func (u *GroupUsecase) AddMemberToGroup(ctx context.Context, groupID, userIDToAdd, requestingUserID uint) (*entity.Group, error) {
	var updated *entity.Group
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		g, err := u.groups.FindByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		user, err := u.users.FindByID(ctx, userIDToAdd)
		if err != nil {
			return err
		}
		if !g.IsCreator(requestingUserID) && !g.HasMember(requestingUserID) {
			return ErrAccessDenied
		}
		if !g.AddMember(user) {
			return ErrUserAlreadyInGroup
		}
		if err := u.groups.Save(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "add member failed",
			"group_id", groupID, "user_id", userIDToAdd, "requester_id", requestingUserID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "member added", "group_id", groupID, "user_id", userIDToAdd, "requester_id", requestingUserID)
	return updated, nil
}

// RemoveMemberFromGroup removes userIDToRemove from the group on behalf of requestingUserID.
// The last remaining member can never be removed.
func (u *GroupUsecase) RemoveMemberFromGroup(ctx context.Context, groupID, userIDToRemove, requestingUserID uint) (*entity.Group, error) {
	var updated *entity.Group
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		g, err := u.groups.FindByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := u.users.FindByID(ctx, userIDToRemove); err != nil {
			return err
		}
		selfRemoval := userIDToRemove == requestingUserID && g.HasMember(requestingUserID)
		if !selfRemoval && !g.IsCreator(requestingUserID) {
			return ErrAccessDenied
		}
		if !g.HasMember(userIDToRemove) {
			return ErrUserNotInGroup
		}
		if g.MemberCount() <= 1 {
			return ErrCannotRemoveLastMember
		}
		g.RemoveMember(userIDToRemove)
		if err := u.groups.Save(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "remove member failed",
			"group_id", groupID, "user_id", userIDToRemove, "requester_id", requestingUserID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "member removed", "group_id", groupID, "user_id", userIDToRemove, "requester_id", requestingUserID)
	return updated, nil
}

// FindGroupsByMember returns the groups userID currently belongs to.
func (u *GroupUsecase) FindGroupsByMember(ctx context.Context, userID uint) ([]*entity.Group, error) {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return u.groups.FindByMember(ctx, userID)
}

// FindGroupsByCreator returns the groups userID created, whether or not they are still a member.
func (u *GroupUsecase) FindGroupsByCreator(ctx context.Context, userID uint) ([]*entity.Group, error) {
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return u.groups.FindByCreator(ctx, userID)
}

// GetGroupMembers returns a snapshot of the member set ordered by user id.
func (u *GroupUsecase) GetGroupMembers(ctx context.Context, groupID uint) ([]entity.User, error) {
	g, err := u.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return g.Members(), nil
}

// UpdateGroupDetails renames the group. Only the creator may rename.
func (u *GroupUsecase) UpdateGroupDetails(ctx context.Context, groupID uint, newName string, requestingUserID uint) (*entity.Group, error) {
	var updated *entity.Group
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		g, err := u.groups.FindByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if !g.IsCreator(requestingUserID) {
			return ErrAccessDenied
		}
		if err := g.Rename(newName); err != nil {
			return validationError(err)
		}
		if err := u.groups.Save(ctx, g); err != nil {
			return err
		}
		updated = g
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "rename group failed", "group_id", groupID, "requester_id", requestingUserID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "group renamed", "group_id", groupID, "name", updated.Name)
	return updated, nil
}

// DeleteGroup removes the group and all of its member edges. Only the creator may delete.
// Deleting an id that no longer exists fails with ErrGroupNotFound.
func (u *GroupUsecase) DeleteGroup(ctx context.Context, groupID, requestingUserID uint) error {
	err := u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		g, err := u.groups.FindByIDForUpdate(ctx, groupID)
		if err != nil {
			return err
		}
		if !g.IsCreator(requestingUserID) {
			return ErrAccessDenied
		}
		return u.groups.Delete(ctx, g)
	})
	if err != nil {
		slog.WarnContext(ctx, "delete group failed", "group_id", groupID, "requester_id", requestingUserID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "group deleted", "group_id", groupID, "requester_id", requestingUserID)
	return nil
}
