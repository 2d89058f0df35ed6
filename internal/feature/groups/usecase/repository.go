package usecase

import (
	"context"

	"split_backend/internal/feature/groups/domain/entity"
)

// GroupRepository abstracts durable storage for groups and their member edges.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type GroupRepository interface {
	// Save creates the group on first save (assigning ID, timestamps and version)
	// and updates it afterwards. Updates fail with ErrConcurrentUpdate when the
	// stored version no longer matches g.Version.
	Save(ctx context.Context, g *entity.Group) error

	// FindByID returns ErrGroupNotFound when no group has the id.
	FindByID(ctx context.Context, id uint) (*entity.Group, error)

	// FindByIDForUpdate is FindByID with a row lock held until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*entity.Group, error)

	// FindByName returns the first group with the exact name, or ErrGroupNotFound.
	FindByName(ctx context.Context, name string) (*entity.Group, error)

	// FindByMember returns every group whose member set contains userID.
	FindByMember(ctx context.Context, userID uint) ([]*entity.Group, error)

	// FindByCreator returns every group created by userID.
	FindByCreator(ctx context.Context, userID uint) ([]*entity.Group, error)

	// ExistsByName reports whether any group has the exact name.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Delete removes the group and all of its member edges.
	Delete(ctx context.Context, g *entity.Group) error
}

// UserDirectory resolves user ids to users.
type UserDirectory interface {
	// FindByID returns ErrUserNotFound when the id does not resolve.
	FindByID(ctx context.Context, id uint) (entity.User, error)
}

// Transactor runs fn inside a single storage transaction. Repositories called
// with the ctx passed to fn take part in that transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
