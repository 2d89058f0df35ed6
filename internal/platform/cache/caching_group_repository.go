// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"split_backend/internal/feature/groups/domain/entity"
	"split_backend/internal/feature/groups/usecase"
)

// CachingGroupRepository decorates a GroupRepository with a Redis read-through
// cache for FindByID. It is also the Transactor for the same repository: writes
// made inside WithinTransaction invalidate their keys only after the commit.
//
// Reads made inside a transaction always go to the inner repository.
type CachingGroupRepository struct {
	inner     usecase.GroupRepository
	tx        usecase.Transactor
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	flight    singleflight.Group
}

var (
	_ usecase.GroupRepository = (*CachingGroupRepository)(nil)
	_ usecase.Transactor      = (*CachingGroupRepository)(nil)
)

// NewCachingGroupRepository decorates inner with Redis caching. A nil rdb disables caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "groups".
func NewCachingGroupRepository(rdb *redis.Client, ttl time.Duration, inner usecase.GroupRepository, tx usecase.Transactor, namespace string) *CachingGroupRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "groups"
	}
	return &CachingGroupRepository{
		inner:     inner,
		tx:        tx,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// generationTTL keeps invalidation counters well past any in-flight fill.
const generationTTL = 24 * time.Hour

var errStaleSnapshot = errors.New("group changed while loading")

type touchedKey struct{}

// touched collects the group ids written during one transaction.
type touched struct {
	mu  sync.Mutex
	ids map[uint]struct{}
}

func (t *touched) add(id uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids[id] = struct{}{}
}

func touchedFrom(ctx context.Context) (*touched, bool) {
	t, ok := ctx.Value(touchedKey{}).(*touched)
	return t, ok
}

// WithinTransaction runs fn in the inner transaction and invalidates every
// group written by fn once it has committed. Nested calls join the outer one.
func (c *CachingGroupRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := touchedFrom(ctx); ok {
		return c.tx.WithinTransaction(ctx, fn)
	}
	t := &touched{ids: map[uint]struct{}{}}
	if err := c.tx.WithinTransaction(context.WithValue(ctx, touchedKey{}, t), fn); err != nil {
		return err
	}
	for id := range t.ids {
		c.invalidate(ctx, id)
	}
	return nil
}

// Save writes through to the inner repository.
func (c *CachingGroupRepository) Save(ctx context.Context, g *entity.Group) error {
	isNew := g != nil && g.ID == 0
	if err := c.inner.Save(ctx, g); err != nil {
		return err
	}
	if !isNew {
		c.written(ctx, g.ID)
	}
	return nil
}

// Delete removes the group from the inner repository and the cache.
func (c *CachingGroupRepository) Delete(ctx context.Context, g *entity.Group) error {
	if err := c.inner.Delete(ctx, g); err != nil {
		return err
	}
	c.written(ctx, g.ID)
	return nil
}

// written defers invalidation to the commit when ctx is inside WithinTransaction.
func (c *CachingGroupRepository) written(ctx context.Context, id uint) {
	if t, ok := touchedFrom(ctx); ok {
		t.add(id)
		return
	}
	c.invalidate(ctx, id)
}

// FindByID checks the cache first and falls back to the inner repository.
// Concurrent misses for the same id share one inner lookup.
func (c *CachingGroupRepository) FindByID(ctx context.Context, id uint) (*entity.Group, error) {
	if _, inTx := touchedFrom(ctx); c.rdb == nil || inTx {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var g entity.Group
		if err := json.Unmarshal(b, &g); err == nil {
			return &g, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database. Callers only share a flight within one generation,
	// so a read that starts after an invalidation never joins an older load.
	// The flight outlives a cancelled caller because others may be waiting on it.
	gen, genErr := c.generation(ctx, id)
	v, err, _ := c.flight.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		g, err := c.inner.FindByID(fctx, id)
		if err != nil {
			return nil, err
		}
		// 3) Store in cache (best effort)
		if genErr == nil {
			c.fill(fctx, id, gen, g)
		}
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entity.Group).Clone(), nil
}

// FindByIDForUpdate always reads the inner repository.
func (c *CachingGroupRepository) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Group, error) {
	return c.inner.FindByIDForUpdate(ctx, id)
}

func (c *CachingGroupRepository) FindByName(ctx context.Context, name string) (*entity.Group, error) {
	return c.inner.FindByName(ctx, name)
}

func (c *CachingGroupRepository) FindByMember(ctx context.Context, userID uint) ([]*entity.Group, error) {
	return c.inner.FindByMember(ctx, userID)
}

func (c *CachingGroupRepository) FindByCreator(ctx context.Context, userID uint) ([]*entity.Group, error) {
	return c.inner.FindByCreator(ctx, userID)
}

func (c *CachingGroupRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return c.inner.ExistsByName(ctx, name)
}

// generation returns the invalidation counter of one group. A missing counter is 0.
func (c *CachingGroupRepository) generation(ctx context.Context, id uint) (int64, error) {
	n, err := c.rdb.Get(ctx, c.generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// fill stores g only if no invalidation has run since gen was read.
// The generation key is watched so an INCR racing with the SET aborts it.
func (c *CachingGroupRepository) fill(ctx context.Context, id uint, gen int64, g *entity.Group) {
	b, err := json.Marshal(g)
	if err != nil {
		return
	}
	key, genKey := c.cacheKey(id), c.generationKey(id)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if err != nil {
		slog.DebugContext(ctx, "group cache fill skipped", "key", key, "error", err)
	}
}

// invalidate bumps the generation and drops the entry in one MULTI, so a fill
// that read the old generation can no longer store its snapshot.
// It is best effort: a failed call leaves the entry to expire with its TTL.
func (c *CachingGroupRepository) invalidate(ctx context.Context, id uint) {
	if c.rdb == nil {
		return
	}
	key, genKey := c.cacheKey(id), c.generationKey(id)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "group cache invalidation failed", "key", key, "error", err)
	}
}

// cacheKey generates the cache key for one group.
func (c *CachingGroupRepository) cacheKey(id uint) string {
	return fmt.Sprintf("%s:id:%d", c.namespace, id)
}

func (c *CachingGroupRepository) generationKey(id uint) string {
	return fmt.Sprintf("%s:gen:%d", c.namespace, id)
}
