package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/campus-qa/access-control-service/internal/cache"
	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

type IdentityPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewIdentityPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.IdentityRepository {
	return &IdentityPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *IdentityPostgreSQL) Create(ctx context.Context, identity *models.Identity) error {
	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	r.cacheManager.InvalidateIdentity(ctx, identity.Username)
	return nil
}

// GetByUsername retrieves an identity with caching.
func (r *IdentityPostgreSQL) GetByUsername(ctx context.Context, username string) (*models.Identity, error) {
	cacheKey := "username:" + username
	var identity models.Identity

	err := r.cacheManager.Identity.CacheOrExecute(ctx, cacheKey, &identity, cache.IdentityCacheConfig.TTL, func() (interface{}, error) {
		var dbIdentity models.Identity
		if err := r.db.WithContext(ctx).First(&dbIdentity, "username = ?", username).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, repositories.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get identity: %w", err)
		}
		return &dbIdentity, nil
	})
	if err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *IdentityPostgreSQL) Update(ctx context.Context, identity *models.Identity) error {
	if err := r.db.WithContext(ctx).Save(identity).Error; err != nil {
		return fmt.Errorf("failed to update identity: %w", err)
	}
	r.cacheManager.InvalidateIdentity(ctx, identity.Username)
	return nil
}

func (r *IdentityPostgreSQL) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Identity{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check identity existence: %w", err)
	}
	return count > 0, nil
}

func (r *IdentityPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.Identity, int64, error) {
	var identities []*models.Identity
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Identity{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count identities: %w", err)
	}

	if err := applyPagination(db.Order("username asc"), limit, offset).Find(&identities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list identities: %w", err)
	}
	return identities, total, nil
}
