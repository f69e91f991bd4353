package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

type ContentFlagPostgreSQL struct {
	db *gorm.DB
}

func NewContentFlagPostgreSQL(db *gorm.DB) repositories.ContentFlagRepository {
	return &ContentFlagPostgreSQL{db: db}
}

func (r *ContentFlagPostgreSQL) Create(ctx context.Context, flag *models.ContentFlag) error {
	if err := r.db.WithContext(ctx).Create(flag).Error; err != nil {
		return fmt.Errorf("failed to create content flag: %w", err)
	}
	return nil
}

func (r *ContentFlagPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ContentFlag, error) {
	var flag models.ContentFlag
	if err := r.db.WithContext(ctx).First(&flag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content flag: %w", err)
	}
	return &flag, nil
}

// ResolveCAS flips resolved under a version guard so a concurrent resolve
// surfaces as a stale-version miss instead of a silent double write.
func (r *ContentFlagPostgreSQL) ResolveCAS(ctx context.Context, id uint, expectedVersion int) error {
	result := r.db.WithContext(ctx).Model(&models.ContentFlag{}).
		Where("id = ? AND resolved = ? AND version = ?", id, false, expectedVersion).
		Updates(map[string]interface{}{
			"resolved": true,
			"version":  gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to resolve content flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.ContentFlag{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to inspect flag after CAS miss: %w", err)
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrStaleVersion
	}
	return nil
}

func (r *ContentFlagPostgreSQL) List(ctx context.Context, filters repositories.ContentFlagFilters) ([]*models.ContentFlag, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.ContentFlag{})

	if filters.TargetType != nil {
		db = db.Where("target_type = ?", *filters.TargetType)
	}
	if filters.FlaggedBy != nil {
		db = db.Where("flagged_by = ?", *filters.FlaggedBy)
	}
	if filters.Resolved != nil {
		db = db.Where("resolved = ?", *filters.Resolved)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count content flags: %w", err)
	}

	db = applyPagination(db.Order("created_at desc"), filters.Limit, filters.Offset)

	var flags []*models.ContentFlag
	if err := db.Find(&flags).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list content flags: %w", err)
	}
	return flags, total, nil
}

func (r *ContentFlagPostgreSQL) ListUnresolved(ctx context.Context) ([]*models.ContentFlag, error) {
	var flags []*models.ContentFlag
	err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at asc").
		Find(&flags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved flags: %w", err)
	}
	return flags, nil
}
