package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

type AccessRequestPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAccessRequestPostgreSQL(db *gorm.DB) repositories.AccessRequestRepository {
	return &AccessRequestPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *AccessRequestPostgreSQL) Create(ctx context.Context, request *models.AccessRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return fmt.Errorf("failed to create access request: %w", err)
	}
	return nil
}

func (r *AccessRequestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.AccessRequest, error) {
	var request models.AccessRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access request: %w", err)
	}
	return &request, nil
}

func (r *AccessRequestPostgreSQL) GetPendingByUsername(ctx context.Context, username string) (*models.AccessRequest, error) {
	var request models.AccessRequest
	err := r.db.WithContext(ctx).
		Where("username = ? AND status = ?", username, models.RequestPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return &request, nil
}

func (r *AccessRequestPostgreSQL) HasPendingByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccessRequest{}).
		Where("username = ? AND status = ?", username, models.RequestPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return count > 0, nil
}

// UpdateStatusCAS transitions under a status+version guard. A zero-row match
// is disambiguated into ErrNotFound vs ErrStaleVersion with a follow-up read.
func (r *AccessRequestPostgreSQL) UpdateStatusCAS(ctx context.Context, id uint, expectedStatus models.RequestStatus, expectedVersion int, newStatus models.RequestStatus) error {
	result := r.db.WithContext(ctx).Model(&models.AccessRequest{}).
		Where("id = ? AND status = ? AND version = ?", id, expectedStatus, expectedVersion).
		Updates(map[string]interface{}{
			"status":  newStatus,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update request status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

func (r *AccessRequestPostgreSQL) UpdateDescriptionCAS(ctx context.Context, id uint, expectedVersion int, description string) error {
	result := r.db.WithContext(ctx).Model(&models.AccessRequest{}).
		Where("id = ? AND version = ? AND status <> ?", id, expectedVersion, models.RequestClosed).
		Updates(map[string]interface{}{
			"description": description,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update request description: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

func (r *AccessRequestPostgreSQL) casFailure(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AccessRequest{}).
		Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to inspect request after CAS miss: %w", err)
	}
	if count == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrStaleVersion
}

func (r *AccessRequestPostgreSQL) List(ctx context.Context, filters repositories.AccessRequestFilters) ([]*models.AccessRequest, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.AccessRequest{})

	if filters.Status != nil {
		db = db.Where("status = ?", *filters.Status)
	}
	if filters.Username != nil {
		db = db.Where("username = ?", *filters.Username)
	}
	if filters.DateFrom != nil {
		db = db.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		db = db.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count access requests: %w", err)
	}

	db = applySort(db, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true,
		"username":   true,
	})
	db = applyPagination(db, filters.Limit, filters.Offset)

	var requests []*models.AccessRequest
	if err := db.Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list access requests: %w", err)
	}
	return requests, total, nil
}

func (r *AccessRequestPostgreSQL) ListByStatus(ctx context.Context, status models.RequestStatus) ([]*models.AccessRequest, error) {
	var requests []*models.AccessRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at desc").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s requests: %w", status, err)
	}
	return requests, nil
}
