package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

type TrustWeightPostgreSQL struct {
	db *gorm.DB
}

func NewTrustWeightPostgreSQL(db *gorm.DB) repositories.TrustWeightRepository {
	return &TrustWeightPostgreSQL{db: db}
}

// Upsert creates or replaces the (truster, trustee) row in one statement.
func (r *TrustWeightPostgreSQL) Upsert(ctx context.Context, weight *models.TrustWeight) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "truster_username"}, {Name: "trustee_username"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight", "updated_at"}),
	}).Create(weight).Error
	if err != nil {
		return fmt.Errorf("failed to upsert trust weight: %w", err)
	}
	return nil
}

func (r *TrustWeightPostgreSQL) Get(ctx context.Context, truster, trustee string) (*models.TrustWeight, error) {
	var weight models.TrustWeight
	err := r.db.WithContext(ctx).
		Where("truster_username = ? AND trustee_username = ?", truster, trustee).
		First(&weight).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trust weight: %w", err)
	}
	return &weight, nil
}

// Delete removes the row; removing an absent row is not an error since
// weight zero and absence are equivalent.
func (r *TrustWeightPostgreSQL) Delete(ctx context.Context, truster, trustee string) error {
	err := r.db.WithContext(ctx).
		Where("truster_username = ? AND trustee_username = ?", truster, trustee).
		Delete(&models.TrustWeight{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete trust weight: %w", err)
	}
	return nil
}

func (r *TrustWeightPostgreSQL) ListByTruster(ctx context.Context, truster string) ([]*models.TrustWeight, error) {
	var weights []*models.TrustWeight
	err := r.db.WithContext(ctx).
		Where("truster_username = ? AND weight > 0", truster).
		Order("trustee_username asc").
		Find(&weights).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted reviewers: %w", err)
	}
	return weights, nil
}
