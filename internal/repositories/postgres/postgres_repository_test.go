package postgres

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/repositories"
)

// setupTestDB opens an isolated in-memory sqlite database with the full
// schema. The compare-and-swap queries under test are plain SQL and behave
// the same as on postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Identity{},
		&models.AccessRequest{},
		&models.TrustWeight{},
		&models.ContentFlag{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

func TestPostgreSQLRepository_WithTransaction(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db})

	t.Run("commits on success", func(t *testing.T) {
		err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			return tx.Identity().Create(ctx, &models.Identity{
				Username: "committed",
				Roles:    models.RoleSet{models.CapStudent},
			})
		})
		if err != nil {
			t.Fatalf("transaction failed: %v", err)
		}

		exists, err := repo.Identity().ExistsByUsername(ctx, "committed")
		if err != nil || !exists {
			t.Errorf("expected identity after commit, exists=%v err=%v", exists, err)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		wantErr := context.Canceled
		err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			if err := tx.Identity().Create(ctx, &models.Identity{
				Username: "rolled-back",
				Roles:    models.RoleSet{models.CapStudent},
			}); err != nil {
				return err
			}
			return wantErr
		})
		if err == nil {
			t.Fatal("expected transaction error")
		}

		exists, err := repo.Identity().ExistsByUsername(ctx, "rolled-back")
		if err != nil {
			t.Fatalf("ExistsByUsername failed: %v", err)
		}
		if exists {
			t.Error("identity survived a rolled-back transaction")
		}
	})
}
