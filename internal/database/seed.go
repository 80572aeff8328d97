package database

import (
	"context"
	"fmt"

	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedRoles makes sure every named role exists. Existing rows are left alone.
func SeedRoles(ctx context.Context, db *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}

	roles := make([]models.Role, len(names))
	for i, name := range names {
		roles[i] = models.Role{Name: name, Label: name}
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&roles).Error
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	return nil
}
