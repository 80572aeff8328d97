package repository

import (
	"context"

	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskObjectTypeRepository is a GORM implementation of TaskObjectTypeRepository
type GormTaskObjectTypeRepository struct {
	db *gorm.DB
}

func NewTaskObjectTypeRepository(db *gorm.DB) TaskObjectTypeRepository {
	return &GormTaskObjectTypeRepository{db: db}
}

func (r *GormTaskObjectTypeRepository) List(ctx context.Context) ([]models.TaskObjectType, error) {
	var objectTypes []models.TaskObjectType
	if err := r.db.WithContext(ctx).Order("code").Find(&objectTypes).Error; err != nil {
		return nil, err
	}
	return objectTypes, nil
}

func (r *GormTaskObjectTypeRepository) FindByID(ctx context.Context, id uint64) (*models.TaskObjectType, error) {
	var objectType models.TaskObjectType
	if err := r.db.WithContext(ctx).First(&objectType, id).Error; err != nil {
		return nil, err
	}
	return &objectType, nil
}

func (r *GormTaskObjectTypeRepository) FindByCode(ctx context.Context, code string) (*models.TaskObjectType, error) {
	var objectType models.TaskObjectType
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&objectType).Error; err != nil {
		return nil, err
	}
	return &objectType, nil
}

func (r *GormTaskObjectTypeRepository) Create(ctx context.Context, objectType *models.TaskObjectType) error {
	return r.db.WithContext(ctx).Create(objectType).Error
}

// CreateMissing inserts the entries whose code is not present yet
func (r *GormTaskObjectTypeRepository) CreateMissing(ctx context.Context, objectTypes []models.TaskObjectType) error {
	if len(objectTypes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&objectTypes).Error
}
