package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"gorm.io/gorm"
)

func TestGormTaskObjectTypeRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskObjectTypeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "label"}).
		AddRow(2, "autre", "Autre").
		AddRow(1, "demande_info", "Demande d'information")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `task_object_types` ORDER BY code")).
		WillReturnRows(rows)

	objectTypes, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, objectTypes, 2)
	assert.Equal(t, "autre", objectTypes[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTaskObjectTypeRepository_FindByCode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskObjectTypeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `task_object_types` WHERE code = ?")).
		WithArgs("missing", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "label"}))

	_, err := repo.FindByCode(context.Background(), "missing")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTaskObjectTypeRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskObjectTypeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `task_object_types`")).
		WithArgs("visite_domicile", "Visite a domicile").
		WillReturnResult(sqlmock.NewResult(12, 1))

	objectType := &models.TaskObjectType{Code: "visite_domicile", Label: "Visite a domicile"}
	err := repo.Create(context.Background(), objectType)

	require.NoError(t, err)
	assert.Equal(t, uint64(12), objectType.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
