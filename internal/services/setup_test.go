package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	catalog  *CatalogService
	targets  *TargetResolver
	tasks    *TaskService
	comments *CommentService
	reports  *ReportService
	users    *UserService
	auth     *AuthService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.TaskObjectType{},
		&models.Beneficiary{},
		&models.Sponsor{},
		&models.Referent{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskComment{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	catalog := NewCatalogService(repository.NewTaskObjectTypeRepository(db), "autre", nil)
	require.NoError(t, catalog.Seed(context.Background()))

	targets := NewTargetResolver(
		repository.NewBeneficiaryPool(db),
		repository.NewReferentPool(db),
		repository.NewSponsorPool(db),
	)
	tasks := NewTaskService(taskRepo, userRepo, catalog, targets, nil)

	return &testEnv{
		db:       db,
		catalog:  catalog,
		targets:  targets,
		tasks:    tasks,
		comments: NewCommentService(tasks, repository.NewCommentRepository(db), nil),
		reports:  NewReportService(taskRepo, targets),
		users:    NewUserService(userRepo),
		auth:     NewAuthService(userRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, email string, fullName string, roles ...string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "hashedpassword"}
	if fullName != "" {
		user.FullName = &fullName
	}
	for _, name := range roles {
		role := models.Role{Name: name, Label: name}
		require.NoError(t, e.db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error)
		user.Roles = append(user.Roles, role)
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createBeneficiary(t *testing.T, first, last string) *models.Beneficiary {
	t.Helper()
	b := &models.Beneficiary{FirstName: first, LastName: last}
	require.NoError(t, e.db.Create(b).Error)
	return b
}

func (e *testEnv) createSponsor(t *testing.T, first, last string) *models.Sponsor {
	t.Helper()
	s := &models.Sponsor{FirstName: first, LastName: last}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func uint64Ptr(v uint64) *uint64 { return &v }

// backOfficeInput is a valid ToDo task with no record target
func backOfficeInput(title string) TaskInput {
	return TaskInput{
		Title:          title,
		ObjectTypeCode: "demande_info",
		Status:         "ToDo",
		StartDate:      "2024-09-01",
		TargetType:     "backoffice",
	}
}
