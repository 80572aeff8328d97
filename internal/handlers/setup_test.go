package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/database"
	"github.com/yukikurage/sponsorship-backoffice/internal/middleware"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"github.com/yukikurage/sponsorship-backoffice/internal/services"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "supersecret"

var testManageRoles = []string{"administrateur", "correspondant"}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	hash   string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	zl := zap.NewNop()
	require.NoError(t, database.Migrate(db, zl))

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	catalog := services.NewCatalogService(repository.NewTaskObjectTypeRepository(db), "autre", zl)
	require.NoError(t, catalog.Seed(context.Background()))
	targets := services.NewTargetResolver(
		repository.NewBeneficiaryPool(db),
		repository.NewReferentPool(db),
		repository.NewSponsorPool(db),
	)
	taskService := services.NewTaskService(taskRepo, userRepo, catalog, targets, zl)
	commentService := services.NewCommentService(taskService, repository.NewCommentRepository(db), zl)
	authService := services.NewAuthService(userRepo)
	gate := authz.NewGate(testManageRoles)

	middleware.SetupValidator()

	r := gin.New()
	r.Use(sessions.Sessions("backoffice_session", cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, Handlers{
		Auth:    NewAuthHandler(authService, gate),
		Tasks:   NewTaskHandler(taskService, commentService, targets),
		Catalog: NewCatalogHandler(catalog),
		Reports: NewReportHandler(services.NewReportService(taskRepo, targets)),
		Users:   NewUserHandler(services.NewUserService(userRepo)),
	}, middleware.RequireAuth(authService, gate))

	hash, err := services.HashPassword(testPassword)
	require.NoError(t, err)

	return &testEnv{db: db, router: r, hash: hash}
}

// createTestUser creates a user that can log in with testPassword
func (e *testEnv) createTestUser(t *testing.T, email, fullName string, roles ...string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: e.hash}
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

// login returns the session cookies of a fresh login
func (e *testEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": testPassword,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

func (e *testEnv) do(t *testing.T, method, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
