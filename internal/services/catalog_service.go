package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTaskObjectTypes is the catalog installed on an empty database
var DefaultTaskObjectTypes = []models.TaskObjectType{
	{Code: "demande_info", Label: "Demande d'information"},
	{Code: "demande_document", Label: "Demande de document"},
	{Code: "demande_entretien", Label: "Demande d'entretien"},
	{Code: "demande_aide_sociale", Label: "Demande d'aide sociale"},
	{Code: "preparation_remise_bourses", Label: "Préparation remise des bourses"},
	{Code: "attribution_bourses", Label: "Attribution des bourses"},
	{Code: "relance_dons", Label: "Relance des dons"},
	{Code: "envoi_email", Label: "Envoi d'email"},
	{Code: "autre", Label: "Autre"},
}

// CatalogService manages the task object type catalog
type CatalogService struct {
	repo         repository.TaskObjectTypeRepository
	catchAllCode string
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService. catchAllCode names the
// entry that is always listed last.
func NewCatalogService(repo repository.TaskObjectTypeRepository, catchAllCode string, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:         repo,
		catchAllCode: catchAllCode,
		logger:       logger,
	}
}

// List returns the catalog in display order
func (s *CatalogService) List(ctx context.Context) ([]models.TaskObjectType, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list task object types: %w", err)
	}
	SortCatalog(entries, s.catchAllCode)
	return entries, nil
}

// SortCatalog orders entries by code with catchAllCode moved to the end
func SortCatalog(entries []models.TaskObjectType, catchAllCode string) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Code, entries[j].Code
		if a == catchAllCode || b == catchAllCode {
			return b == catchAllCode && a != catchAllCode
		}
		return a < b
	})
}

// Resolve finds a catalog entry by id, or by code when id is zero
func (s *CatalogService) Resolve(ctx context.Context, id uint64, code string) (*models.TaskObjectType, error) {
	var (
		entry *models.TaskObjectType
		err   error
	)
	if id != 0 {
		entry, err = s.repo.FindByID(ctx, id)
	} else {
		entry, err = s.repo.FindByCode(ctx, strings.TrimSpace(code))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectTypeNotFound
		}
		return nil, fmt.Errorf("failed to find task object type: %w", err)
	}
	return entry, nil
}

// AddTaskObjectType appends a catalog entry. Entries are never removed
// because tasks keep referencing them.
func (s *CatalogService) AddTaskObjectType(ctx context.Context, caps authz.Capabilities, code, label string) (*models.TaskObjectType, error) {
	if !caps.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !caps.CanManage() {
		return nil, ErrForbidden
	}

	code = strings.ToLower(strings.TrimSpace(code))
	label = strings.TrimSpace(label)
	if code == "" {
		return nil, invalid("code", "code is required")
	}
	if strings.ContainsAny(code, " \t\n") {
		return nil, invalid("code", "code must not contain whitespace")
	}
	if label == "" {
		return nil, invalid("label", "label is required")
	}

	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, invalid("code", "code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check task object type: %w", err)
	}

	entry := &models.TaskObjectType{Code: code, Label: label}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create task object type: %w", err)
	}

	s.logger.Info("Task object type added",
		zap.String("code", entry.Code),
		zap.Uint64("actor_id", caps.UserID),
	)
	return entry, nil
}

// Seed installs the default catalog entries that are missing
func (s *CatalogService) Seed(ctx context.Context) error {
	entries := make([]models.TaskObjectType, len(DefaultTaskObjectTypes))
	copy(entries, DefaultTaskObjectTypes)
	if err := s.repo.CreateMissing(ctx, entries); err != nil {
		return fmt.Errorf("failed to seed task object types: %w", err)
	}
	return nil
}
