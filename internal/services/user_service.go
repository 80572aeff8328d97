package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/yukikurage/sponsorship-backoffice/internal/authz"
	"github.com/yukikurage/sponsorship-backoffice/internal/models"
	"github.com/yukikurage/sponsorship-backoffice/internal/repository"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UserService exposes the staff directory used to pick assignees
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListAssignableUsers returns every user ordered by full name. Users
// without a full name come last.
func (s *UserService) ListAssignableUsers(ctx context.Context, caps authz.Capabilities) ([]models.User, error) {
	if err := requireManage(caps); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	SortUsers(users)
	return users, nil
}

// SortUsers orders users by full name with French collation, then by id
func SortUsers(users []models.User) {
	c := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(users, func(i, j int) bool {
		a, b := fullName(users[i]), fullName(users[j])
		switch {
		case a == "" && b == "":
			return users[i].ID < users[j].ID
		case a == "":
			return false
		case b == "":
			return true
		}
		if cmp := c.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return users[i].ID < users[j].ID
	})
}

func sortLabels(labels []string) {
	collate.New(language.French, collate.IgnoreCase).SortStrings(labels)
}

func fullName(u models.User) string {
	if u.FullName == nil {
		return ""
	}
	return *u.FullName
}
