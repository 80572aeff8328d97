package models

import (
	"fmt"
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName     *string   `gorm:"type:varchar(255)" json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Roles []Role `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"-"`
}

// Label is the display name used in assignee lists and comment threads
func (u User) Label() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	if u.Email != "" {
		return u.Email
	}
	return fmt.Sprintf("Utilisateur %d", u.ID)
}

// RoleNames returns the names of the preloaded roles
func (u User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}
