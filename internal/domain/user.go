package domain

import (
	"time"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleOffice     Role = "office"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

var Roles = []Role{RoleAdmin, RoleOffice, RoleTechnician, RoleViewer}

type User struct {
	Meta
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Phone        string     `json:"phone"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

func (u *User) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "email", u.Email)
	validation.Email(ve, "email", u.Email)
	validation.Required(ve, "name", u.Name)
	validation.Required(ve, "role", string(u.Role))
	validation.Enum(ve, "role", u.Role, Roles)
	return ve.Err()
}
