package user

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/registro/core"
)

// Roles. The enumeration is closed: every account has exactly one of these.
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
)

var (
	AllRoles = []string{RoleStudent, RoleProfessor, RoleAdmin}

	Roles = []Role{
		{Name: "Estudiante", Value: RoleStudent},
		{Name: "Profesor", Value: RoleProfessor},
		{Name: "Administrador", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is the password-stripped identity handed to sessions and API callers.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) IsStudent() bool   { return u.Role == RoleStudent }
func (u User) IsProfessor() bool { return u.Role == RoleProfessor }
func (u User) IsAdmin() bool     { return u.Role == RoleAdmin }

// StoredUser is the credential row kept in the users collection; only the
// bcrypt hash is ever stored.
type StoredUser struct {
	User
	PasswordHash []byte `json:"passwordHash"`
}

func (u *StoredUser) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *StoredUser) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new account.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email)
	return validate.Struct(nu)
}
