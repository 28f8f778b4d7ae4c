package user

import (
	"fmt"
	"net/mail"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/registro/core"
	"github.com/trezcool/registro/core/record"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNoSession            = errors.New("no authenticated session")
)

// First-run fixture. Fixed sample accounts, one per role, plus the starter
// course owned by the sample professor.
var sampleUsers = []StoredUser{
	{User: User{ID: "student-1", Name: "Estudiante Ejemplo", Email: "estudiante@ejemplo.com", Role: RoleStudent}},
	{User: User{ID: "prof-1", Name: "Profesor Ejemplo", Email: "profesor@ejemplo.com", Role: RoleProfessor}},
	{User: User{ID: "admin-1", Name: "Admin Ejemplo", Email: "admin@ejemplo.com", Role: RoleAdmin}},
}

const samplePassword = "password123"

// Repository persists the whole credential collection at once, plus the
// single session identity (at most one, or none).
type Repository interface {
	LoadUsers() ([]StoredUser, error)
	SaveUsers(users []StoredUser) error
	LoadSessionUser() (User, error) // ErrNoSession when absent
	SaveSessionUser(usr User) error
	ClearSessionUser() error
}

// Service owns the credential collection and the session identity.
type Service struct {
	mutex sync.RWMutex
	users []StoredUser

	repo      Repository
	recordSvc *record.Service
	mailSvc   core.EmailService
	conf      *core.Config
	logger    core.Logger
}

func NewService(repo Repository, recordSvc *record.Service, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	svc := &Service{
		repo:      repo,
		recordSvc: recordSvc,
		mailSvc:   mailSvc,
		conf:      conf,
		logger:    logger,
	}

	var err error
	if svc.users, err = repo.LoadUsers(); err != nil {
		svc.logger.Warn("loading users; starting empty", err)
		svc.users = nil
	}
	if len(svc.users) == 0 {
		svc.seed()
	}
	return svc
}

// seed installs the first-run fixture: one account per role and, when no
// course exists yet, the starter course.
func (svc *Service) seed() {
	for _, su := range sampleUsers {
		if err := su.SetPassword(samplePassword); err != nil {
			svc.logger.Error("hashing sample password", err)
			return
		}
		svc.users = append(svc.users, su)
	}
	svc.save()

	if len(svc.recordSvc.QueryAllCourses()) == 0 {
		svc.recordSvc.CreateCourse(record.NewCourse{
			Name:        "Curso de ejemplo",
			Code:        "CURSO101",
			Description: "Curso de ejemplo para el profesor",
			ProfessorID: "prof-1",
		}, true /* silent */)
	}
}

func (svc *Service) save() {
	if err := svc.repo.SaveUsers(svc.users); err != nil {
		svc.logger.Warn("persisting users", err)
	}
}

// Authenticate establishes the session on an exact credential match. Unknown
// email and wrong password are indistinguishable to the caller.
func (svc *Service) Authenticate(email, password string) (User, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, su := range svc.users {
		if su.Email != email {
			continue
		}
		if err := su.CheckPassword(password); err != nil {
			return User{}, ErrAuthenticationFailed
		}
		if err := svc.repo.SaveSessionUser(su.User); err != nil {
			return User{}, errors.Wrap(err, "saving session")
		}
		return su.User, nil
	}
	return User{}, ErrAuthenticationFailed
}

// CurrentUser returns the session identity, or ErrNoSession.
func (svc *Service) CurrentUser() (User, error) {
	return svc.repo.LoadSessionUser()
}

// Logout clears the session identity.
func (svc *Service) Logout() error {
	return svc.repo.ClearSessionUser()
}

// Register appends a new credential row. A duplicate email (case-sensitive
// exact match) fails and leaves the credential set unchanged. Side effects:
// a new student is enrolled into the first existing course; a new professor
// gets a fabricated default course; a welcome email goes out.
func (svc *Service) Register(nu NewUser) (User, error) {
	svc.mutex.Lock()

	for _, su := range svc.users {
		if su.Email == nu.Email {
			svc.mutex.Unlock()
			return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
	}

	su := StoredUser{User: User{
		ID:    uuid.New().String(),
		Name:  nu.Name,
		Email: nu.Email,
		Role:  nu.Role,
	}}
	if err := su.SetPassword(nu.Password); err != nil {
		svc.mutex.Unlock()
		return User{}, errors.Wrap(err, "hashing password")
	}
	svc.users = append(svc.users, su)
	svc.save()
	svc.mutex.Unlock()

	svc.initializeUserData(su.User)
	svc.sendWelcomeMail(su.User)
	return su.User, nil
}

func (svc *Service) initializeUserData(usr User) {
	switch usr.Role {
	case RoleStudent:
		// enroll the student into the first existing course
		courses := svc.recordSvc.QueryAllCourses()
		if len(courses) == 0 {
			return
		}
		students := append(courses[0].Students, usr.ID)
		if _, err := svc.recordSvc.UpdateCourse(courses[0].ID, record.UpdateCourse{Students: &students}); err != nil {
			svc.logger.Warn("enrolling new student", err)
		}
	case RoleProfessor:
		// fabricate a default course owned by the new professor
		svc.recordSvc.CreateCourse(record.NewCourse{
			Name:        "Curso de ejemplo",
			Code:        "CURSO101",
			Description: "Curso de ejemplo para el profesor",
			ProfessorID: usr.ID,
		}, true /* silent */)
	}
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Bienvenido a " + svc.conf.AppName,
		TextContent: fmt.Sprintf(
			"Hola %s,\n\nTu cuenta ha sido creada. Ingresa en %s para comenzar.\n",
			usr.Name, svc.conf.FrontendBaseURL,
		),
	})
}

// QueryAll returns every account, password-stripped.
func (svc *Service) QueryAll() []User {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	users := make([]User, 0, len(svc.users))
	for _, su := range svc.users {
		users = append(users, su.User)
	}
	return users
}

func (svc *Service) GetByID(id string) (User, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, su := range svc.users {
		if su.ID == id {
			return su.User, nil
		}
	}
	return User{}, ErrNotFound
}

func (svc *Service) GetByEmail(email string) (User, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, su := range svc.users {
		if su.Email == email {
			return su.User, nil
		}
	}
	return User{}, ErrNotFound
}

// SetPassword re-hashes the account's password. Admin command path.
func (svc *Service) SetPassword(email, password string) error {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for i := range svc.users {
		if svc.users[i].Email != email {
			continue
		}
		if err := svc.users[i].SetPassword(password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		svc.save()
		return nil
	}
	return ErrNotFound
}
