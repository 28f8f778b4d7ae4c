package testutil

import (
	"io/ioutil"
	"log"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/registro/core"
	"github.com/trezcool/registro/core/notification"
	"github.com/trezcool/registro/core/record"
	"github.com/trezcool/registro/core/user"
	emailsvc "github.com/trezcool/registro/services/email"
	logsvc "github.com/trezcool/registro/services/logger"
	toastsvc "github.com/trezcool/registro/services/toast"
	inmemdb "github.com/trezcool/registro/storage/database/inmem"
)

// NewConfig returns a config suitable for tests; nothing is read from the
// environment.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:            true,
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Registro Académico",
		SecretKey:        "unguessable",
		DefaultFromEmail: mail.Address{Name: "Registro Académico", Address: "noreply@localhost"},
		FrontendBaseURL:  "http://localhost:3000",
		Server: core.ServerConfig{
			Host:               "",
			Port:               "8000",
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: time.Hour,
		},
		Notification: core.NotificationConfig{Retention: notification.DefaultRetention},
	}
}

func NewLogger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
}

var (
	validatorOnce    sync.Once
	sharedTranslator ut.Translator
	sharedValidate   *validator.Validate
)

// initValidator builds the validator/translator pair once; translations are
// registered on the same translator instance the server uses.
func initValidator() {
	validatorOnce.Do(func() {
		_en := en.New()
		uni := ut.New(_en, _en)
		sharedTranslator, _ = uni.GetTranslator("en")

		sharedValidate = validator.New()
		core.InitValidators(sharedValidate, sharedTranslator)
		record.InitValidators(sharedValidate, sharedTranslator)
		user.InitValidators(sharedValidate, sharedTranslator)
	})
}

func NewTranslator() ut.Translator {
	initValidator()
	return sharedTranslator
}

// NewValidator returns a validator with all app validations registered.
func NewValidator() *validator.Validate {
	initValidator()
	return sharedValidate
}

// Services bundles a full in-memory service stack for tests.
type Services struct {
	Toaster *toastsvc.ToasterMock
	Notif   *notification.Service
	Record  *record.Service
	User    *user.Service
}

// NewServices wires the whole stack against fresh in-memory repositories.
// The user service seeds the sample accounts and the starter course.
func NewServices(t *testing.T) *Services {
	t.Helper()
	conf := NewConfig()
	logger := NewLogger()

	toaster := toastsvc.NewToasterMock()
	notifSvc := notification.NewService(toaster, conf.Notification.Retention)
	recordSvc := record.NewService(inmemdb.NewRecordRepository(), notifSvc, logger)
	usrSvc := user.NewService(inmemdb.NewUserRepository(), recordSvc, emailsvc.NewConsoleServiceMock(conf), conf, logger)

	return &Services{
		Toaster: toaster,
		Notif:   notifSvc,
		Record:  recordSvc,
		User:    usrSvc,
	}
}

func CreateCourse(t *testing.T, svc *record.Service, name, code, professorID string, students ...string) record.Course {
	t.Helper()
	return svc.CreateCourse(record.NewCourse{
		Name:        name,
		Code:        code,
		ProfessorID: professorID,
		Students:    students,
	})
}

func CreateActivity(t *testing.T, svc *record.Service, courseID, title, period string, weight float64) record.Activity {
	t.Helper()
	return svc.CreateActivity(record.NewActivity{
		CourseID: courseID,
		Title:    title,
		DueDate:  time.Now().UTC().Add(7 * 24 * time.Hour),
		Weight:   weight,
		Period:   period,
	})
}

func CreateGrade(t *testing.T, svc *record.Service, activityID, studentID string, value float64) record.Grade {
	t.Helper()
	return svc.CreateGrade(record.NewGrade{
		ActivityID: activityID,
		StudentID:  studentID,
		Value:      value,
	})
}

func RegisterUser(t *testing.T, svc *user.Service, name, email, pwd, role string) user.User {
	t.Helper()
	usr, err := svc.Register(user.NewUser{
		Name:     name,
		Email:    email,
		Password: pwd,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("RegisterUser() failed: %v", err)
	}
	return usr
}
