package record

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/registro/core"
)

// Grading periods
const (
	Period1 = "1"
	Period2 = "2"
	Period3 = "3"
)

var Periods = []string{Period1, Period2, Period3}

type (
	// Course is owned by a single professor and holds an ordered list of
	// enrolled student ids.
	Course struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Code        string   `json:"code"`
		Description string   `json:"description"`
		ProfessorID string   `json:"professorId"`
		Students    []string `json:"students"`
	}

	// Activity belongs to exactly one Course. Weight is a 0-1 fraction;
	// weights across a (course, period) group are not required to sum to 1.
	Activity struct {
		ID          string    `json:"id"`
		CourseID    string    `json:"courseId"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Type        string    `json:"type"`
		DueDate     time.Time `json:"dueDate"`
		Weight      float64   `json:"weight"`
		Period      string    `json:"period"`
	}

	// Grade scores a single (activity, student) pair.
	Grade struct {
		ID          string    `json:"id"`
		ActivityID  string    `json:"activityId"`
		StudentID   string    `json:"studentId"`
		Value       float64   `json:"value"`
		Feedback    string    `json:"feedback"`
		SubmittedAt time.Time `json:"submittedAt"`
	}
)

// Enrolled reports whether the student is in the course's students list.
func (c Course) Enrolled(studentID string) bool {
	for _, id := range c.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string   `json:"name" validate:"required"`
	Code        string   `json:"code" validate:"required,alphanum_"`
	Description string   `json:"description"`
	ProfessorID string   `json:"professorId" validate:"required"`
	Students    []string `json:"students"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing
// Course. Zero-valued fields are left untouched.
type UpdateCourse struct {
	Name        string    `json:"name"`
	Code        string    `json:"code" validate:"omitempty,alphanum_"`
	Description string    `json:"description"`
	ProfessorID string    `json:"professorId"`
	Students    *[]string `json:"students"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Code = core.CleanString(uc.Code)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

// NewActivity contains information needed to create a new Activity.
type NewActivity struct {
	CourseID    string    `json:"courseId" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	DueDate     time.Time `json:"dueDate"`
	Weight      float64   `json:"weight" validate:"gte=0,lte=1"`
	Period      string    `json:"period" validate:"required,period"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.Type = core.CleanString(na.Type)
	return validate.Struct(na)
}

// UpdateActivity defines what information may be provided to modify an
// existing Activity. Zero-valued fields are left untouched.
type UpdateActivity struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	DueDate     *time.Time `json:"dueDate"`
	Weight      *float64   `json:"weight" validate:"omitempty,gte=0,lte=1"`
	Period      string     `json:"period" validate:"omitempty,period"`
}

func (ua *UpdateActivity) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	ua.Description = core.CleanString(ua.Description)
	ua.Type = core.CleanString(ua.Type)
	return validate.Struct(ua)
}

// NewGrade contains information needed to record a new Grade.
type NewGrade struct {
	ActivityID string  `json:"activityId" validate:"required"`
	StudentID  string  `json:"studentId" validate:"required"`
	Value      float64 `json:"value" validate:"gte=0"`
	Feedback   string  `json:"feedback"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Feedback = core.CleanString(ng.Feedback)
	return validate.Struct(ng)
}

// UpdateGrade defines what information may be provided to modify an existing
// Grade. Zero-valued fields are left untouched.
type UpdateGrade struct {
	Value    *float64 `json:"value" validate:"omitempty,gte=0"`
	Feedback string   `json:"feedback"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	ug.Feedback = core.CleanString(ug.Feedback)
	return validate.Struct(ug)
}
