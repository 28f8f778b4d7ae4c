package record

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/registro/core"
	"github.com/trezcool/registro/core/notification"
)

var (
	// errors
	ErrCourseNotFound   = errors.New("course not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrGradeNotFound    = errors.New("grade not found")
)

// Repository persists the whole of each collection at once: every mutation
// re-serializes the full collection (write-through, no diffing), and the full
// collections are loaded once at startup.
type Repository interface {
	LoadCourses() ([]Course, error)
	SaveCourses(courses []Course) error
	LoadActivities() ([]Activity, error)
	SaveActivities(activities []Activity) error
	LoadGrades() ([]Grade, error)
	SaveGrades(grades []Grade) error
}

// Service is the single source of truth for the Course, Activity and Grade
// collections. Mutations apply in memory first, then write through to the
// Repository; persistence failures degrade to in-memory-only with a warning.
type Service struct {
	mutex      sync.RWMutex
	courses    []Course
	activities []Activity
	grades     []Grade

	repo     Repository
	notifSvc *notification.Service
	logger   core.Logger
}

func NewService(repo Repository, notifSvc *notification.Service, logger core.Logger) *Service {
	svc := &Service{
		repo:     repo,
		notifSvc: notifSvc,
		logger:   logger,
	}
	svc.load()
	return svc
}

func (svc *Service) load() {
	var err error
	if svc.courses, err = svc.repo.LoadCourses(); err != nil {
		svc.logger.Warn("loading courses; starting empty", err)
		svc.courses = nil
	}
	if svc.activities, err = svc.repo.LoadActivities(); err != nil {
		svc.logger.Warn("loading activities; starting empty", err)
		svc.activities = nil
	}
	if svc.grades, err = svc.repo.LoadGrades(); err != nil {
		svc.logger.Warn("loading grades; starting empty", err)
		svc.grades = nil
	}
}

// save* write the whole collection through to the Repository. A failed write
// leaves the in-memory state authoritative for the rest of the session.

func (svc *Service) saveCourses() {
	if err := svc.repo.SaveCourses(svc.courses); err != nil {
		svc.logger.Warn("persisting courses", err)
	}
}

func (svc *Service) saveActivities() {
	if err := svc.repo.SaveActivities(svc.activities); err != nil {
		svc.logger.Warn("persisting activities", err)
	}
}

func (svc *Service) saveGrades() {
	if err := svc.repo.SaveGrades(svc.grades); err != nil {
		svc.logger.Warn("persisting grades", err)
	}
}

// Courses

func (svc *Service) GetCourse(id string) (Course, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, course := range svc.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (svc *Service) QueryAllCourses() []Course {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()
	return append([]Course(nil), svc.courses...)
}

// GetStudentCourses returns the courses whose students list contains the id.
func (svc *Service) GetStudentCourses(studentID string) []Course {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	courses := make([]Course, 0)
	for _, course := range svc.courses {
		if course.Enrolled(studentID) {
			courses = append(courses, course)
		}
	}
	return courses
}

// GetProfessorCourses returns the courses owned by the professor.
func (svc *Service) GetProfessorCourses(professorID string) []Course {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	courses := make([]Course, 0)
	for _, course := range svc.courses {
		if course.ProfessorID == professorID {
			courses = append(courses, course)
		}
	}
	return courses
}

// CreateCourse appends a new course and emits a success notification.
// The registration and first-run seeding paths pass silent to skip it.
func (svc *Service) CreateCourse(nc NewCourse, silent ...bool) Course {
	course := Course{
		ID:          uuid.New().String(),
		Name:        nc.Name,
		Code:        nc.Code,
		Description: nc.Description,
		ProfessorID: nc.ProfessorID,
		Students:    nc.Students,
	}
	if course.Students == nil {
		course.Students = []string{}
	}

	svc.mutex.Lock()
	svc.courses = append(svc.courses, course)
	svc.saveCourses()
	svc.mutex.Unlock()

	if !(len(silent) > 0 && silent[0]) {
		svc.notifSvc.Show(
			"Curso creado",
			fmt.Sprintf("El curso %s ha sido creado", course.Name),
			notification.TypeSuccess,
		)
	}
	return course
}

func (svc *Service) UpdateCourse(id string, uc UpdateCourse) (Course, error) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for i := range svc.courses {
		if svc.courses[i].ID != id {
			continue
		}
		course := &svc.courses[i]
		if uc.Name != "" {
			course.Name = uc.Name
		}
		if uc.Code != "" {
			course.Code = uc.Code
		}
		if uc.Description != "" {
			course.Description = uc.Description
		}
		if uc.ProfessorID != "" {
			course.ProfessorID = uc.ProfessorID
		}
		if uc.Students != nil {
			course.Students = *uc.Students
		}
		svc.saveCourses()
		return *course, nil
	}
	return Course{}, ErrCourseNotFound
}

// DeleteCourse removes the course and cascades removal of its activities and
// their grades. Grades of unrelated courses are untouched.
func (svc *Service) DeleteCourse(id string) error {
	svc.mutex.Lock()

	var found bool
	courses := svc.courses[:0]
	for _, course := range svc.courses {
		if course.ID == id {
			found = true
			continue
		}
		courses = append(courses, course)
	}
	if !found {
		svc.mutex.Unlock()
		return ErrCourseNotFound
	}
	svc.courses = courses

	// cascade: activities of the course, then grades of those activities
	doomed := make(map[string]bool)
	activities := svc.activities[:0]
	for _, act := range svc.activities {
		if act.CourseID == id {
			doomed[act.ID] = true
			continue
		}
		activities = append(activities, act)
	}
	svc.activities = activities

	grades := svc.grades[:0]
	for _, grade := range svc.grades {
		if doomed[grade.ActivityID] {
			continue
		}
		grades = append(grades, grade)
	}
	svc.grades = grades

	svc.saveCourses()
	svc.saveActivities()
	svc.saveGrades()
	svc.mutex.Unlock()

	svc.notifSvc.Show("Curso eliminado", "El curso ha sido eliminado", notification.TypeSuccess)
	return nil
}

// Activities

func (svc *Service) GetActivity(id string) (Activity, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, act := range svc.activities {
		if act.ID == id {
			return act, nil
		}
	}
	return Activity{}, ErrActivityNotFound
}

// GetCourseActivities returns the activities belonging to the course.
func (svc *Service) GetCourseActivities(courseID string) []Activity {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	activities := make([]Activity, 0)
	for _, act := range svc.activities {
		if act.CourseID == courseID {
			activities = append(activities, act)
		}
	}
	return activities
}

func (svc *Service) CreateActivity(na NewActivity) Activity {
	act := Activity{
		ID:          uuid.New().String(),
		CourseID:    na.CourseID,
		Title:       na.Title,
		Description: na.Description,
		Type:        na.Type,
		DueDate:     na.DueDate,
		Weight:      na.Weight,
		Period:      na.Period,
	}

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.activities = append(svc.activities, act)
	svc.saveActivities()
	return act
}

func (svc *Service) UpdateActivity(id string, ua UpdateActivity) (Activity, error) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for i := range svc.activities {
		if svc.activities[i].ID != id {
			continue
		}
		act := &svc.activities[i]
		if ua.Title != "" {
			act.Title = ua.Title
		}
		if ua.Description != "" {
			act.Description = ua.Description
		}
		if ua.Type != "" {
			act.Type = ua.Type
		}
		if ua.DueDate != nil {
			act.DueDate = *ua.DueDate
		}
		if ua.Weight != nil {
			act.Weight = *ua.Weight
		}
		if ua.Period != "" {
			act.Period = ua.Period
		}
		svc.saveActivities()
		return *act, nil
	}
	return Activity{}, ErrActivityNotFound
}

// DeleteActivity removes the activity and cascades removal of its grades.
func (svc *Service) DeleteActivity(id string) error {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	var found bool
	activities := svc.activities[:0]
	for _, act := range svc.activities {
		if act.ID == id {
			found = true
			continue
		}
		activities = append(activities, act)
	}
	if !found {
		return ErrActivityNotFound
	}
	svc.activities = activities

	grades := svc.grades[:0]
	for _, grade := range svc.grades {
		if grade.ActivityID == id {
			continue
		}
		grades = append(grades, grade)
	}
	svc.grades = grades

	svc.saveActivities()
	svc.saveGrades()
	return nil
}

// Grades

// GetGrade returns the grade for the (activity, student) pair.
// CreateGrade upserts on that pair, so at most one row can match.
func (svc *Service) GetGrade(activityID, studentID string) (Grade, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, grade := range svc.grades {
		if grade.ActivityID == activityID && grade.StudentID == studentID {
			return grade, nil
		}
	}
	return Grade{}, ErrGradeNotFound
}

func (svc *Service) GetGradeByID(id string) (Grade, error) {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	for _, grade := range svc.grades {
		if grade.ID == id {
			return grade, nil
		}
	}
	return Grade{}, ErrGradeNotFound
}

// GetStudentGrades returns all grades for a student, optionally narrowed to
// the activities of a single course.
func (svc *Service) GetStudentGrades(studentID string, courseID ...string) []Grade {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	grades := make([]Grade, 0)
	for _, grade := range svc.grades {
		if grade.StudentID == studentID {
			grades = append(grades, grade)
		}
	}
	if len(courseID) == 0 || courseID[0] == "" {
		return grades
	}

	courseActs := make(map[string]bool)
	for _, act := range svc.activities {
		if act.CourseID == courseID[0] {
			courseActs[act.ID] = true
		}
	}
	narrowed := grades[:0]
	for _, grade := range grades {
		if courseActs[grade.ActivityID] {
			narrowed = append(narrowed, grade)
		}
	}
	return narrowed
}

// CreateGrade records a grade. An existing (activity, student) row is updated
// in place rather than duplicated.
func (svc *Service) CreateGrade(ng NewGrade) Grade {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	now := time.Now().UTC()
	for i := range svc.grades {
		if svc.grades[i].ActivityID == ng.ActivityID && svc.grades[i].StudentID == ng.StudentID {
			svc.grades[i].Value = ng.Value
			svc.grades[i].Feedback = ng.Feedback
			svc.grades[i].SubmittedAt = now
			svc.saveGrades()
			return svc.grades[i]
		}
	}

	grade := Grade{
		ID:          uuid.New().String(),
		ActivityID:  ng.ActivityID,
		StudentID:   ng.StudentID,
		Value:       ng.Value,
		Feedback:    ng.Feedback,
		SubmittedAt: now,
	}
	svc.grades = append(svc.grades, grade)
	svc.saveGrades()
	return grade
}

func (svc *Service) UpdateGrade(id string, ug UpdateGrade) (Grade, error) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	for i := range svc.grades {
		if svc.grades[i].ID != id {
			continue
		}
		grade := &svc.grades[i]
		if ug.Value != nil {
			grade.Value = *ug.Value
		}
		if ug.Feedback != "" {
			grade.Feedback = ug.Feedback
		}
		svc.saveGrades()
		return *grade, nil
	}
	return Grade{}, ErrGradeNotFound
}

func (svc *Service) DeleteGrade(id string) error {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	var found bool
	grades := svc.grades[:0]
	for _, grade := range svc.grades {
		if grade.ID == id {
			found = true
			continue
		}
		grades = append(grades, grade)
	}
	if !found {
		return ErrGradeNotFound
	}
	svc.grades = grades
	svc.saveGrades()
	return nil
}

// CalculateFinalGrade computes the re-normalized weighted average over graded
// work only: an activity with no grade yet drops out of both the weighted sum
// and the total weight. Missing work is omitted, never counted as zero.
func (svc *Service) CalculateFinalGrade(studentID, courseID string, period ...string) float64 {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	var p string
	if len(period) > 0 {
		p = period[0]
	}

	courseActs := make([]Activity, 0)
	for _, act := range svc.activities {
		if act.CourseID == courseID && (p == "" || act.Period == p) {
			courseActs = append(courseActs, act)
		}
	}
	if len(courseActs) == 0 {
		return 0
	}

	studentGrades := make(map[string]Grade) // by activity id
	for _, grade := range svc.grades {
		if grade.StudentID != studentID {
			continue
		}
		for _, act := range courseActs {
			if grade.ActivityID == act.ID {
				studentGrades[grade.ActivityID] = grade
				break
			}
		}
	}
	if len(studentGrades) == 0 {
		return 0
	}

	var weightedSum, totalWeight float64
	for _, act := range courseActs {
		if grade, ok := studentGrades[act.ID]; ok {
			weightedSum += grade.Value * act.Weight
			totalWeight += act.Weight
		}
	}

	if totalWeight > 0 {
		return weightedSum / totalWeight
	}
	return 0
}
