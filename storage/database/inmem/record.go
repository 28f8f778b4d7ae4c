// Package inmemdb provides in-memory repositories for tests: same
// whole-collection write-through contract as the bolt repos, no file.
package inmemdb

import (
	"sync"

	"github.com/trezcool/registro/core/record"
)

type recordRepository struct {
	mutex      sync.RWMutex
	courses    []record.Course
	activities []record.Activity
	grades     []record.Grade
}

var _ record.Repository = (*recordRepository)(nil)

func NewRecordRepository() record.Repository {
	return &recordRepository{}
}

func (repo *recordRepository) LoadCourses() ([]record.Course, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return append([]record.Course(nil), repo.courses...), nil
}

func (repo *recordRepository) SaveCourses(courses []record.Course) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.courses = append([]record.Course(nil), courses...)
	return nil
}

func (repo *recordRepository) LoadActivities() ([]record.Activity, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return append([]record.Activity(nil), repo.activities...), nil
}

func (repo *recordRepository) SaveActivities(activities []record.Activity) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.activities = append([]record.Activity(nil), activities...)
	return nil
}

func (repo *recordRepository) LoadGrades() ([]record.Grade, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return append([]record.Grade(nil), repo.grades...), nil
}

func (repo *recordRepository) SaveGrades(grades []record.Grade) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.grades = append([]record.Grade(nil), grades...)
	return nil
}
