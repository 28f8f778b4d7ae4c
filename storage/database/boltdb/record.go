package boltdb

import (
	bolt "go.etcd.io/bbolt"

	"github.com/trezcool/registro/core/record"
	"github.com/trezcool/registro/storage/database"
)

type recordRepository struct {
	db *bolt.DB
}

var _ record.Repository = (*recordRepository)(nil)

func NewRecordRepository(db *bolt.DB) record.Repository {
	return &recordRepository{db: db}
}

func (repo *recordRepository) LoadCourses() ([]record.Course, error) {
	var courses []record.Course
	if err := loadJSON(repo.db, database.KeyCourses, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *recordRepository) SaveCourses(courses []record.Course) error {
	return saveJSON(repo.db, database.KeyCourses, courses)
}

func (repo *recordRepository) LoadActivities() ([]record.Activity, error) {
	var activities []record.Activity
	if err := loadJSON(repo.db, database.KeyActivities, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (repo *recordRepository) SaveActivities(activities []record.Activity) error {
	return saveJSON(repo.db, database.KeyActivities, activities)
}

func (repo *recordRepository) LoadGrades() ([]record.Grade, error) {
	var grades []record.Grade
	if err := loadJSON(repo.db, database.KeyGrades, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

func (repo *recordRepository) SaveGrades(grades []record.Grade) error {
	return saveJSON(repo.db, database.KeyGrades, grades)
}
