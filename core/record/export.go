package record

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/registro/core"
	"github.com/trezcool/registro/core/notification"
)

// Grade sheet formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var errUnknownFormat = errors.New("unknown grade sheet format")

var csvHeader = []string{"activityId", "studentId", "value", "feedback", "submittedAt"}

// GradeSheetRow is one line of an exported or imported grade sheet.
type GradeSheetRow struct {
	ActivityID  string    `json:"activityId"`
	StudentID   string    `json:"studentId"`
	Value       float64   `json:"value"`
	Feedback    string    `json:"feedback"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ExportGrades serializes every grade recorded against the course's
// activities, in csv or json format.
func (svc *Service) ExportGrades(courseID, format string) ([]byte, error) {
	if _, err := svc.GetCourse(courseID); err != nil {
		return nil, err
	}

	rows := svc.gradeSheet(courseID)

	var data []byte
	var err error
	switch format {
	case FormatCSV:
		data, err = marshalCSV(rows)
	case FormatJSON:
		data, err = json.MarshalIndent(rows, "", "  ")
	default:
		return nil, core.NewValidationError(errUnknownFormat, core.FieldError{Field: "format", Error: errUnknownFormat.Error()})
	}
	if err != nil {
		return nil, errors.Wrap(err, "serializing grade sheet")
	}

	svc.notifSvc.Show(
		"Exportación exitosa",
		"Las calificaciones han sido exportadas en formato "+format,
		notification.TypeSuccess,
	)
	return data, nil
}

// ImportGrades parses a grade sheet in the export format and upserts every
// row whose activity belongs to the course. Rows pointing outside the course
// are rejected as a whole.
func (svc *Service) ImportGrades(courseID string, data []byte, format string) error {
	if _, err := svc.GetCourse(courseID); err != nil {
		return err
	}

	var rows []GradeSheetRow
	var err error
	switch format {
	case FormatCSV:
		rows, err = unmarshalCSV(data)
	case FormatJSON:
		err = json.Unmarshal(data, &rows)
	default:
		return core.NewValidationError(errUnknownFormat, core.FieldError{Field: "format", Error: errUnknownFormat.Error()})
	}
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "parsing grade sheet"))
	}

	courseActs := make(map[string]bool)
	for _, act := range svc.GetCourseActivities(courseID) {
		courseActs[act.ID] = true
	}
	for i, row := range rows {
		if !courseActs[row.ActivityID] {
			return core.NewValidationError(
				errors.New("grade sheet references an activity outside the course"),
				core.FieldError{Field: "activityId", Error: "activity " + row.ActivityID + " does not belong to the course"},
			)
		}
		if row.StudentID == "" {
			return core.NewValidationError(
				errors.Errorf("grade sheet row %d is missing a student", i+1),
				core.FieldError{Field: "studentId", Error: "this field is required"},
			)
		}
		if row.Value < 0 {
			return core.NewValidationError(
				errors.Errorf("grade sheet row %d carries a negative value", i+1),
				core.FieldError{Field: "value", Error: "value cannot be negative"},
			)
		}
	}

	for _, row := range rows {
		svc.CreateGrade(NewGrade{
			ActivityID: row.ActivityID,
			StudentID:  row.StudentID,
			Value:      row.Value,
			Feedback:   row.Feedback,
		})
	}

	svc.notifSvc.Show("Importación exitosa", "Las calificaciones han sido importadas", notification.TypeSuccess)
	return nil
}

func (svc *Service) gradeSheet(courseID string) []GradeSheetRow {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	courseActs := make(map[string]bool)
	for _, act := range svc.activities {
		if act.CourseID == courseID {
			courseActs[act.ID] = true
		}
	}

	rows := make([]GradeSheetRow, 0)
	for _, grade := range svc.grades {
		if !courseActs[grade.ActivityID] {
			continue
		}
		rows = append(rows, GradeSheetRow{
			ActivityID:  grade.ActivityID,
			StudentID:   grade.StudentID,
			Value:       grade.Value,
			Feedback:    grade.Feedback,
			SubmittedAt: grade.SubmittedAt,
		})
	}
	return rows
}

func marshalCSV(rows []GradeSheetRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rec := []string{
			row.ActivityID,
			row.StudentID,
			strconv.FormatFloat(row.Value, 'f', -1, 64),
			row.Feedback,
			row.SubmittedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func unmarshalCSV(data []byte) ([]GradeSheetRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]GradeSheetRow, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 { // header
			continue
		}
		if len(rec) < 4 {
			return nil, errors.Errorf("row %d: expected at least 4 columns", i)
		}
		value, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: parsing value", i)
		}
		row := GradeSheetRow{
			ActivityID: rec[0],
			StudentID:  rec[1],
			Value:      value,
			Feedback:   rec[3],
		}
		if len(rec) > 4 && rec[4] != "" {
			if row.SubmittedAt, err = time.Parse(time.RFC3339, rec[4]); err != nil {
				return nil, errors.Wrapf(err, "row %d: parsing submittedAt", i)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
