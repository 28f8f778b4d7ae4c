package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	. "github.com/trezcool/registro/apps/api/echo"
	"github.com/trezcool/registro/core/record"
	testutil "github.com/trezcool/registro/tests"
)

func Test_recordApi_queryCourses(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)
	professor := sampleProfessor(t)

	// the seeded starter course belongs to the sample professor
	starter := svcs.Record.QueryAllCourses()[0]
	mine := testutil.CreateCourse(t, svcs.Record, "Matemáticas", "MAT101", professor.ID, student.ID)
	other := testutil.CreateCourse(t, svcs.Record, "Química", "QUI101", "prof-x", "student-x")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "student sees enrollments", token: getToken(t, student),
			wantCode: http.StatusOK, wantData: marchallList(t, mine),
		},
		{
			name: "professor sees own courses", token: getToken(t, professor),
			wantCode: http.StatusOK, wantData: marchallList(t, starter, mine),
		},
		{
			name: "admin sees everything", token: getToken(t, sampleAdmin(t)),
			wantCode: http.StatusOK, wantData: marchallList(t, starter, mine, other),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/courses", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_recordApi_createCourse(t *testing.T) {
	app := setup(t)

	professor := sampleProfessor(t)

	t.Run("staff required", func(t *testing.T) {
		body := marchallObj(t, record.NewCourse{Name: "Historia", Code: "HIS101", ProfessorID: "prof-x"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, sampleStudent(t)), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("professor owns what they create", func(t *testing.T) {
		// the professorId in the payload is overridden with the caller's id
		body := marchallObj(t, record.NewCourse{Name: "Historia", Code: "HIS101", ProfessorID: "prof-x"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, professor), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var course record.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &course); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if course.ProfessorID != professor.ID {
			t.Errorf("ProfessorID = %q, want %q", course.ProfessorID, professor.ID)
		}
	})

	t.Run("admin can assign any professor", func(t *testing.T) {
		body := marchallObj(t, record.NewCourse{Name: "Arte", Code: "ART101", ProfessorID: "prof-x"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, sampleAdmin(t)), body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var course record.Course
		_ = json.Unmarshal(rec.Body.Bytes(), &course)
		if course.ProfessorID != "prof-x" {
			t.Errorf("ProfessorID = %q, want %q", course.ProfessorID, "prof-x")
		}
	})

	t.Run("validation", func(t *testing.T) {
		body := marchallObj(t, record.NewCourse{Name: "Sin código"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", getToken(t, sampleAdmin(t)), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "this field is required", "professorId": "this field is required"}),
		}, rec)
	})
}

func Test_recordApi_courseLifecycle(t *testing.T) {
	app := setup(t)

	professor := sampleProfessor(t)
	course := testutil.CreateCourse(t, svcs.Record, "Matemáticas", "MAT101", professor.ID, "student-1")
	adminToken := getToken(t, sampleAdmin(t))

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+course.ID, getToken(t, sampleStudent(t)))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, course)}, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/nope", adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("update", func(t *testing.T) {
		body := marchallObj(t, record.UpdateCourse{Name: "Matemáticas II"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+course.ID, adminToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated record.Course
		_ = json.Unmarshal(rec.Body.Bytes(), &updated)
		if updated.Name != "Matemáticas II" || updated.Code != "MAT101" {
			t.Errorf("update = %+v", updated)
		}
	})

	t.Run("update requires staff", func(t *testing.T) {
		body := marchallObj(t, record.UpdateCourse{Name: "Hackeada"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+course.ID, getToken(t, sampleStudent(t)), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/"+course.ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/courses/"+course.ID, adminToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}

func Test_recordApi_activities(t *testing.T) {
	app := setup(t)

	professor := sampleProfessor(t)
	course := testutil.CreateCourse(t, svcs.Record, "Matemáticas", "MAT101", professor.ID, "student-1")
	profToken := getToken(t, professor)

	var act record.Activity
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, record.NewActivity{CourseID: course.ID, Title: "Tarea 1", Weight: 0.3, Period: record.Period1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/activities", profToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &act); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
	})

	t.Run("create requires staff", func(t *testing.T) {
		body := marchallObj(t, record.NewActivity{CourseID: course.ID, Title: "Trampa", Weight: 0.3, Period: record.Period1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/activities", getToken(t, sampleStudent(t)), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("invalid period", func(t *testing.T) {
		body := marchallObj(t, record.NewActivity{CourseID: course.ID, Title: "Tarea", Weight: 0.3, Period: "9"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/activities", profToken, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"period": "invalid grading period"}),
		}, rec)
	})

	t.Run("list by course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+course.ID+"/activities", getToken(t, sampleStudent(t)))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, act)}, rec)
	})

	t.Run("update and delete", func(t *testing.T) {
		body := marchallObj(t, record.UpdateActivity{Title: "Tarea final"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/activities/"+act.ID, profToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/activities/"+act.ID, profToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/activities/"+act.ID, profToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})
}

func Test_recordApi_grades(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)
	professor := sampleProfessor(t)
	course := testutil.CreateCourse(t, svcs.Record, "Matemáticas", "MAT101", professor.ID, student.ID)
	act := testutil.CreateActivity(t, svcs.Record, course.ID, "Tarea", record.Period1, 0.3)
	profToken := getToken(t, professor)

	var grade record.Grade
	t.Run("create", func(t *testing.T) {
		body := marchallObj(t, record.NewGrade{ActivityID: act.ID, StudentID: student.ID, Value: 3})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", profToken, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &grade); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
	})

	t.Run("create upserts", func(t *testing.T) {
		body := marchallObj(t, record.NewGrade{ActivityID: act.ID, StudentID: student.ID, Value: 4.5})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", profToken, body)
		app.ServeHTTP(rec, req)

		var updated record.Grade
		_ = json.Unmarshal(rec.Body.Bytes(), &updated)
		if updated.ID != grade.ID || updated.Value != 4.5 {
			t.Errorf("upsert = %+v, want id %s value 4.5", updated, grade.ID)
		}
	})

	t.Run("students cannot grade", func(t *testing.T) {
		body := marchallObj(t, record.NewGrade{ActivityID: act.ID, StudentID: student.ID, Value: 5})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", getToken(t, student), body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("retrieve by activity and student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/activities/"+act.ID+"/grades/"+student.ID, getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got record.Grade
		_ = json.Unmarshal(rec.Body.Bytes(), &got)
		if got.ID != grade.ID {
			t.Errorf("grade = %+v", got)
		}
	})

	t.Run("student lists own grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+student.ID+"/grades?courseId="+course.ID, getToken(t, student))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var grades []record.Grade
		_ = json.Unmarshal(rec.Body.Bytes(), &grades)
		if len(grades) != 1 || grades[0].ID != grade.ID {
			t.Errorf("grades = %+v", grades)
		}
	})

	t.Run("student cannot list another student's grades", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students/otro/grades", getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("update and delete", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"value": 5, "feedback": "excelente"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/grades/"+grade.ID, profToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/grades/"+grade.ID, profToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_recordApi_finalGrade(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)
	professor := sampleProfessor(t)
	course := testutil.CreateCourse(t, svcs.Record, "Matemáticas", "MAT101", professor.ID, student.ID)
	a1 := testutil.CreateActivity(t, svcs.Record, course.ID, "Tarea 1", record.Period1, 0.3)
	a2 := testutil.CreateActivity(t, svcs.Record, course.ID, "Examen", record.Period2, 0.4)
	testutil.CreateGrade(t, svcs.Record, a1.ID, student.ID, 3)
	testutil.CreateGrade(t, svcs.Record, a2.ID, student.ID, 4)

	token := getToken(t, student)
	base := "/v1/courses/" + course.ID + "/students/" + student.ID + "/final"

	// mirror the service's float accumulation, term by term
	w1, w2 := a1.Weight, a2.Weight
	var v1, v2 float64 = 3, 4

	tests := []httpTest{
		{
			name: "all periods", path: base, wantCode: http.StatusOK,
			wantData: marchallObj(t, FinalGradeResponse{StudentID: student.ID, CourseID: course.ID, FinalGrade: (v1*w1 + v2*w2) / (w1 + w2)}),
		},
		{
			name: "single period", path: base + "?period=1", wantCode: http.StatusOK,
			wantData: marchallObj(t, FinalGradeResponse{StudentID: student.ID, CourseID: course.ID, Period: "1", FinalGrade: (v1 * w1) / w1}),
		},
		{
			name: "empty period", path: base + "?period=3", wantCode: http.StatusOK,
			wantData: marchallObj(t, FinalGradeResponse{StudentID: student.ID, CourseID: course.ID, Period: "3", FinalGrade: 0}),
		},
		{
			name: "unknown course", path: "/v1/courses/nope/students/" + student.ID + "/final",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_recordApi_gradeSheet(t *testing.T) {
	app := setup(t)

	student := sampleStudent(t)
	professor := sampleProfessor(t)
	course := testutil.CreateCourse(t, svcs.Record, "Matemáticas", "MAT101", professor.ID, student.ID)
	act := testutil.CreateActivity(t, svcs.Record, course.ID, "Tarea", record.Period1, 0.3)
	testutil.CreateGrade(t, svcs.Record, act.ID, student.ID, 4)

	profToken := getToken(t, professor)
	base := "/v1/courses/" + course.ID + "/grades"

	t.Run("export csv", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, base+"/export", profToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("Content-Type = %q, want text/csv", ct)
		}
		if !strings.HasPrefix(rec.Body.String(), "activityId,studentId,value,feedback,submittedAt") {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("export json", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, base+"/export?format=json", profToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var rows []record.GradeSheetRow
		if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(rows) != 1 || rows[0].Value != 4 {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("export requires staff", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, base+"/export", getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("import csv", func(t *testing.T) {
		sheet := strings.Join([]string{
			"activityId,studentId,value,feedback,submittedAt",
			act.ID + "," + student.ID + ",2.5,repite la tarea,",
		}, "\n")
		req, rec := newAuthRequest(http.MethodPost, base+"/import", profToken, []byte(sheet))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		grade, err := svcs.Record.GetGrade(act.ID, student.ID)
		if err != nil {
			t.Fatalf("GetGrade() error = %v", err)
		}
		if grade.Value != 2.5 || grade.Feedback != "repite la tarea" {
			t.Errorf("grade = %+v", grade)
		}
	})

	t.Run("import rejects foreign rows", func(t *testing.T) {
		sheet := strings.Join([]string{
			"activityId,studentId,value,feedback,submittedAt",
			"foreign-act," + student.ID + ",5,,",
		}, "\n")
		req, rec := newAuthRequest(http.MethodPost, base+"/import", profToken, []byte(sheet))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}
