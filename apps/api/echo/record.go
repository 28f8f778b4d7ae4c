package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/registro/core/record"
)

type (
	FinalGradeResponse struct {
		StudentID  string  `json:"studentId"`
		CourseID   string  `json:"courseId"`
		Period     string  `json:"period,omitempty"`
		FinalGrade float64 `json:"finalGrade"`
	}
)

type recordApi struct {
	svc      *record.Service
	validate *validator.Validate
}

func registerRecordAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *record.Service, validate *validator.Validate) {
	api := recordApi{svc: svc, validate: validate}

	// courses
	cg := g.Group("/courses", jwt)
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse, staffMiddleware())
	cg.GET("/:id", api.retrieveCourse)
	cg.PUT("/:id", api.updateCourse, staffMiddleware())
	cg.DELETE("/:id", api.destroyCourse, staffMiddleware())
	cg.GET("/:id/activities", api.queryCourseActivities)
	cg.GET("/:id/students/:studentID/final", api.finalGrade)
	cg.GET("/:id/grades/export", api.exportGrades, staffMiddleware())
	cg.POST("/:id/grades/import", api.importGrades, staffMiddleware())

	// activities
	ag := g.Group("/activities", jwt)
	ag.POST("", api.createActivity, staffMiddleware())
	ag.GET("/:id", api.retrieveActivity)
	ag.PUT("/:id", api.updateActivity, staffMiddleware())
	ag.DELETE("/:id", api.destroyActivity, staffMiddleware())
	ag.GET("/:id/grades/:studentID", api.retrieveGrade)

	// grades
	gg := g.Group("/grades", jwt)
	gg.POST("", api.createGrade, staffMiddleware())
	gg.PUT("/:id", api.updateGrade, staffMiddleware())
	gg.DELETE("/:id", api.destroyGrade, staffMiddleware())

	// student grade listings
	sg := g.Group("/students", jwt)
	sg.GET("/:id/grades", api.queryStudentGrades)
}

// Course handlers

// queryCourses scopes the listing to the caller: students see their
// enrollments, professors their own courses, admins everything.
func (api *recordApi) queryCourses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var courses []record.Course
	switch {
	case claims.IsStudent:
		courses = api.svc.GetStudentCourses(claims.Subject)
	case claims.IsProfessor:
		courses = api.svc.GetProfessorCourses(claims.Subject)
	default:
		courses = api.svc.QueryAllCourses()
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *recordApi) createCourse(ctx echo.Context) error {
	var data record.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	// a professor can only create their own courses
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsProfessor {
		data.ProfessorID = claims.Subject
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.svc.CreateCourse(data))
}

func (api *recordApi) retrieveCourse(ctx echo.Context) error {
	course, err := api.svc.GetCourse(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *recordApi) updateCourse(ctx echo.Context) error {
	var data record.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.svc.UpdateCourse(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *recordApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *recordApi) queryCourseActivities(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.GetCourseActivities(ctx.Param("id")))
}

func (api *recordApi) finalGrade(ctx echo.Context) error {
	courseID := ctx.Param("id")
	studentID := ctx.Param("studentID")
	period := ctx.QueryParam("period")

	if _, err := api.svc.GetCourse(courseID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, FinalGradeResponse{
		StudentID:  studentID,
		CourseID:   courseID,
		Period:     period,
		FinalGrade: api.svc.CalculateFinalGrade(studentID, courseID, period),
	})
}

func (api *recordApi) exportGrades(ctx echo.Context) error {
	format := ctx.QueryParam("format")
	if format == "" {
		format = record.FormatCSV
	}

	data, err := api.svc.ExportGrades(ctx.Param("id"), format)
	if err != nil {
		return err
	}
	contentType := "text/csv"
	if format == record.FormatJSON {
		contentType = echo.MIMEApplicationJSON
	}
	return ctx.Blob(http.StatusOK, contentType, data)
}

func (api *recordApi) importGrades(ctx echo.Context) error {
	format := ctx.QueryParam("format")
	if format == "" {
		format = record.FormatCSV
	}

	data, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading grade sheet")
	}
	if err := api.svc.ImportGrades(ctx.Param("id"), data, format); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "grades imported"})
}

// Activity handlers

func (api *recordApi) createActivity(ctx echo.Context) error {
	var data record.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.svc.CreateActivity(data))
}

func (api *recordApi) retrieveActivity(ctx echo.Context) error {
	act, err := api.svc.GetActivity(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *recordApi) updateActivity(ctx echo.Context) error {
	var data record.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	act, err := api.svc.UpdateActivity(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *recordApi) destroyActivity(ctx echo.Context) error {
	if err := api.svc.DeleteActivity(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Grade handlers

func (api *recordApi) retrieveGrade(ctx echo.Context) error {
	grade, err := api.svc.GetGrade(ctx.Param("id"), ctx.Param("studentID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grade)
}

func (api *recordApi) createGrade(ctx echo.Context) error {
	var data record.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.svc.CreateGrade(data))
}

func (api *recordApi) updateGrade(ctx echo.Context) error {
	var data record.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grade, err := api.svc.UpdateGrade(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grade)
}

func (api *recordApi) destroyGrade(ctx echo.Context) error {
	if err := api.svc.DeleteGrade(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Student grade listings

// queryStudentGrades returns a student's grades, optionally narrowed to one
// course via ?courseId=. Students may only list their own.
func (api *recordApi) queryStudentGrades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	studentID := ctx.Param("id")
	if claims.IsStudent && claims.Subject != studentID {
		return errHttpForbidden
	}
	return ctx.JSON(http.StatusOK, api.svc.GetStudentGrades(studentID, ctx.QueryParam("courseId")))
}
