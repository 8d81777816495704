package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ddelizo/sis-api/internal/middleware"
	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Student    *StudentHandler
	Subject    *SubjectHandler
	Grade      *GradeHandler
	Attendance *AttendanceHandler
	Activity   *ActivityHandler
	Report     *ReportHandler
	Parent     *ParentHandler
}

// RegisterRoutes wires all API routes under the given prefix with JWT and
// role checks applied per group.
func RegisterRoutes(r *gin.Engine, prefix string, authSvc *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.JWT(authSvc))
		protected.POST("/logout", h.Auth.Logout)
		protected.POST("/change-password", h.Auth.ChangePassword)
		protected.GET("/me", h.Auth.Me)
	}

	users := api.Group("/users")
	users.Use(middleware.JWT(authSvc))
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), h.User.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.User.Get)
		users.POST("", middleware.RequireRoles(models.RoleAdmin), h.User.Create)
		users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.User.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.User.Delete)
	}

	students := api.Group("/students")
	students.Use(middleware.JWT(authSvc))
	{
		students.GET("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Student.List)
		students.GET("/:id", h.Student.Get)
		students.GET("/:id/summary", h.Student.Summary)
		students.POST("", middleware.RequireRoles(models.RoleAdmin), h.Student.Create)
		students.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Student.Update)
		students.POST("/:id/archive", middleware.RequireRoles(models.RoleAdmin), h.Student.Archive)
		students.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Student.Delete)
	}

	// The student self-lookup lives under /me to keep it out of the
	// /students/:id namespace.
	me := api.Group("/me")
	me.Use(middleware.JWT(authSvc))
	{
		me.GET("/student", middleware.RequireRoles(models.RoleStudent), h.Student.Me)
	}

	subjects := api.Group("/subjects")
	subjects.Use(middleware.JWT(authSvc))
	{
		subjects.GET("", h.Subject.List)
		subjects.GET("/:id", h.Subject.Get)
		subjects.POST("", middleware.RequireRoles(models.RoleAdmin), h.Subject.Create)
		subjects.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), h.Subject.Update)
		subjects.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Subject.Delete)
	}

	grades := api.Group("/grades")
	grades.Use(middleware.JWT(authSvc))
	{
		grades.GET("", h.Grade.List)
		grades.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Grade.Create)
		grades.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Grade.Update)
	}

	attendance := api.Group("/attendance")
	attendance.Use(middleware.JWT(authSvc))
	{
		attendance.GET("", h.Attendance.List)
		attendance.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Attendance.Create)
		attendance.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Attendance.Delete)
	}

	logs := api.Group("/activity-logs")
	logs.Use(middleware.JWT(authSvc))
	{
		logs.GET("", middleware.RequireRoles(models.RoleAdmin), h.Activity.List)
	}

	reports := api.Group("/reports")
	reports.Use(middleware.JWT(authSvc))
	{
		reports.GET("/students", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Report.Students)
		reports.GET("/grades", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Report.Grades)
		reports.GET("/attendance", h.Report.Attendance)
	}

	parents := api.Group("/parents")
	parents.Use(middleware.JWT(authSvc))
	{
		parents.GET("/children", middleware.RequireRoles(models.RoleParent), h.Parent.Children)
		parents.GET("/:id/children", middleware.RBAC(string(models.RoleAdmin), "SELF"), h.Parent.ChildrenOf)
		parents.POST("/links", middleware.RequireRoles(models.RoleAdmin), h.Parent.Link)
		parents.DELETE("/links/:id", middleware.RequireRoles(models.RoleAdmin), h.Parent.Unlink)
	}
}
