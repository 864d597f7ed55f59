package app

import (
	"curriculum_backend/internal/config"
	"curriculum_backend/internal/middleware"
	"curriculum_backend/internal/model"
	"curriculum_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// 学员与讲师共用：本地化视图与测验评分
		a.registerLearnerRoutes(authGroup, c)

		// 课程编辑接口
		a.registerAuthoringRoutes(authGroup, c)
	}
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/courses/:id/view", c.course.GetCourseView)
	group.POST("/lessons/:id/grade", c.quiz.GradeSubmission)
	group.GET("/settings/reorder", c.settings.ReorderSettings)
}

func (a *App) registerAuthoringRoutes(group *gin.RouterGroup, c *controllers) {
	authoring := group.Group("")
	authoring.Use(middleware.RoleMiddleware(model.Instructor))
	{
		courses := authoring.Group("/courses")
		{
			courses.POST("", c.course.CreateCourse)
			courses.GET("", c.course.ListCourses)
			courses.GET("/:id", c.course.GetCourseTree)
			courses.PUT("/:id", c.course.UpdateCourse)
			courses.DELETE("/:id", c.course.DeleteCourse)
			courses.POST("/:id/units", c.course.CreateUnit)
			courses.PUT("/:id/units/order", c.course.ReorderUnits)
		}

		units := authoring.Group("/units")
		{
			units.GET("/:id", c.curriculum.GetUnit)
			units.PUT("/:id", c.curriculum.UpdateUnit)
			units.DELETE("/:id", c.curriculum.DeleteUnit)
			units.POST("/:id/lessons", c.curriculum.CreateLesson)
			units.PUT("/:id/lessons/order", c.curriculum.ReorderLessons)
		}

		lessons := authoring.Group("/lessons")
		{
			lessons.GET("/:id", c.curriculum.GetLesson)
			lessons.PUT("/:id", c.curriculum.UpdateLesson)
			lessons.DELETE("/:id", c.curriculum.DeleteLesson)
			lessons.POST("/:id/questions", c.quiz.CreateQuestion)
			lessons.PUT("/:id/questions/order", c.quiz.ReorderQuestions)
		}

		questions := authoring.Group("/questions")
		{
			questions.GET("/:id", c.quiz.GetQuestion)
			questions.PUT("/:id", c.quiz.UpdateQuestion)
			questions.DELETE("/:id", c.quiz.DeleteQuestion)
			questions.POST("/:id/options", c.quiz.CreateOption)
			questions.PUT("/:id/options/order", c.quiz.ReorderOptions)
		}

		options := authoring.Group("/options")
		{
			options.PUT("/:id", c.quiz.UpdateOption)
			options.DELETE("/:id", c.quiz.DeleteOption)
		}

		uploads := authoring.Group("/uploads")
		{
			uploads.POST("/video", c.upload.UploadVideo)
			uploads.POST("/image", c.upload.UploadImage)
		}
	}
}
