package server

import (
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.POST("/login", s.handleLogin)
	apiV1.POST("/logout", s.handleLogout)

	v1Authed := apiV1.Group("")
	v1Authed.Use(TrySetUserToContext(s.conf.JwtSecret))
	v1Authed.Use(NeedAuth())

	v1Authed.POST("/analyze", s.handleAnalyze)
	v1Authed.POST("/analyze/batch", s.handleAnalyzeBatch)

	v1Authed.GET("/jobs", s.handleListJobs)
	v1Authed.GET("/job/:job_uuid", SetBatchJobToContext(), s.handleGetJob)
}
