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
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", s.handleHealth)
	router.GET("/healthz", s.handleHealth)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// unversioned paths kept for clients of the first release
	legacy := router.Group("")
	legacy.Use(TokenAuth(s.conf.JwtSecret))
	legacy.POST("/analyze_video", s.handleAnalyzeVideo)
	legacy.GET("/download/:filename", s.handleDownload)

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	v1Authed := apiV1.Group("")
	v1Authed.Use(TokenAuth(s.conf.JwtSecret))

	v1Authed.POST("/analyze_video", s.handleAnalyzeVideo)
	v1Authed.GET("/download/:filename", s.handleDownload)

	{
		v1Analysis := v1Authed.Group("/analysis")
		v1Analysis.GET("", s.handleListAnalysis)
		v1Analysis.GET("/:analysis_id", s.handleGetAnalysis)
		v1Analysis.DELETE("/:analysis_id", s.handleDeleteAnalysis)
	}
}
