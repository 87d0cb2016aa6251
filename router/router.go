package router

import (
	"time"

	"taxquery/api"
	"taxquery/assistant"
	"taxquery/config"
	"taxquery/dataset"
	_ "taxquery/docs"
	"taxquery/middleware"
	"taxquery/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Deps 路由依赖
type Deps struct {
	Assistant *assistant.Assistant
	Sessions  *service.SessionStore
	Loader    dataset.Loader
	Logger    *zap.Logger
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	if d.Logger != nil {
		r.Use(middleware.RequestLogger(d.Logger))
	}

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	assistantHandler := api.NewAssistantHandler(d.Assistant, d.Sessions)
	predictHandler := api.NewPredictHandler(d.Loader)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Minute))
	{
		// 对话
		apiGroup.POST("/get_response", assistantHandler.GetResponse)
		apiGroup.POST("/get_sql_query", assistantHandler.GetSQLQuery)
		apiGroup.POST("/get_breakdown", assistantHandler.GetBreakdown)
		apiGroup.GET("/history", assistantHandler.GetHistory)
		apiGroup.GET("/cities", assistantHandler.GetCities)

		// 预测图表
		apiGroup.GET("/predict", predictHandler.Predict)
		apiGroup.GET("/predict/export", predictHandler.Export)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
