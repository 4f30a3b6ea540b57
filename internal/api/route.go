package api

import (
	"InsightLedger/internal/api/config"
	"InsightLedger/internal/api/middleware"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/logger"
	"InsightLedger/internal/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, signer *security.Signer, logCfg config.LogstashConfig) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, logCfg)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware(signer), middleware.CheckRoles(consts.RoleOperator, consts.RoleAdmin))

		syncGroup := authGroup.Group("/sync")
		{
			syncGroup.GET("/accounts", group.SyncHandler.ListAccounts)
			syncGroup.POST("/:account_id", group.SyncHandler.SyncAll)
			syncGroup.POST("/:account_id/insights", group.SyncHandler.SyncInsights)
			syncGroup.POST("/:account_id/demographics", group.SyncHandler.SyncDemographics)
			syncGroup.POST("/:account_id/posts", group.SyncHandler.SyncPosts)
		}

		metricsGroup := authGroup.Group("/metrics/:account_id")
		{
			metricsGroup.GET("/account", group.MetricsHandler.GetAccountTrend)
			metricsGroup.GET("/account/export", group.MetricsHandler.ExportAccount)
			metricsGroup.GET("/posts/:post_id", group.MetricsHandler.GetPostTrend)
		}
	}

	return r
}
