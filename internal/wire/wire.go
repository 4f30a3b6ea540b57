package wire

import (
	"InsightLedger/internal/api"
	"InsightLedger/internal/api/config"
	"InsightLedger/internal/api/handler"
	"InsightLedger/internal/job"
	"InsightLedger/internal/pkg/credential"
	"InsightLedger/internal/pkg/cron"
	"InsightLedger/internal/pkg/graph"
	"InsightLedger/internal/pkg/logger"
	"InsightLedger/internal/pkg/redis"
	"InsightLedger/internal/pkg/security"
	"InsightLedger/internal/reconcile"
	"InsightLedger/internal/repository"
	"InsightLedger/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
	Signer  *security.Signer
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	graphClient := graph.NewClient(graph.Config{
		BaseURL:         cfg.Graph.BaseURL,
		OAuthURL:        cfg.Graph.OAuthURL,
		Timeout:         time.Duration(cfg.Graph.Timeout) * time.Second,
		BreakerFailures: cfg.Graph.BreakerFailures,
		BreakerOpen:     time.Duration(cfg.Graph.BreakerOpenSecs) * time.Second,
		PageLimit:       cfg.Graph.PostsPageLimit,
		Timeframe:       cfg.Graph.DemographicRange,
		Transport:       logger.NewUpstreamTransport("graph-api"),
	})

	cache := redis.NewCache()
	creds := credential.NewRegistry(cfg.Accounts, cfg.Meta, graphClient, cache)

	summaryRepo := repository.NewAccountSummaryRepository(db)
	socialPostRepo := repository.NewSocialPostRepository(db)
	postInsightRepo := repository.NewPostInsightRepository(db)
	reconciler := reconcile.NewReconciler(repository.NewLedgerRepository(db))

	accountSvc := service.NewAccountInsightService(graphClient, creds, reconciler, summaryRepo, cache)
	audienceSvc := service.NewAudienceService(graphClient, creds, reconciler, summaryRepo)
	postSvc := service.NewPostInsightService(graphClient, creds, reconciler, socialPostRepo, cache)
	lockTTL := time.Duration(cfg.Sync.LockTTL) * time.Second
	syncSvc := service.NewSyncService(creds, redis.NewLocker(), lockTTL, accountSvc, audienceSvc, postSvc)
	trendSvc := service.NewTrendService(summaryRepo, socialPostRepo, postInsightRepo, cache)

	handlers := &api.HandlersGroup{
		SyncHandler:    handler.NewSyncHandler(syncSvc),
		MetricsHandler: handler.NewMetricsHandler(trendSvc),
	}

	signer := security.NewSigner(cfg.Auth)
	router := api.SetupRouter(handlers, signer, cfg.Logstash)

	syncJob := job.NewInsightSyncJob(syncSvc, lockTTL)
	cronMgr := cron.NewCronManager(syncJob, cfg.Sync.Schedule, cfg.Sync.Enabled)

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
		Signer:  signer,
	}, nil
}
