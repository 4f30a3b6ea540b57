package job

import (
	"InsightLedger/internal/pkg/logger"
	"InsightLedger/internal/service"
	"context"
	log "log/slog"
	"time"
)

// InsightSyncJob 定时对所有已配置账号执行完整同步
type InsightSyncJob struct {
	syncSvc service.SyncService
	timeout time.Duration
}

func NewInsightSyncJob(syncSvc service.SyncService, timeout time.Duration) *InsightSyncJob {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &InsightSyncJob{
		syncSvc: syncSvc,
		timeout: timeout,
	}
}

func (s *InsightSyncJob) Run() {
	for _, accountID := range s.syncSvc.Accounts() {
		s.runAccount(accountID)
	}
}

func (s *InsightSyncJob) runAccount(accountID string) {
	ctx, cancel := context.WithTimeout(logger.NewJobContext(context.Background()), s.timeout)
	defer cancel()

	start := time.Now()
	run, err := s.syncSvc.SyncAll(ctx, accountID)
	if err != nil {
		log.ErrorContext(ctx, "scheduled sync failed", "account_id", accountID, "err", err)
		return
	}
	if len(run.Errors) > 0 {
		log.WarnContext(ctx, "scheduled sync finished with errors", "account_id", accountID, "errors", run.Errors, "cost", time.Since(start))
		return
	}
	log.InfoContext(ctx, "scheduled sync finished", "account_id", accountID, "cost", time.Since(start))
}
