package service

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/util"
	"InsightLedger/internal/reconcile"
	"InsightLedger/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// accountInsightMetrics 通过 /insights 获取的账号指标，followers 来自账号信息
var accountInsightMetrics = []reconcile.Metric{
	reconcile.MetricImpressions,
	reconcile.MetricReach,
	reconcile.MetricAccountsEngaged,
	reconcile.MetricWebsiteClicks,
}

type AccountInsightService interface {
	// SyncAccountInsights 拉取账号累计指标并折算为当天增量
	SyncAccountInsights(ctx context.Context, accountID string) (*dto.AccountInsightsDTO, error)
}

type accountInsightServiceImpl struct {
	fetcher     GraphFetcher
	creds       Credentials
	reconciler  *reconcile.Reconciler
	summaryRepo repository.AccountSummaryRepo
	cache       Cache
}

func NewAccountInsightService(
	fetcher GraphFetcher,
	creds Credentials,
	reconciler *reconcile.Reconciler,
	summaryRepo repository.AccountSummaryRepo,
	cache Cache,
) AccountInsightService {
	return &accountInsightServiceImpl{
		fetcher:     fetcher,
		creds:       creds,
		reconciler:  reconciler,
		summaryRepo: summaryRepo,
		cache:       cache,
	}
}

func (s *accountInsightServiceImpl) SyncAccountInsights(ctx context.Context, accountID string) (*dto.AccountInsightsDTO, error) {
	token, err := resolveToken(ctx, s.creds, accountID)
	if err != nil {
		return nil, err
	}

	// 两次上游请求都成功后才开始写库
	account, err := s.fetcher.GetAccount(ctx, token, accountID)
	if err != nil {
		return nil, upstreamError(err)
	}
	names := make([]string, 0, len(accountInsightMetrics))
	for _, m := range accountInsightMetrics {
		names = append(names, string(m))
	}
	values, err := s.fetcher.GetAccountInsights(ctx, token, accountID, names)
	if err != nil {
		return nil, upstreamError(err)
	}

	observations := make([]reconcile.Observation, 0, len(reconcile.SeriesMetrics))
	for _, m := range reconcile.SeriesMetrics {
		var value *int64
		if m == reconcile.MetricFollowers {
			value = account.FollowersCount
		} else if v, ok := values[string(m)]; ok {
			value = util.PtrInt64(v)
		}
		observations = append(observations, reconcile.Observation{
			Key:   reconcile.SeriesKey(accountID, m),
			Value: value,
		})
	}
	results := s.reconciler.ReconcileAll(ctx, observations)

	today := s.reconciler.Today()
	out := &dto.AccountInsightsDTO{
		AccountID:  accountID,
		Username:   account.Username,
		MetricDate: today.Format(time.DateOnly),
		Metrics:    make([]*dto.MetricStatusDTO, 0, len(results)),
	}
	applied := 0
	for _, res := range results {
		if res.Status == reconcile.StatusApplied {
			applied++
		}
		out.Metrics = append(out.Metrics, metricStatus(ctx, string(res.Key.Metric), res))
	}

	if applied > 0 && account.Username != "" {
		s.updateUsername(ctx, accountID, today, account.Username)
	}
	invalidate(ctx, s.cache, consts.AccountTrend7DaysKey+accountID, consts.AccountTrend30DaysKey+accountID)

	log.InfoContext(ctx, "account insights reconciled", "account_id", accountID, "applied", applied, "metrics", len(results))
	return out, nil
}

// updateUsername 用户名只是展示信息，写入失败不影响本次对账
func (s *accountInsightServiceImpl) updateUsername(ctx context.Context, accountID string, today time.Time, username string) {
	summary, err := s.summaryRepo.GetByDate(ctx, accountID, today)
	if err != nil {
		log.WarnContext(ctx, "load account summary failed", "account_id", accountID, "err", err)
		return
	}
	if summary == nil || summary.Username == username {
		return
	}
	if err = s.summaryRepo.UpdateUsername(ctx, summary.ID, username); err != nil {
		log.WarnContext(ctx, "update username failed", "account_id", accountID, "err", err)
	}
}
