package service

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/pkg/credential"
	"InsightLedger/internal/pkg/graph"
	"InsightLedger/internal/reconcile"
	"context"
	log "log/slog"
	"time"
)

// GraphFetcher 上游快照来源，由 graph.Client 实现
type GraphFetcher interface {
	GetAccount(ctx context.Context, token, accountID string) (*graph.Account, error)
	GetAccountInsights(ctx context.Context, token, accountID string, metrics []string) (map[string]int64, error)
	GetDemographics(ctx context.Context, token, accountID string, by graph.Breakdown) ([]graph.Bucket, error)
	ListMedia(ctx context.Context, token, accountID string) ([]graph.Media, error)
	GetMediaMetrics(ctx context.Context, token, mediaID string) (*graph.MediaMetrics, error)
}

// Credentials 按账号取凭据，由 credential.Registry 实现
type Credentials interface {
	Provider(accountID string) (credential.Provider, bool)
	Accounts() []string
}

// RunLocker 同步任务互斥
type RunLocker interface {
	TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	UnLock(ctx context.Context, key, owner string)
}

// Cache 字符串缓存，未命中返回空串
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func resolveToken(ctx context.Context, creds Credentials, accountID string) (string, error) {
	provider, ok := creds.Provider(accountID)
	if !ok {
		return "", ErrAccountNotConfigured
	}
	token, err := provider.Token(ctx)
	if err != nil {
		log.ErrorContext(ctx, "resolve access token failed", "account_id", accountID, "err", err)
		return "", upstreamError(err)
	}
	return token, nil
}

func metricStatus(ctx context.Context, name string, res reconcile.Result) *dto.MetricStatusDTO {
	m := &dto.MetricStatusDTO{
		Name:   name,
		Value:  res.Observed,
		Status: string(res.Status),
	}
	if res.Err != nil {
		log.ErrorContext(ctx, "reconcile failed", "key", res.Key.String(), "err", res.Err)
		m.Error = ErrPersistence.Error()
	}
	return m
}

func invalidate(ctx context.Context, cache Cache, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		log.WarnContext(ctx, "invalidate trend cache failed", "keys", keys, "err", err)
	}
}
