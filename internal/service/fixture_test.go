package service

import (
	"InsightLedger/internal/model"
	"InsightLedger/internal/pkg/credential"
	"InsightLedger/internal/pkg/graph"
	"InsightLedger/internal/reconcile"
	"InsightLedger/internal/repository"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAccount = "17841400000000000"

func i64(v int64) *int64 {
	return &v
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeFetcher struct {
	mu           sync.Mutex
	account      *graph.Account
	accountErr   error
	insights     map[string]int64
	insightsErr  error
	demographics map[graph.Breakdown][]graph.Bucket
	demoErr      map[graph.Breakdown]error
	media        []graph.Media
	mediaErr     error
	metrics      map[string]*graph.MediaMetrics
	metricsErr   map[string]error
	tokens       []string
	// 调用上游时触发，用来模拟同步过程中的时钟或 ctx 变化
	onDemographics func()
	onMetrics      func(mediaID string)
}

func (f *fakeFetcher) seen(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeFetcher) GetAccount(_ context.Context, token, _ string) (*graph.Account, error) {
	f.seen(token)
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.account, nil
}

func (f *fakeFetcher) GetAccountInsights(_ context.Context, token, _ string, _ []string) (map[string]int64, error) {
	f.seen(token)
	if f.insightsErr != nil {
		return nil, f.insightsErr
	}
	return f.insights, nil
}

func (f *fakeFetcher) GetDemographics(_ context.Context, token, _ string, by graph.Breakdown) ([]graph.Bucket, error) {
	f.seen(token)
	if f.onDemographics != nil {
		f.onDemographics()
	}
	if err := f.demoErr[by]; err != nil {
		return nil, err
	}
	return f.demographics[by], nil
}

func (f *fakeFetcher) ListMedia(_ context.Context, token, _ string) ([]graph.Media, error) {
	f.seen(token)
	if f.mediaErr != nil {
		return nil, f.mediaErr
	}
	return f.media, nil
}

func (f *fakeFetcher) GetMediaMetrics(_ context.Context, token, mediaID string) (*graph.MediaMetrics, error) {
	f.seen(token)
	if f.onMetrics != nil {
		f.onMetrics(mediaID)
	}
	if err := f.metricsErr[mediaID]; err != nil {
		return nil, err
	}
	if m, ok := f.metrics[mediaID]; ok {
		return m, nil
	}
	return &graph.MediaMetrics{}, nil
}

type memCache struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     map[string]time.Duration
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttl[key] = ttl
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (l *fakeLocker) TryLock(_ context.Context, key, owner string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = owner
	return true, nil
}

func (l *fakeLocker) UnLock(_ context.Context, key, owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == owner {
		delete(l.held, key)
	}
}

type fixture struct {
	db          *gorm.DB
	clock       *clock
	fetcher     *fakeFetcher
	cache       *memCache
	creds       *credential.Registry
	reconciler  *reconcile.Reconciler
	summaryRepo repository.AccountSummaryRepo
	postRepo    repository.SocialPostRepo
	insightRepo repository.PostInsightRepo
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	c := &clock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	return &fixture{
		db:          db,
		clock:       c,
		fetcher:     &fakeFetcher{},
		cache:       newMemCache(),
		creds:       credential.NewStaticRegistry(map[string]string{testAccount: "token-1"}),
		reconciler:  reconcile.NewReconciler(repository.NewLedgerRepository(db), reconcile.WithClock(c.Now)),
		summaryRepo: repository.NewAccountSummaryRepository(db),
		postRepo:    repository.NewSocialPostRepository(db),
		insightRepo: repository.NewPostInsightRepository(db),
	}
}

func (f *fixture) accountService() AccountInsightService {
	return NewAccountInsightService(f.fetcher, f.creds, f.reconciler, f.summaryRepo, f.cache)
}

func (f *fixture) audienceService() AudienceService {
	return NewAudienceService(f.fetcher, f.creds, f.reconciler, f.summaryRepo)
}

func (f *fixture) postService() PostInsightService {
	return NewPostInsightService(f.fetcher, f.creds, f.reconciler, f.postRepo, f.cache)
}

func (f *fixture) trendService() *trendServiceImpl {
	svc := NewTrendService(f.summaryRepo, f.postRepo, f.insightRepo, f.cache).(*trendServiceImpl)
	svc.now = f.clock.Now
	return svc
}
