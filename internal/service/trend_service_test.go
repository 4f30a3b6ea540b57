package service

import (
	"InsightLedger/internal/model"
	"InsightLedger/internal/pkg/graph"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccountTrend_FillsMissingDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetcher.account = &graph.Account{ID: testAccount, FollowersCount: i64(500)}
	_, err := f.accountService().SyncAccountInsights(ctx, testAccount)
	require.NoError(t, err)
	f.clock.advance(48 * time.Hour)
	f.fetcher.account.FollowersCount = i64(520)
	_, err = f.accountService().SyncAccountInsights(ctx, testAccount)
	require.NoError(t, err)

	trend, err := f.trendService().GetAccountTrend(ctx, testAccount, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, trend.Days)
	require.Len(t, trend.List, 7)
	assert.Equal(t, "2026-02-25", trend.List[0].Date)
	assert.Equal(t, "2026-03-01", trend.List[4].Date)
	assert.Equal(t, int64(500), trend.List[4].Followers)
	assert.Equal(t, int64(0), trend.List[5].Followers)
	assert.Equal(t, "2026-03-03", trend.List[6].Date)
	assert.Equal(t, int64(20), trend.List[6].Followers)
}

func TestGetAccountTrend_CachedUntilMidnight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.trendService()

	_, err := svc.GetAccountTrend(ctx, testAccount, 30)
	require.NoError(t, err)
	key := "insight:account:30days:" + testAccount
	require.Contains(t, f.cache.data, key)
	// 09:30 写入，零点前 5 分钟过期
	assert.Equal(t, 14*time.Hour+25*time.Minute, f.cache.ttl[key])

	require.NoError(t, f.db.Create(&model.AccountSummary{
		AccountID:  testAccount,
		Followers:  9,
		MetricDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	trend, err := svc.GetAccountTrend(ctx, testAccount, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), trend.List[29].Followers)
}

func TestGetAccountTrend_InvalidDays(t *testing.T) {
	f := newFixture(t)
	_, err := f.trendService().GetAccountTrend(context.Background(), testAccount, 14)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestGetPostTrend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetcher.media = []graph.Media{{ID: "m1"}}
	f.fetcher.metrics = map[string]*graph.MediaMetrics{"m1": {Reach: i64(100), Likes: i64(7)}}
	_, err := f.postService().SyncPosts(ctx, testAccount)
	require.NoError(t, err)

	trend, err := f.trendService().GetPostTrend(ctx, testAccount, "m1", 7)
	require.NoError(t, err)
	assert.Equal(t, "m1", trend.PostID)
	require.Len(t, trend.List, 7)
	last := trend.List[6]
	assert.Equal(t, "2026-03-01", last.Date)
	assert.Equal(t, int64(100), last.Reach)
	assert.Equal(t, int64(7), last.Likes)

	_, err = f.trendService().GetPostTrend(ctx, "another-account", "m1", 7)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.trendService().GetPostTrend(ctx, testAccount, "missing", 7)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.trendService().GetPostTrend(ctx, testAccount, "m1", 1)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestExportAccountCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fetcher.account = &graph.Account{ID: testAccount, FollowersCount: i64(500)}
	f.fetcher.insights = map[string]int64{"reach": 42}
	_, err := f.accountService().SyncAccountInsights(ctx, testAccount)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.trendService().ExportAccountCSV(ctx, testAccount, 7, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "date,followers,impressions,reach,accounts_engaged,website_clicks", lines[0])
	assert.Equal(t, "2026-02-23,0,0,0,0,0", lines[1])
	assert.Equal(t, "2026-03-01,500,0,42,0,0", lines[7])
}
