package service

import (
	"InsightLedger/internal/pkg/graph"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) syncService(locker RunLocker) SyncService {
	return NewSyncService(f.creds, locker, time.Minute, f.accountService(), f.audienceService(), f.postService())
}

func TestSyncAll_RunsStepsInOrder(t *testing.T) {
	f := newFixture(t)
	locker := newFakeLocker()
	f.fetcher.account = &graph.Account{ID: testAccount, Username: "zing", FollowersCount: i64(500)}
	f.fetcher.demographics = map[graph.Breakdown][]graph.Bucket{
		graph.BreakdownGender: {{Label: "Male", Value: 60}},
	}
	f.fetcher.media = []graph.Media{{ID: "m1"}}
	f.fetcher.metrics = map[string]*graph.MediaMetrics{"m1": {Likes: i64(3)}}

	out, err := f.syncService(locker).SyncAll(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Empty(t, out.Errors)
	require.NotNil(t, out.Insights)
	require.NotNil(t, out.Demographics)
	require.Len(t, out.Demographics.GenderDistribution, 1)
	require.NotNil(t, out.Posts)
	assert.Equal(t, 1, out.Posts.Total)
	assert.Empty(t, locker.held)
}

func TestSyncAll_RecordsStepErrorsAndContinues(t *testing.T) {
	f := newFixture(t)
	f.fetcher.accountErr = &graph.APIError{StatusCode: 500, Message: "An unexpected error has occurred"}
	f.fetcher.media = []graph.Media{{ID: "m1"}}

	out, err := f.syncService(newFakeLocker()).SyncAll(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Nil(t, out.Insights)
	assert.Nil(t, out.Demographics)
	assert.Contains(t, out.Errors["insights"], "An unexpected error has occurred")
	assert.Equal(t, ErrParentNotFound.Error(), out.Errors["demographics"])
	require.NotNil(t, out.Posts)
	assert.Equal(t, 1, out.Posts.Total)
}

func TestSync_RunInProgress(t *testing.T) {
	f := newFixture(t)
	locker := newFakeLocker()
	locker.held["lock:sync:"+testAccount] = "other-run"

	_, err := f.syncService(locker).SyncInsights(context.Background(), testAccount)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, f.fetcher.tokens)
	assert.Equal(t, "other-run", locker.held["lock:sync:"+testAccount])
}

func TestSync_LockReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	locker := newFakeLocker()

	_, err := f.syncService(locker).SyncDemographics(context.Background(), testAccount)
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.Empty(t, locker.held)
}

func TestSync_UnknownAccountAndLockError(t *testing.T) {
	f := newFixture(t)
	locker := newFakeLocker()

	_, err := f.syncService(locker).SyncPosts(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrAccountNotConfigured)

	locker.err = errors.New("dial tcp: connection refused")
	_, err = f.syncService(locker).SyncPosts(context.Background(), testAccount)
	assert.ErrorIs(t, err, UnExpectedError)
}

func TestSync_Accounts(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{testAccount}, f.syncService(newFakeLocker()).Accounts())
}
