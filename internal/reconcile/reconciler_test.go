package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) nextDay() {
	c.now = c.now.AddDate(0, 0, 1)
}

func newTestReconciler(t *testing.T) (*Reconciler, *memStore, *testClock) {
	t.Helper()
	store := newMemStore()
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	return NewReconciler(store, WithClock(clock.Now)), store, clock
}

func ptr(v int64) *int64 {
	return &v
}

func TestReconcile_FirstObservationInsertsFullValue(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	key := SeriesKey("acc", MetricFollowers)

	res := r.Reconcile(context.Background(), key, ptr(500))

	require.NoError(t, res.Err)
	assert.Equal(t, StatusApplied, res.Status)
	assert.Equal(t, int64(500), res.Delta)
	assert.Equal(t, int64(500), res.Total)
	assert.Len(t, store.rows(key), 1)
}

func TestReconcile_SameDayRepeatAddsZero(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricReach)

	first := r.Reconcile(ctx, key, ptr(120))
	second := r.Reconcile(ctx, key, ptr(120))

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, int64(120), first.Delta)
	assert.Equal(t, int64(0), second.Delta)
	assert.Len(t, store.rows(key), 1)

	total, err := store.Total(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(120), total)
}

func TestReconcile_SameDayAccumulatesIntoOneRecord(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricImpressions)

	r.Reconcile(ctx, key, ptr(10))
	r.Reconcile(ctx, key, ptr(25))
	res := r.Reconcile(ctx, key, ptr(40))

	assert.Equal(t, int64(15), res.Delta)
	rows := store.rows(key)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(40), rows[0].delta)
}

func TestReconcile_DayRollover(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricFollowers)
	day1 := r.Today()

	r.Reconcile(ctx, key, ptr(100))
	clock.nextDay()
	res := r.Reconcile(ctx, key, ptr(150))

	assert.Equal(t, int64(50), res.Delta)
	require.Len(t, store.rows(key), 2)

	d1, ok := store.deltaOn(key, day1)
	require.True(t, ok)
	assert.Equal(t, int64(100), d1)
	d2, ok := store.deltaOn(key, r.Today())
	require.True(t, ok)
	assert.Equal(t, int64(50), d2)
}

func TestReconcileOn_KeepsGivenDayAfterMidnight(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := DimensionKey(FamilyAge, 3, "18-24")
	day1 := r.Today()

	clock.nextDay()
	res := r.ReconcileOn(ctx, key, day1.Add(5*time.Hour), ptr(40))

	require.NoError(t, res.Err)
	assert.Equal(t, int64(40), res.Delta)
	require.Len(t, store.rows(key), 1)
	d1, ok := store.deltaOn(key, day1)
	require.True(t, ok)
	assert.Equal(t, int64(40), d1)
	_, ok = store.deltaOn(key, r.Today())
	assert.False(t, ok)
}

func TestReconcile_FollowersAcrossTwoDays(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricFollowers)
	day1 := r.Today()

	require.Equal(t, int64(500), r.Reconcile(ctx, key, ptr(500)).Delta)
	clock.nextDay()
	require.Equal(t, int64(30), r.Reconcile(ctx, key, ptr(530)).Delta)

	d1, _ := store.deltaOn(key, day1)
	assert.Equal(t, int64(500), d1)
	total, err := store.Total(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(530), total)
}

func TestReconcile_DecreaseProducesNegativeDelta(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricFollowers)

	r.Reconcile(ctx, key, ptr(200))
	clock.nextDay()
	res := r.Reconcile(ctx, key, ptr(190))

	assert.Equal(t, int64(-10), res.Delta)
	total, _ := store.Total(ctx, key)
	assert.Equal(t, int64(190), total)
}

func TestReconcile_MissingValueIsSkipped(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricWebsiteClicks)

	r.Reconcile(ctx, key, ptr(7))
	clock.nextDay()
	res := r.Reconcile(ctx, key, nil)

	assert.Equal(t, StatusSkipped, res.Status)
	assert.True(t, res.OK())
	assert.Nil(t, res.Observed)
	assert.Len(t, store.rows(key), 1)
	total, _ := store.Total(ctx, key)
	assert.Equal(t, int64(7), total)
}

func TestReconcile_DimensionFamiliesAreIsolated(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()
	age := DimensionKey(FamilyAge, 1, "18-24")
	gender := DimensionKey(FamilyGender, 1, "Male")

	r.Reconcile(ctx, age, ptr(40))
	res := r.Reconcile(ctx, gender, ptr(25))

	assert.Equal(t, int64(25), res.Delta)
	ageTotal, _ := store.Total(ctx, age)
	genderTotal, _ := store.Total(ctx, gender)
	assert.Equal(t, int64(40), ageTotal)
	assert.Equal(t, int64(25), genderTotal)
}

func TestReconcile_StoreFailureRollsBack(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := PostInsightKey(3, MetricLikes)

	r.Reconcile(ctx, key, ptr(10))
	clock.nextDay()
	store.failInsert = errors.New("connection reset")
	res := r.Reconcile(ctx, key, ptr(30))

	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, res.OK())
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "connection reset")
	assert.Len(t, store.rows(key), 1)
	total, _ := store.Total(ctx, key)
	assert.Equal(t, int64(10), total)
}

func TestReconcile_ConcurrentInsertRetriesAsUpdate(t *testing.T) {
	r, store, _ := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricAccountsEngaged)
	store.duplicateOnce = ptr(40)

	res := r.Reconcile(ctx, key, ptr(100))

	require.NoError(t, res.Err)
	assert.Equal(t, int64(60), res.Delta)
	rows := store.rows(key)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(100), rows[0].delta)
}

func TestReconcile_InvalidKey(t *testing.T) {
	r, _, _ := newTestReconciler(t)

	res := r.Reconcile(context.Background(), SeriesKey("acc", MetricSaves), ptr(1))

	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, ErrInvalidKey)
}

func TestReconcileAll_PartialFailure(t *testing.T) {
	r, _, _ := newTestReconciler(t)

	results := r.ReconcileAll(context.Background(), []Observation{
		{Key: SeriesKey("acc", MetricFollowers), Value: ptr(5)},
		{Key: DimensionKey(FamilyCity, 0, "Paris"), Value: ptr(5)},
		{Key: SeriesKey("acc", MetricReach), Value: nil},
	})

	require.Len(t, results, 3)
	assert.Equal(t, StatusApplied, results[0].Status)
	assert.Equal(t, StatusFailed, results[1].Status)
	assert.Equal(t, StatusSkipped, results[2].Status)
}

func TestReconcile_SumMatchesLatestObservation(t *testing.T) {
	r, store, clock := newTestReconciler(t)
	ctx := context.Background()
	key := SeriesKey("acc", MetricReach)

	readings := [][]int64{{3, 9}, {9}, {12, 11, 20}, {}, {20, 26}}
	var latest int64
	for _, day := range readings {
		for _, v := range day {
			r.Reconcile(ctx, key, ptr(v))
			latest = v
			total, err := store.Total(ctx, key)
			require.NoError(t, err)
			require.Equal(t, latest, total)
		}
		clock.nextDay()
	}
	assert.Len(t, store.rows(key), 4)
}
