package reconcile

import (
	"InsightLedger/internal/pkg/util"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"
)

// ErrConflict 并发写入冲突（当天记录已被其他事务插入、死锁等），由 Store 返回，整个事务重试一次
var ErrConflict = errors.New("concurrent ledger write conflict")

// Store 增量账本的持久化接口，所有读写都发生在 Transaction 给出的 tx 上
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error
	// DayEntry 按自然日查找 key 的当天记录并加锁
	DayEntry(ctx context.Context, key Key, day time.Time) (uint64, bool, error)
	// Total 返回 key 下所有增量之和，没有记录时为 0
	Total(ctx context.Context, key Key) (int64, error)
	Increment(ctx context.Context, key Key, id uint64, delta int64, now time.Time) error
	Insert(ctx context.Context, key Key, day time.Time, delta int64, now time.Time) error
}

type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result 单条序列的对账结果
type Result struct {
	Key      Key
	Observed *int64
	Delta    int64
	Total    int64
	Status   Status
	Err      error
}

func (r Result) OK() bool {
	return r.Status != StatusFailed
}

// Observation 一次上游读数，Value 为 nil 表示上游未返回该指标
type Observation struct {
	Key   Key
	Value *int64
}

type Reconciler struct {
	store    Store
	now      func() time.Time
	attempts int
}

type Option func(*Reconciler)

// WithClock 替换时钟，测试里用来跨天
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

func NewReconciler(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    store,
		now:      time.Now,
		attempts: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today 当前 UTC 自然日
func (r *Reconciler) Today() time.Time {
	return util.GetMidnight(r.now())
}

// Reconcile 把累计值 cumulative 折算为当天增量写入账本。
// 完成后 key 下所有增量之和等于 cumulative；同一天重复调用只会修改当天那一条记录。
func (r *Reconciler) Reconcile(ctx context.Context, key Key, cumulative *int64) Result {
	return r.ReconcileOn(ctx, key, r.Today(), cumulative)
}

// ReconcileOn 与 Reconcile 相同，但增量记在指定的自然日上。
// 一次同步跨过零点时，用它让所有记录落在同一天。
func (r *Reconciler) ReconcileOn(ctx context.Context, key Key, day time.Time, cumulative *int64) Result {
	res := Result{Key: key, Observed: cumulative}
	if err := key.Validate(); err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}
	if cumulative == nil {
		res.Status = StatusSkipped
		return res
	}

	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		res.Delta, res.Total, err = r.apply(ctx, key, util.GetMidnight(day), *cumulative)
		if !errors.Is(err, ErrConflict) {
			break
		}
		log.WarnContext(ctx, "concurrent ledger write detected, retrying", "key", key.String(), "attempt", attempt+1)
	}
	if err != nil {
		res.Delta, res.Total = 0, 0
		res.Status = StatusFailed
		res.Err = fmt.Errorf("reconcile %s: %w", key, err)
		return res
	}

	res.Status = StatusApplied
	return res
}

// ReconcileAll 逐条对账，单条失败不影响其他序列
func (r *Reconciler) ReconcileAll(ctx context.Context, observations []Observation) []Result {
	results := make([]Result, 0, len(observations))
	for _, o := range observations {
		results = append(results, r.Reconcile(ctx, o.Key, o.Value))
	}
	return results
}

func (r *Reconciler) apply(ctx context.Context, key Key, day time.Time, cumulative int64) (int64, int64, error) {
	now := r.now().UTC()

	var delta int64
	err := r.store.Transaction(ctx, func(tx Store) error {
		// 先锁当天记录再求和，保证求和时看到的是其他事务提交后的数据
		id, found, err := tx.DayEntry(ctx, key, day)
		if err != nil {
			return err
		}
		existing, err := tx.Total(ctx, key)
		if err != nil {
			return err
		}
		delta = cumulative - existing

		if found {
			return tx.Increment(ctx, key, id, delta, now)
		}
		return tx.Insert(ctx, key, day, delta, now)
	})
	if err != nil {
		return 0, 0, err
	}
	return delta, cumulative, nil
}
