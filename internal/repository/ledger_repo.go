package repository

import (
	"InsightLedger/internal/model"
	"InsightLedger/internal/reconcile"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ledgerTarget key 在库中的落点：表、增量列、作用域列
type ledgerTarget struct {
	table  string
	column string
	scope  map[string]any
}

var seriesColumns = map[reconcile.Metric]string{
	reconcile.MetricFollowers:       "followers",
	reconcile.MetricImpressions:     "impressions",
	reconcile.MetricReach:           "reach",
	reconcile.MetricAccountsEngaged: "accounts_engaged",
	reconcile.MetricWebsiteClicks:   "website_clicks",
}

var postInsightColumns = map[reconcile.Metric]string{
	reconcile.MetricReach: "reach",
	reconcile.MetricLikes: "likes",
	reconcile.MetricSaves: "saves",
}

// dimensionTables 每个维度族各自一张表和标签列
var dimensionTables = map[reconcile.Family]struct {
	table string
	label string
}{
	reconcile.FamilyAge:    {table: model.EngagedAudienceAge{}.TableName(), label: "age_group"},
	reconcile.FamilyGender: {table: model.EngagedAudienceGender{}.TableName(), label: "gender"},
	reconcile.FamilyCity:   {table: model.EngagedAudienceLocation{}.TableName(), label: "city"},
}

func resolveTarget(key reconcile.Key) (ledgerTarget, error) {
	if err := key.Validate(); err != nil {
		return ledgerTarget{}, err
	}
	switch key.Kind {
	case reconcile.KindSeries:
		return ledgerTarget{
			table:  model.AccountSummary{}.TableName(),
			column: seriesColumns[key.Metric],
			scope:  map[string]any{"account_id": key.AccountID},
		}, nil
	case reconcile.KindDimension:
		dim := dimensionTables[key.Family]
		return ledgerTarget{
			table:  dim.table,
			column: "count",
			scope:  map[string]any{"socialmedia_id": key.ParentID, dim.label: key.Label},
		}, nil
	default:
		return ledgerTarget{
			table:  model.PostInsight{}.TableName(),
			column: postInsightColumns[key.Metric],
			scope:  map[string]any{"posts_id": key.ParentID},
		}, nil
	}
}

// LedgerRepo reconcile.Store 的 gorm 实现
type LedgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (s *LedgerRepo) Transaction(ctx context.Context, fn func(tx reconcile.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepo{db: tx})
	})
}

func (s *LedgerRepo) DayEntry(ctx context.Context, key reconcile.Key, day time.Time) (uint64, bool, error) {
	target, err := resolveTarget(key)
	if err != nil {
		return 0, false, err
	}
	var ids []uint64
	err = s.db.WithContext(ctx).
		Table(target.table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(target.scope).
		Where("metric_date = ?", day).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, false, translateError(err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

func (s *LedgerRepo) Total(ctx context.Context, key reconcile.Key) (int64, error) {
	target, err := resolveTarget(key)
	if err != nil {
		return 0, err
	}
	var total int64
	err = s.db.WithContext(ctx).
		Table(target.table).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", target.column)).
		Where(target.scope).
		Scan(&total).Error
	if err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

func (s *LedgerRepo) Increment(ctx context.Context, key reconcile.Key, id uint64, delta int64, now time.Time) error {
	target, err := resolveTarget(key)
	if err != nil {
		return err
	}
	// 行已被 DayEntry 锁定；MySQL 默认返回实际变更的行数，delta 为 0 时可能是 0，不能据此判断
	err = s.db.WithContext(ctx).
		Table(target.table).
		Where("id = ?", id).
		Updates(map[string]any{
			target.column: gorm.Expr(target.column+" + ?", delta),
			"updated_at":  now,
		}).Error
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (s *LedgerRepo) Insert(ctx context.Context, key reconcile.Key, day time.Time, delta int64, now time.Time) error {
	target, err := resolveTarget(key)
	if err != nil {
		return err
	}
	row := map[string]any{
		target.column: delta,
		"metric_date": day,
		"created_at":  now,
		"updated_at":  now,
	}
	for col, v := range target.scope {
		row[col] = v
	}
	if err = s.db.WithContext(ctx).Table(target.table).Create(row).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// translateError 把唯一键冲突和死锁统一成 reconcile.ErrConflict
func translateError(err error) error {
	if isConflictError(err) {
		return fmt.Errorf("%w: %v", reconcile.ErrConflict, err)
	}
	return err
}

func isConflictError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1062 唯一键冲突，1213 死锁
		return mysqlErr.Number == 1062 || mysqlErr.Number == 1213
	}
	// sqlite 驱动未翻译的唯一约束错误
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
