package repository

import (
	"InsightLedger/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type AccountSummaryRepo interface {
	// GetByDate 获取账号某天的汇总记录，不存在时返回 nil
	GetByDate(ctx context.Context, accountID string, date time.Time) (*model.AccountSummary, error)
	UpdateUsername(ctx context.Context, id uint64, username string) error
	GetRange(ctx context.Context, accountID string, from, to time.Time) ([]*model.AccountSummary, error)
}

type accountSummaryRepoImpl struct {
	db *gorm.DB
}

func NewAccountSummaryRepository(db *gorm.DB) AccountSummaryRepo {
	return &accountSummaryRepoImpl{db: db}
}

func (s *accountSummaryRepoImpl) GetByDate(ctx context.Context, accountID string, date time.Time) (*model.AccountSummary, error) {
	var summary model.AccountSummary
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND metric_date = ?", accountID, date).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (s *accountSummaryRepoImpl) UpdateUsername(ctx context.Context, id uint64, username string) error {
	return s.db.WithContext(ctx).
		Model(&model.AccountSummary{}).
		Where("id = ?", id).
		Update("username", username).Error
}

// GetRange 获取 [from, to] 区间内的每日增量，按日期升序
func (s *accountSummaryRepoImpl) GetRange(ctx context.Context, accountID string, from, to time.Time) ([]*model.AccountSummary, error) {
	summaries := make([]*model.AccountSummary, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("metric_date >= ? AND metric_date <= ?", from, to).
		Order("metric_date ASC").
		Find(&summaries)
	if result.Error != nil {
		return nil, result.Error
	}
	return summaries, nil
}
