package repository

import (
	"InsightLedger/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type PostInsightRepo interface {
	GetRange(ctx context.Context, postsID uint64, from, to time.Time) ([]*model.PostInsight, error)
}

type postInsightRepoImpl struct {
	db *gorm.DB
}

func NewPostInsightRepository(db *gorm.DB) PostInsightRepo {
	return &postInsightRepoImpl{db: db}
}

// GetRange 获取帖子 [from, to] 区间内的每日增量，按日期升序
func (s *postInsightRepoImpl) GetRange(ctx context.Context, postsID uint64, from, to time.Time) ([]*model.PostInsight, error) {
	insights := make([]*model.PostInsight, 0)
	result := s.db.WithContext(ctx).
		Where("posts_id = ?", postsID).
		Where("metric_date >= ? AND metric_date <= ?", from, to).
		Order("metric_date ASC").
		Find(&insights)
	if result.Error != nil {
		return nil, result.Error
	}
	return insights, nil
}
