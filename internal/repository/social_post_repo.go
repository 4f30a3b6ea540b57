package repository

import (
	"InsightLedger/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type SocialPostRepo interface {
	// Register 按外部帖子 ID 幂等登记，已存在时原样返回旧记录，created 表示本次是否新建
	Register(ctx context.Context, post *model.SocialPost) (stored *model.SocialPost, created bool, err error)
	GetByPostID(ctx context.Context, postID string) (*model.SocialPost, error)
	GetByAccount(ctx context.Context, accountID string) ([]*model.SocialPost, error)
}

type socialPostRepoImpl struct {
	db *gorm.DB
}

func NewSocialPostRepository(db *gorm.DB) SocialPostRepo {
	return &socialPostRepoImpl{db: db}
}

func (s *socialPostRepoImpl) Register(ctx context.Context, post *model.SocialPost) (*model.SocialPost, bool, error) {
	existing, err := s.GetByPostID(ctx, post.PostID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	err = s.db.WithContext(ctx).Create(post).Error
	if err == nil {
		return post, true, nil
	}
	if !isConflictError(err) {
		return nil, false, err
	}

	// 并发登记时唯一索引拦下了重复插入，以先写入的为准
	existing, err = s.GetByPostID(ctx, post.PostID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, errors.New("post vanished after duplicate insert")
	}
	return existing, false, nil
}

func (s *socialPostRepoImpl) GetByPostID(ctx context.Context, postID string) (*model.SocialPost, error) {
	var post model.SocialPost
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *socialPostRepoImpl) GetByAccount(ctx context.Context, accountID string) ([]*model.SocialPost, error) {
	posts := make([]*model.SocialPost, 0)
	result := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("post_created DESC, id DESC").
		Find(&posts)
	if result.Error != nil {
		return nil, result.Error
	}
	return posts, nil
}
